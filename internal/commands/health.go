package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/agentchat/internal/chat"
	"github.com/diogo/agentchat/internal/models"
	"github.com/diogo/agentchat/internal/render"
	"github.com/diogo/agentchat/internal/tui"
)

// NewHealthCmd creates the health check command
func NewHealthCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the backend is reachable",
		Long: `Run a single health check against the backend and print the status.

Exits with status 1 unless the backend reports healthy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth(cmd, deps)
		},
	}
}

func runHealth(cmd *cobra.Command, deps *Dependencies) error {
	cfg, err := resolveConfig(cmd, deps)
	if err != nil {
		return err
	}

	logger := cliLogger(cmd, cfg)
	client, err := deps.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	ctrl := chat.NewController(logger)
	healthErr := client.Health(cmd.Context())
	ctrl.ApplyHealth(healthErr)

	status := ctrl.Status()
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", tui.StatusIndicator(status), render.PlainText(client.BaseURL()))

	if status.State != models.StateConnected {
		return fmt.Errorf("backend %s: %s: %w", client.BaseURL(), status.Label, healthErr)
	}
	return nil
}
