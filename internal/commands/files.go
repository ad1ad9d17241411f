package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/diogo/agentchat/internal/api"
	"github.com/diogo/agentchat/internal/chat"
	"github.com/diogo/agentchat/internal/config"
	"github.com/diogo/agentchat/internal/models"
	"github.com/diogo/agentchat/internal/render"
)

// NewFilesCmd creates the command that lists generated files
func NewFilesCmd(deps *Dependencies) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List files generated by the agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(cmd, deps, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the listing as JSON")

	return cmd
}

func runFiles(cmd *cobra.Command, deps *Dependencies, asJSON bool) error {
	cfg, err := resolveConfig(cmd, deps)
	if err != nil {
		return err
	}

	client, err := deps.NewClient(cfg, cliLogger(cmd, cfg))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	files, err := client.ListFiles(cmd.Context())
	if err != nil {
		return err
	}

	if asJSON {
		if files == nil {
			files = []models.FileEntry{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Files []models.FileEntry `json:"files"`
		}{files})
	}

	printFiles(cmd.OutOrStdout(), client, files)
	return nil
}

// printFiles writes one "name<TAB>url" row per file, or the placeholder
func printFiles(w io.Writer, client api.AgentClientInterface, files []models.FileEntry) {
	if len(files) == 0 {
		fmt.Fprintln(w, chat.NoFilesPlaceholder)
		return
	}
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s\n", render.PlainText(f.Filename), render.PlainText(client.FileURL(f.Filename)))
	}
}

// NewDownloadCmd creates the command that saves a generated file locally
func NewDownloadCmd(deps *Dependencies) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download <filename>",
		Short: "Download a generated file",
		Long: `Download a file the agent generated into the download directory.

The name is sanitized for the local filesystem and the saved path is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, deps, args[0], dir)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Destination directory (default: download_dir)")

	return cmd
}

func runDownload(cmd *cobra.Command, deps *Dependencies, filename, dir string) error {
	cfg, err := resolveConfig(cmd, deps)
	if err != nil {
		return err
	}

	if dir == "" {
		dir, err = config.GetDownloadDir(cfg)
		if err != nil {
			return err
		}
	}

	client, err := deps.NewClient(cfg, cliLogger(cmd, cfg))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	path, err := client.DownloadFile(cmd.Context(), filename, dir)
	if err != nil {
		return err
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
