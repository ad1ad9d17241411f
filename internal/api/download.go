package api

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"

	apierrors "github.com/diogo/agentchat/internal/errors"
)

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// DownloadFile fetches a generated file and writes it into dir.
// It returns the absolute path of the written file.
func (c *AgentClient) DownloadFile(ctx context.Context, filename, dir string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", apierrors.NewDownloadError(filename, "filename is empty", nil)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apierrors.NewDownloadError(filename, "failed to create directory", err)
	}

	endpoint := EndpointFiles + "/" + filename
	resp, err := c.doURL(ctx, fhttp.MethodGet, endpoint, c.FileURL(filename), nil)
	if err != nil {
		return "", apierrors.NewNetworkError("download "+filename, endpoint, err)
	}
	defer closeBody(resp)

	if !isSuccess(resp.StatusCode) {
		dlErr := apierrors.NewDownloadError(filename, "unexpected status", nil)
		dlErr.Endpoint = endpoint
		dlErr.HTTPStatus = resp.StatusCode
		dlErr.WithBody(readErrorBody(resp))
		return "", dlErr
	}

	destPath := filepath.Join(dir, SanitizeFilename(filename))

	// Stage in the target dir and rename so dest is never partially written
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", apierrors.NewDownloadError(filename, "failed to create file", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", apierrors.NewDownloadError(filename, "failed to read response", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", apierrors.NewDownloadError(filename, "failed to save file", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", apierrors.NewDownloadError(filename, "failed to save file", err)
	}
	_ = os.Chmod(destPath, 0o644)

	absPath, err := filepath.Abs(destPath)
	if err != nil {
		return destPath, nil
	}
	return absPath, nil
}

// SanitizeFilename reduces a backend-supplied name to a safe single path element
func SanitizeFilename(name string) string {
	safe := unsafeFilenameChars.ReplaceAllString(name, "_")
	safe = strings.TrimSpace(safe)
	safe = strings.TrimLeft(safe, ".")
	if safe == "" {
		return fmt.Sprintf("download_%s", time.Now().Format("20060102_150405"))
	}
	return safe
}
