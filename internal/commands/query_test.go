package commands

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apierrors "github.com/diogo/agentchat/internal/errors"
	"github.com/diogo/agentchat/internal/models"
	"github.com/diogo/agentchat/internal/render"
)

func TestRunQuery(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		result     *models.QueryResult
		queryErr   error
		wantOut    string
		wantErr    string
		wantErrIs  error
		wantPrompt string
	}{
		{
			name:       "success prints response",
			args:       []string{"  hi  "},
			result:     &models.QueryResult{Status: "success", Response: "Hello **world**"},
			wantOut:    "Hello **world**\n",
			wantPrompt: "hi",
		},
		{
			name:       "escape sequences are stripped",
			args:       []string{"color"},
			result:     &models.QueryResult{Status: "success", Response: "\x1b[31mred\x1b[0m\x07"},
			wantOut:    "red\n",
			wantPrompt: "color",
		},
		{
			name:       "markdown without terminal is the source text",
			args:       []string{"md", "--format", "markdown"},
			result:     &models.QueryResult{Status: "success", Response: "# Title"},
			wantOut:    "# Title\n",
			wantPrompt: "md",
		},
		{
			name:       "backend failure with message",
			args:       []string{"fail"},
			result:     &models.QueryResult{Status: "error", Error: "boom"},
			wantErr:    "Error: boom",
			wantErrIs:  apierrors.ErrBackend,
			wantPrompt: "fail",
		},
		{
			name:       "backend failure without message",
			args:       []string{"fail"},
			result:     &models.QueryResult{Status: "error"},
			wantErr:    "Error: Unknown error",
			wantErrIs:  apierrors.ErrBackend,
			wantPrompt: "fail",
		},
		{
			name:       "transport failure",
			args:       []string{"net"},
			queryErr:   apierrors.NewNetworkError("query", "/query", errors.New("connection refused")),
			wantErrIs:  apierrors.ErrNetwork,
			wantPrompt: "net",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.client.QueryResultVal = tt.result
			env.client.QueryErr = tt.queryErr

			out, _, err := env.run(tt.args...)

			if tt.wantErr != "" || tt.wantErrIs != nil {
				if err == nil {
					t.Fatal("expected error")
				}
				if tt.wantErr != "" && err.Error() != tt.wantErr {
					t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
				}
				if tt.wantErrIs != nil && !errors.Is(err, tt.wantErrIs) {
					t.Errorf("error %v is not %v", err, tt.wantErrIs)
				}
				if out != "" {
					t.Errorf("nothing should be printed on failure, got %q", out)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if out != tt.wantOut {
					t.Errorf("stdout = %q, want %q", out, tt.wantOut)
				}
			}

			if env.client.LastPrompt != tt.wantPrompt {
				t.Errorf("prompt sent = %q, want %q", env.client.LastPrompt, tt.wantPrompt)
			}
		})
	}
}

func TestRunQuery_EmptyPrompt(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.run("   \n\t ")
	if err == nil || !strings.Contains(err.Error(), "prompt cannot be empty") {
		t.Fatalf("expected empty prompt error, got %v", err)
	}
	if _, queries, _, _ := env.client.Calls(); queries != 0 {
		t.Errorf("no query should be sent, got %d", queries)
	}
}

func TestRunQuery_UnknownFormat(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.run("hi", "--format", "pdf")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestRunQuery_HTML(t *testing.T) {
	env := newTestEnv(t)
	env.client.QueryResultVal = &models.QueryResult{
		Status:   "success",
		Response: "# Report\n\n<script>alert(1)</script>\n\n```go\nfmt.Println(1)\n```",
	}

	out, _, err := env.run("html please", "--format", "html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "Report") {
		t.Errorf("expected a heading, got %q", out)
	}
	if strings.Contains(out, "<script") {
		t.Errorf("script survived sanitizing: %q", out)
	}
}

func TestRunQuery_OutputFile(t *testing.T) {
	env := newTestEnv(t)
	env.client.QueryResultVal = &models.QueryResult{Status: "success", Response: "saved text"}
	path := filepath.Join(t.TempDir(), "out.md")

	out, stderr, err := env.run("save", "-o", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Errorf("stdout should be empty, got %q", out)
	}
	if !strings.Contains(stderr, "Response saved to") {
		t.Errorf("expected confirmation on stderr, got %q", stderr)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "saved text" {
		t.Errorf("file content = %q", data)
	}
}

func TestRunQuery_Raw(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.CopyToClipboard = true
	env.client.QueryResultVal = &models.QueryResult{Status: "success", Response: "raw text"}

	out, stderr, err := env.run("raw", "--raw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "raw text" {
		t.Errorf("stdout = %q, want exact response", out)
	}
	if stderr != "" {
		t.Errorf("raw mode should not decorate, stderr = %q", stderr)
	}
	if len(env.clipboard) != 0 {
		t.Error("raw mode should not touch the clipboard")
	}
}

func TestRunQuery_Clipboard(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.CopyToClipboard = true
	env.client.QueryResultVal = &models.QueryResult{Status: "success", Response: "copy \x1b[1mme\x1b[0m"}

	_, stderr, err := env.run("copy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.clipboard) != 1 || env.clipboard[0] != "copy me" {
		t.Errorf("clipboard = %q", env.clipboard)
	}
	if !strings.Contains(stderr, "Copied to clipboard") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRunQuery_FileAndStdin(t *testing.T) {
	t.Run("file flag", func(t *testing.T) {
		env := newTestEnv(t)
		env.client.QueryResultVal = &models.QueryResult{Status: "success", Response: "ok"}
		path := filepath.Join(t.TempDir(), "prompt.md")
		if err := os.WriteFile(path, []byte("from file\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, _, err := env.run("-f", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env.client.LastPrompt != "from file" {
			t.Errorf("prompt = %q", env.client.LastPrompt)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		env := newTestEnv(t)
		if _, _, err := env.run("-f", filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Fatal("expected read error")
		}
	})

	t.Run("stdin", func(t *testing.T) {
		env := newTestEnv(t)
		env.client.QueryResultVal = &models.QueryResult{Status: "success", Response: "ok"}

		if _, _, err := env.runWithInput(strings.NewReader("from stdin")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env.client.LastPrompt != "from stdin" {
			t.Errorf("prompt = %q", env.client.LastPrompt)
		}
		if env.tui.calls != 0 {
			t.Error("piped input should not open the chat")
		}
	})
}

func TestRunQuery_ListFiles(t *testing.T) {
	t.Run("prints refreshed list", func(t *testing.T) {
		env := newTestEnv(t)
		env.client.QueryResultVal = &models.QueryResult{Status: "success", Response: "done"}
		env.client.FilesVal = []models.FileEntry{{Filename: "report.txt"}, {Filename: "data.csv"}}

		out, _, err := env.run("make files", "--list-files")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "done\nreport.txt\thttp://localhost:8001/files/report.txt\ndata.csv\thttp://localhost:8001/files/data.csv\n"
		if out != want {
			t.Errorf("stdout = %q, want %q", out, want)
		}
	})

	t.Run("listing failure is not fatal", func(t *testing.T) {
		env := newTestEnv(t)
		env.client.QueryResultVal = &models.QueryResult{Status: "success", Response: "done"}
		env.client.FilesErr = apierrors.NewAPIError(500, "list files", "/files")

		out, _, err := env.run("make files", "--list-files")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "done\n" {
			t.Errorf("stdout = %q", out)
		}
	})

	t.Run("no listing after failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.client.QueryResultVal = &models.QueryResult{Status: "error", Error: "nope"}

		if _, _, err := env.run("make files", "--list-files"); err == nil {
			t.Fatal("expected backend error")
		}
		if _, _, files, _ := env.client.Calls(); files != 0 {
			t.Errorf("files should not be listed after a failure, got %d calls", files)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", formatText, false},
		{"text", formatText, false},
		{"Markdown", formatMarkdown, false},
		{"md", formatMarkdown, false},
		{" html ", formatHTML, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatResponse_Styled(t *testing.T) {
	opts := render.DefaultOptions().WithStyle(render.ThemeNoTTY)
	out, err := formatResponse("**bold** \x1b]8;;http://evil\x07x\x1b]8;;\x07", formatMarkdown, opts, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "\x1b]8") || strings.Contains(out, "evil") {
		t.Errorf("hyperlink escape survived: %q", out)
	}
	if !strings.Contains(out, "bold") {
		t.Errorf("content missing: %q", out)
	}
}

func TestContentWidth(t *testing.T) {
	tests := []struct {
		term int
		want int
	}{
		{20, 36},
		{80, 72},
		{200, 116},
	}
	for _, tt := range tests {
		if got := contentWidth(tt.term); got != tt.want {
			t.Errorf("contentWidth(%d) = %d, want %d", tt.term, got, tt.want)
		}
	}
}

func TestSpinnerLifecycle(t *testing.T) {
	var buf strings.Builder
	s := newSpinner(&buf, "Waiting", true)
	s.start()
	s.stopWithSuccess("done")
	if !strings.Contains(buf.String(), "done") {
		t.Errorf("expected success message, got %q", buf.String())
	}

	quiet := newSpinner(&buf, "Waiting", false)
	quiet.start()
	quiet.stopWithError()
}
