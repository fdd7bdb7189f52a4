package app

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const anupDoc = `{"total": 2, "data": [
	{"LDAP": "anup", "Name": "Anup", "Heading": "Star", "Title": "Engineer", "Start Date": "01/01/2000", "End Date": ""},
	{"LDAP": "old", "Name": "Old", "Start Date": "01/01/2000", "End Date": "01/01/2001"}
]}`

func newRecognitionsServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/content/org-anup/recognitions.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(anupDoc))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupWorkspace(t *testing.T, extra string) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{"CONFIG_PATH", "ORG_URLS", "OUTPUT_DIR", "DB_PATH", "PANEL", "SLACK_BOT_TOKEN", "SLACK_CHANNEL_ID"} {
		t.Setenv(key, "")
	}
	configPath = filepath.Join(dir, "config.yaml")
	content := "output_dir: " + filepath.Join(dir, "statistics") + "\n" +
		"db_path: " + filepath.Join(dir, "history.db") + "\n" +
		"timezone: UTC\nlog_level: error\n" + extra
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir, configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCommandRendersAndRecordsHistory(t *testing.T) {
	server := newRecognitionsServer(t)
	dir, configPath := setupWorkspace(t, "")

	out, err := execute(t, "run", "--config", configPath,
		"--org-url", server.URL+"/content/org-anup/recognitions.json",
		"--org-url", server.URL+"/content/org-balaji/recognitions.json",
		"--panel", "table",
		"--no-last-modified",
	)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "anup: "+filepath.Join(dir, "statistics", "anup-statistics.png")) {
		t.Fatalf("expected anup artifact in output, got:\n%s", out)
	}
	if !strings.Contains(out, "balaji: failed") {
		t.Fatalf("expected balaji failure in output, got:\n%s", out)
	}

	f, err := os.Open(filepath.Join(dir, "statistics", "anup-statistics.png"))
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("artifact is not a png: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "statistics", "balaji-statistics.png")); !os.IsNotExist(err) {
		t.Fatalf("failed org must not produce an artifact, stat err=%v", err)
	}

	out, err = execute(t, "history", "--config", configPath, "--org", "org-anup")
	if err != nil {
		t.Fatalf("history: %v\n%s", err, out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "RECORDED") {
		t.Fatalf("unexpected history output:\n%s", out)
	}
	fields := strings.Fields(lines[1])
	// date, time, total, active, ...
	if fields[2] != "2" || fields[3] != "1" {
		t.Fatalf("unexpected history row: %q", lines[1])
	}
}

func TestRootCommandDefaultsToRun(t *testing.T) {
	server := newRecognitionsServer(t)
	dir, configPath := setupWorkspace(t, "org_urls:\n  - "+server.URL+"/content/org-anup/recognitions.json\nresolve_last_modified: false\n")

	out, err := execute(t, "--config", configPath)
	if err != nil {
		t.Fatalf("root: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dir, "statistics", "anup-statistics.png")); err != nil {
		t.Fatalf("expected artifact: %v", err)
	}
}

func TestRunCommandConfigErrors(t *testing.T) {
	_, configPath := setupWorkspace(t, "")

	if _, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
	if _, err := execute(t, "run", "--config", configPath); err == nil {
		t.Fatal("expected error when no organization urls are configured")
	}
	if _, err := execute(t, "run", "--config", configPath, "--org-url", "https://e.com/org-a/r.json", "--panel", "pie"); err == nil {
		t.Fatal("expected error for unknown panel")
	}
}

func TestHistoryCommandWithoutRows(t *testing.T) {
	_, configPath := setupWorkspace(t, "")

	out, err := execute(t, "history", "--config", configPath, "--org", "nobody")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "no history for nobody") {
		t.Fatalf("unexpected output: %q", out)
	}
	if _, err := execute(t, "history", "--config", configPath); err == nil {
		t.Fatal("expected error when --org is missing")
	}
}
