package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func fakeDaemon(t *testing.T, routes map[string]any) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"status": 404, "message": "not found"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"status": 200, "data": payload})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestStatusCommand(t *testing.T) {
	srv := fakeDaemon(t, map[string]any{
		"/api/status": map[string]any{"pending": 3, "uptime_seconds": 61},
	})

	out, err := runCLI(t, []string{"--server", srv.URL, "status"})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Pending jobs") || !strings.Contains(out, "3") {
		t.Fatalf("unexpected status output:\n%s", out)
	}
}

func TestPendingCommandEmpty(t *testing.T) {
	srv := fakeDaemon(t, map[string]any{
		"/api/pending": []any{},
	})

	out, err := runCLI(t, []string{"--server", srv.URL, "pending"})
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if !strings.Contains(out, "No pending jobs") {
		t.Fatalf("unexpected pending output:\n%s", out)
	}
}

func TestPendingCommandTable(t *testing.T) {
	srv := fakeDaemon(t, map[string]any{
		"/api/pending": []map[string]any{
			{
				"key":    "0123456789abcdef0123456789abcdef",
				"url":    "https://youtu.be/dQw4w9WgXcQ",
				"site":   "youtube",
				"kind":   "audio",
				"format": "mp3",
			},
		},
	})

	out, err := runCLI(t, []string{"--server", srv.URL, "pending"})
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if !strings.Contains(out, "0123456789ab") {
		t.Fatalf("expected truncated key in output:\n%s", out)
	}
	if strings.Contains(out, "0123456789abc") {
		t.Fatalf("key not truncated to 12 chars:\n%s", out)
	}
	if !strings.Contains(out, "youtube") || !strings.Contains(out, "mp3") {
		t.Fatalf("missing job fields:\n%s", out)
	}
}

func TestHistoryCommandLabelsAudioQuality(t *testing.T) {
	srv := fakeDaemon(t, map[string]any{
		"/api/history": []map[string]any{
			{
				"job_key":     "feedfacefeedfacefeedfacefeedface",
				"site":        "youtube",
				"kind":        "audio",
				"format":      "mp3",
				"quality":     "5",
				"succeeded":   true,
				"finished_at": "2026-08-29T10:00:00Z",
			},
			{
				"job_key":     "cafebabecafebabecafebabecafebabe",
				"site":        "tiktok",
				"kind":        "video",
				"format":      "mp4",
				"succeeded":   false,
				"exit_code":   1,
				"finished_at": "2026-08-29T11:00:00Z",
			},
		},
	})

	out, err := runCLI(t, []string{"--server", srv.URL, "history"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "160kbps") {
		t.Fatalf("expected labeled audio quality in output:\n%s", out)
	}
	if !strings.Contains(out, "exit 1") {
		t.Fatalf("expected failure outcome in output:\n%s", out)
	}
}

func TestFlushCommandRequiresReachableDaemon(t *testing.T) {
	_, err := runCLI(t, []string{"--server", "http://127.0.0.1:1", "--key", "k", "flush"})
	if err == nil {
		t.Fatal("expected connection error")
	}
	if !strings.Contains(err.Error(), "connect to daemon") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, []string{"config", "init", "--path", target})
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected init output:\n%s", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, []string{"config", "init", "--path", target}); err == nil {
		t.Fatal("expected error for existing config without --overwrite")
	}
	if _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}
