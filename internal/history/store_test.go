package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"snatch/internal/fingerprint"
	"snatch/internal/history"
	"snatch/internal/media"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleAttempt(key string, succeeded bool) history.Attempt {
	now := time.Now()
	return history.Attempt{
		JobKey:     fingerprint.JobKey(key),
		Site:       "youtube",
		Kind:       media.KindVideo,
		Format:     "mp4",
		Quality:    "360p",
		URL:        "https://youtube.com/watch?v=" + key,
		Succeeded:  succeeded,
		ExitCode:   0,
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
	}
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, sampleAttempt("aaa", true)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	failed := sampleAttempt("bbb", false)
	failed.ExitCode = 1
	failed.Stderr = "ERROR: video unavailable"
	if err := store.Record(ctx, failed); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	attempts, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("unexpected attempt count: %d", len(attempts))
	}
	if attempts[0].JobKey != "bbb" {
		t.Fatalf("expected newest first, got %q", attempts[0].JobKey)
	}
	if attempts[0].Succeeded {
		t.Fatal("expected failed attempt")
	}
	if attempts[0].Stderr != "ERROR: video unavailable" {
		t.Fatalf("unexpected stderr: %q", attempts[0].Stderr)
	}
	if attempts[1].Kind != media.KindVideo {
		t.Fatalf("unexpected kind: %q", attempts[1].Kind)
	}
}

func TestCountsByOutcome(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i, ok := range []bool{true, true, false} {
		attempt := sampleAttempt(string(rune('a'+i)), ok)
		if err := store.Record(ctx, attempt); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	counts, err := store.CountsByOutcome(ctx)
	if err != nil {
		t.Fatalf("CountsByOutcome failed: %v", err)
	}
	if counts.Total != 3 || counts.Succeeded != 2 || counts.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Record(context.Background(), sampleAttempt("zzz", true)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	attempts, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(attempts) != 1 || attempts[0].JobKey != "zzz" {
		t.Fatalf("unexpected attempts after reopen: %+v", attempts)
	}
}
