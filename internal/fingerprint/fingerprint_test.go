package fingerprint

import (
	"testing"

	"snatch/internal/media"
)

func TestComputeDeterministic(t *testing.T) {
	first := Compute("youtube", media.KindVideo, "dQw4w9WgXcQ", "mp4", "720p")
	second := Compute("youtube", media.KindVideo, "dQw4w9WgXcQ", "mp4", "720p")
	if first != second {
		t.Fatalf("identical inputs produced different keys: %s vs %s", first, second)
	}
	if len(first) != 32 {
		t.Errorf("expected 32 hex chars, got %d (%s)", len(first), first)
	}
}

func TestComputeDistinguishesEveryField(t *testing.T) {
	base := Compute("youtube", media.KindVideo, "dQw4w9WgXcQ", "mp4", "720p")

	variants := map[string]JobKey{
		"site":    Compute("tiktok", media.KindVideo, "dQw4w9WgXcQ", "mp4", "720p"),
		"kind":    Compute("youtube", media.KindAudio, "dQw4w9WgXcQ", "mp4", "720p"),
		"item":    Compute("youtube", media.KindVideo, "other", "mp4", "720p"),
		"format":  Compute("youtube", media.KindVideo, "dQw4w9WgXcQ", "mkv", "720p"),
		"quality": Compute("youtube", media.KindVideo, "dQw4w9WgXcQ", "mp4", "480p"),
	}
	for field, key := range variants {
		if key == base {
			t.Errorf("changing %s did not change the key", field)
		}
	}
}

func TestComputeOmitsEmptyQuality(t *testing.T) {
	withQuality := Compute("tiktok", media.KindVideo, "7123456789", "mp4", "360p")
	without := Compute("tiktok", media.KindVideo, "7123456789", "mp4", "")
	if withQuality == without {
		t.Error("empty quality should produce a different digest input than a set quality")
	}
	// Stable regardless of how often it is computed.
	if again := Compute("tiktok", media.KindVideo, "7123456789", "mp4", ""); again != without {
		t.Error("quality-less key is not deterministic")
	}
}

func TestComputeRawURLFallback(t *testing.T) {
	// When ID extraction fails the raw URL is embedded; different spellings
	// of the same item intentionally produce different keys.
	a := Compute("facebook", media.KindVideo, "https://www.facebook.com/watch?v=1", "mp4", "")
	b := Compute("facebook", media.KindVideo, "https://facebook.com/watch?v=1", "mp4", "")
	if a == b {
		t.Error("distinct raw URLs should not collide")
	}
}

func TestFilename(t *testing.T) {
	key := Compute("youtube", media.KindAudio, "dQw4w9WgXcQ", "mp3", "5")
	name := key.Filename("mp3")
	if name != key.String()+".mp3" {
		t.Errorf("Filename = %q", name)
	}
}
