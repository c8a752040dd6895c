package media

import "testing"

func TestVideoSelector(t *testing.T) {
	selector, err := VideoSelector("720p")
	if err != nil {
		t.Fatalf("VideoSelector(720p): %v", err)
	}
	if selector != "bestvideo[height<=720]+bestaudio" {
		t.Errorf("unexpected selector %q", selector)
	}

	if _, err := VideoSelector("4k"); err == nil {
		t.Error("VideoSelector should reject unknown quality tiers")
	}
}

func TestAudioQualityLabel(t *testing.T) {
	if got := AudioQualityLabel("0"); got != "320kbps" {
		t.Errorf("AudioQualityLabel(0) = %q", got)
	}
	if got := AudioQualityLabel("5"); got != "160kbps" {
		t.Errorf("AudioQualityLabel(5) = %q", got)
	}
	if got := AudioQualityLabel("9"); got != "64kbps" {
		t.Errorf("AudioQualityLabel(9) = %q", got)
	}
	if got := AudioQualityLabel("3"); got != "3" {
		t.Errorf("AudioQualityLabel should pass through unknown codes, got %q", got)
	}
}

func TestValidFormat(t *testing.T) {
	if !ValidFormat(KindVideo, "mkv") {
		t.Error("mkv should be a valid video format")
	}
	if ValidFormat(KindVideo, "mp3") {
		t.Error("mp3 is not a video format")
	}
	if !ValidFormat(KindAudio, "opus") {
		t.Error("opus should be a valid audio format")
	}
	if ValidFormat(KindAudio, "mp4") {
		t.Error("mp4 is not an audio format")
	}
}
