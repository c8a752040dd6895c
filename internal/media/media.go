package media

import (
	"fmt"
)

// Kind identifies the artifact category a request targets.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

func (k Kind) String() string {
	return string(k)
}

// Output format domains. The first entry of each list is the default.
var (
	VideoFormats = []string{"mp4", "mkv"}
	AudioFormats = []string{"mp3", "m4a", "flac", "opus"}
)

const (
	DefaultVideoFormat  = "mp4"
	DefaultAudioFormat  = "mp3"
	DefaultVideoQuality = "360p"
	DefaultAudioQuality = "5"
)

// Extensions returns the on-disk file extensions belonging to the kind,
// without the leading dot.
func Extensions(kind Kind) []string {
	switch kind {
	case KindVideo:
		return VideoFormats
	case KindAudio:
		return AudioFormats
	default:
		return nil
	}
}

// videoSelectors maps a quality tier to the yt-dlp format selector used for
// YouTube downloads. Other source categories rely on format merging alone.
var videoSelectors = map[string]string{
	"1080p": "bestvideo[height<=1080]+bestaudio",
	"720p":  "bestvideo[height<=720]+bestaudio",
	"480p":  "bestvideo[height<=480]+bestaudio",
	"360p":  "bestvideo[height<=360]+bestaudio",
}

// VideoSelector resolves the yt-dlp -f selector for a video quality tier.
func VideoSelector(quality string) (string, error) {
	selector, ok := videoSelectors[quality]
	if !ok {
		return "", fmt.Errorf("unknown video quality %q", quality)
	}
	return selector, nil
}

// audioQualityLabels maps the yt-dlp audio quality codes to bitrate labels.
var audioQualityLabels = map[string]string{
	"0": "320kbps",
	"5": "160kbps",
	"9": "64kbps",
}

// AudioQualityLabel returns the human-readable bitrate for an audio quality
// code, or the code itself when unknown.
func AudioQualityLabel(code string) string {
	if label, ok := audioQualityLabels[code]; ok {
		return label
	}
	return code
}

// ValidAudioQuality reports whether code is a known audio quality code.
func ValidAudioQuality(code string) bool {
	_, ok := audioQualityLabels[code]
	return ok
}

// ValidFormat reports whether format belongs to the kind's output domain.
func ValidFormat(kind Kind, format string) bool {
	for _, candidate := range Extensions(kind) {
		if format == candidate {
			return true
		}
	}
	return false
}
