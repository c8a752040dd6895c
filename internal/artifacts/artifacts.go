package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"snatch/internal/media"
)

// Store resolves produced media files on disk and the public links that
// point at them. Audio and video artifacts live in separate directories
// and are addressed by fingerprint-derived filenames.
type Store struct {
	audioDir string
	videoDir string
	baseURL  string
}

// NewStore builds a Store rooted at the configured artifact directories.
func NewStore(audioDir, videoDir, baseURL string) *Store {
	return &Store{
		audioDir: audioDir,
		videoDir: videoDir,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// EnsureDirs creates both artifact directories.
func (s *Store) EnsureDirs() error {
	for _, dir := range []string{s.audioDir, s.videoDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create artifact directory %q: %w", dir, err)
		}
	}
	return nil
}

// Dir returns the artifact directory for the given media kind.
func (s *Store) Dir(kind media.Kind) string {
	if kind == media.KindAudio {
		return s.audioDir
	}
	return s.videoDir
}

// PathFor returns the absolute on-disk path for an artifact filename.
func (s *Store) PathFor(kind media.Kind, filename string) string {
	return filepath.Join(s.Dir(kind), filename)
}

// LinkFor returns the public URL for an artifact filename.
func (s *Store) LinkFor(kind media.Kind, filename string) string {
	segment := "video"
	if kind == media.KindAudio {
		segment = "audio"
	}
	return s.baseURL + "/" + segment + "/" + filename
}

// Exists reports whether the artifact is present on disk.
func (s *Store) Exists(kind media.Kind, filename string) (bool, error) {
	info, err := os.Stat(s.PathFor(kind, filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat artifact %s: %w", filename, err)
	}
	return !info.IsDir(), nil
}

// Size returns the artifact size in bytes.
func (s *Store) Size(kind media.Kind, filename string) (int64, error) {
	info, err := os.Stat(s.PathFor(kind, filename))
	if err != nil {
		return 0, fmt.Errorf("stat artifact %s: %w", filename, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("artifact %s is a directory", filename)
	}
	return info.Size(), nil
}

// Remove deletes the artifact if present. Missing files are not an error.
func (s *Store) Remove(kind media.Kind, filename string) error {
	err := os.Remove(s.PathFor(kind, filename))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove artifact %s: %w", filename, err)
	}
	return nil
}
