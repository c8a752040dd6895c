package sweeper

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"snatch/internal/logging"
)

// Sweeper removes artifacts that have outlived the retention window.
// Age is measured from the file's birth, approximated by the earliest
// of its change and modification times.
type Sweeper struct {
	dirs     []string
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger
	clock    func() time.Time
}

// New builds a Sweeper over the given artifact directories.
func New(dirs []string, interval, maxAge time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		dirs:     dirs,
		interval: interval,
		maxAge:   maxAge,
		logger:   logging.NewComponentLogger(logger, "sweeper"),
		clock:    time.Now,
	}
}

// Run sweeps once immediately, then on every interval until the context
// is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("retention sweeps started",
		logging.Duration("interval", s.interval),
		logging.Duration("max_age", s.maxAge))

	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Warn("retention sweep finished with errors", logging.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("retention sweeps stopping")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Warn("retention sweep finished with errors", logging.Error(err))
			}
		}
	}
}

// Sweep removes expired files from every directory and returns the
// number removed. Per-file failures are collected rather than aborting
// the pass.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.clock().Add(-s.maxAge)
	removed := 0
	var errs []error

	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			errs = append(errs, fmt.Errorf("read directory %q: %w", dir, err))
			continue
		}
		for _, entry := range entries {
			if ctx.Err() != nil {
				return removed, errors.Join(append(errs, ctx.Err())...)
			}
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			info, err := entry.Info()
			if err != nil {
				errs = append(errs, fmt.Errorf("stat %q: %w", path, err))
				continue
			}
			if !birthTime(info).Before(cutoff) {
				continue
			}
			if err := os.Remove(path); err != nil {
				errs = append(errs, fmt.Errorf("remove %q: %w", path, err))
				s.logger.Warn("expired artifact removal failed",
					logging.String("path", path),
					logging.Error(err))
				continue
			}
			removed++
			s.logger.Debug("expired artifact removed", logging.String("path", path))
		}
	}

	if removed > 0 {
		s.logger.Info("retention sweep complete", logging.Int("removed", removed))
	}
	return removed, errors.Join(errs...)
}

// SetClock overrides the time source used for cutoff calculation in tests.
func (s *Sweeper) SetClock(clock func() time.Time) {
	if clock != nil {
		s.clock = clock
	}
}
