package cookies

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Supplier manages Netscape-format cookie files used to authenticate
// extractions. Files are written as cookies_<site>_<unixts>.txt and the
// newest file per site wins, so uploading fresh cookies never requires
// removing stale ones first.
type Supplier struct {
	dir   string
	clock func() time.Time
}

// NewSupplier builds a Supplier rooted at dir.
func NewSupplier(dir string) *Supplier {
	return &Supplier{dir: dir, clock: time.Now}
}

// Dir returns the cookie directory.
func (s *Supplier) Dir() string {
	return s.dir
}

// Latest returns the path of the newest cookie file for the site, or an
// empty string when none exists.
func (s *Supplier) Latest(site string) (string, error) {
	site = strings.ToLower(strings.TrimSpace(site))
	if site == "" {
		return "", errors.New("site must not be empty")
	}

	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read cookie directory: %w", err)
	}

	prefix := "cookies_" + site + "_"
	var best string
	var bestTS int64 = -1
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			continue
		}
		name := dirEntry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".txt") {
			continue
		}
		raw := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".txt")
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		if ts > bestTS {
			bestTS = ts
			best = filepath.Join(s.dir, name)
		}
	}
	return best, nil
}

// Save writes a new cookie file for the site and returns its path.
func (s *Supplier) Save(site string, content io.Reader) (string, error) {
	site = strings.ToLower(strings.TrimSpace(site))
	if site == "" {
		return "", errors.New("site must not be empty")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create cookie directory: %w", err)
	}

	name := fmt.Sprintf("cookies_%s_%d.txt", site, s.clock().Unix())
	path := filepath.Join(s.dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("create cookie file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write cookie file: %w", err)
	}
	return path, nil
}

// Clear removes every cookie file and returns the number removed.
func (s *Supplier) Clear() (int, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cookie directory: %w", err)
	}

	removed := 0
	var errs []error
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			continue
		}
		name := dirEntry.Name()
		if !strings.HasPrefix(name, "cookies_") || !strings.HasSuffix(name, ".txt") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", name, err))
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// SetClock overrides the time source used for file naming in tests.
func (s *Supplier) SetClock(clock func() time.Time) {
	if clock != nil {
		s.clock = clock
	}
}
