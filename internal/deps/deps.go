// Package deps reports the availability of the external binaries the
// daemon shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"snatch/internal/config"
)

// Requirement defines an external binary snatch relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
}

// Status reports the availability of one requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Available   bool
	Detail      string
}

// ForConfig lists the binaries the configured extractor setup needs.
func ForConfig(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Extractor.YtdlpPath,
			Description: "Performs media extraction",
		},
		{
			Name:        "ffmpeg",
			Command:     cfg.Extractor.FFmpegPath,
			Description: "Merges and transcodes extracted streams",
		},
	}
}

// Check resolves each requirement through PATH lookup. Absolute and
// relative paths are checked directly.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: req.Description,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}
