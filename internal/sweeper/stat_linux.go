//go:build linux

package sweeper

import (
	"io/fs"
	"syscall"
	"time"
)

// birthTime approximates file creation. Linux exposes no portable
// birth time through os.FileInfo, so the earliest of ctime and mtime
// stands in for it. Using the minimum keeps files whose mtime was
// rewound by tooling from surviving past the window.
func birthTime(info fs.FileInfo) time.Time {
	mod := info.ModTime()
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return mod
	}
	ctime := time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
	if ctime.Before(mod) {
		return ctime
	}
	return mod
}
