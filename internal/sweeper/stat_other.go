//go:build !linux

package sweeper

import (
	"io/fs"
	"time"
)

func birthTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}
