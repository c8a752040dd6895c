package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"snatch/internal/media"
)

// JobKey is the deterministic hex digest identifying one (source item, media
// kind, encoding parameters) combination. It doubles as the on-disk filename
// stem for the produced artifact.
type JobKey string

func (k JobKey) String() string {
	return string(k)
}

// Filename returns the artifact filename for the key: {digest}.{format}.
func (k JobKey) Filename(format string) string {
	return string(k) + "." + format
}

// Compute derives the JobKey for a request. The digest input is the fixed,
// delimiter-joined sequence
//
//	site "-" kind "-" itemID "-" format [ "-" quality ]
//
// hashed with md5. The ordering is part of the contract: an independent
// implementation joining the same normalized fields produces the same key.
//
// itemID is whatever the site resolver extracted; when no structured ID could
// be pulled out of the URL, callers pass the raw URL and trivially different
// spellings of the same item will not dedupe. That is accepted: per-platform
// ID extraction is unreliable and a missed dedupe only costs a duplicate
// download.
func Compute(site string, kind media.Kind, itemID, format, quality string) JobKey {
	parts := []string{site, string(kind), itemID, format}
	if quality != "" {
		parts = append(parts, quality)
	}
	sum := md5.Sum([]byte(strings.Join(parts, "-")))
	return JobKey(hex.EncodeToString(sum[:]))
}
