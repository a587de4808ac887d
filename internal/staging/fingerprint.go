package staging

import (
	"fmt"
	"time"
)

// Fingerprint computes a cheap identity proxy for a selected file from
// its name, byte size, and last-modified timestamp.
//
// This is a deliberate speed/precision trade-off, not a content hash:
// two distinct files with colliding metadata are indistinguishable,
// and renamed-but-identical content is missed. It is used only for
// intra-batch duplicate detection, never against persisted assets.
func Fingerprint(name string, size int64, modTime time.Time) string {
	return fmt.Sprintf("%s|%d|%d", name, size, modTime.UnixMilli())
}
