// Package checksum computes the BLAKE3 digest stored as an experiment's
// args-checksum metadata field (SPEC_FULL.md §3). The digest is only
// recorded; a resume does not consult it and compares the full args.
package checksum

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Hex returns the lowercase hex-encoded BLAKE3 digest of data.
func Hex(data []byte) string {
	h := blake3.New()
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
