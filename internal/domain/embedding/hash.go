package embedding

import (
	"crypto/md5" //nolint:gosec // staleness detection, not integrity
	"encoding/hex"
)

// ContentHash returns the hex digest used to detect staleness of a stored
// embedding. A document's hash changes whenever its embedded text changes.
func ContentHash(text string) string {
	sum := md5.Sum([]byte(text)) //nolint:gosec // staleness detection
	return hex.EncodeToString(sum[:])
}
