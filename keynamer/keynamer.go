// Package keynamer derives object storage keys from user supplied filenames.
//
// A key keeps the original stem and extension around a millisecond timestamp,
// e.g. "report.pdf" becomes "report_1718000000000.pdf", so the original name stays
// recognizable in the bucket. Uniqueness is best effort: two uploads of the same
// stem within the same millisecond produce the same key.
package keynamer

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Namer generates keys using Now as its clock.
type Namer struct {
	Now func() time.Time
}

// New returns a Namer backed by the wall clock.
func New() *Namer {
	return &Namer{Now: time.Now}
}

// Generate returns a storage key for originalFilename.
//
// An empty name yields a random UUID. Otherwise the name is split at its last dot,
// unless that dot is the first character (".env" has no extension), and the key is
// stem + "_" + epoch millis + extension.
func (n *Namer) Generate(originalFilename string) string {
	if originalFilename == "" {
		return uuid.NewString()
	}

	stem, ext := SplitExt(originalFilename)

	now := time.Now
	if n != nil && n.Now != nil {
		now = n.Now
	}

	return stem + "_" + strconv.FormatInt(now().UnixMilli(), 10) + ext
}

// Generate is shorthand for New().Generate.
func Generate(originalFilename string) string {
	return New().Generate(originalFilename)
}

// SplitExt splits name at its last dot. The extension keeps the dot.
// A name without a dot, or whose only dot is the leading one, has no extension.
func SplitExt(name string) (stem, ext string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}

// StemFromKey recovers a display name from a key when no metadata is available:
// everything before the last underscore, or the whole key if there is none
// (or it is the first character).
//
// This is lossy. "my_file_1718000000000.txt" yields "my_file", dropping the
// extension, and a name that already ended in "_<digits>" loses that suffix.
func StemFromKey(key string) string {
	i := strings.LastIndex(key, "_")
	if i <= 0 {
		return key
	}
	return key[:i]
}
