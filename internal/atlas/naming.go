package atlas

import (
	"path/filepath"
	"strings"
)

// SubjectID returns the token before the first "_" of the file's base name.
// "100610_connectivity_length.npy" -> "100610".
func SubjectID(filename string) string {
	base := filepath.Base(filename)
	if i := strings.Index(base, "_"); i >= 0 {
		return base[:i]
	}
	return base
}

// OutputName builds "<prefix><subject>.<ext>".
func OutputName(prefix, subject, ext string) string {
	return prefix + subject + "." + strings.TrimPrefix(ext, ".")
}
