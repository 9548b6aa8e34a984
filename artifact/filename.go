package artifact

import (
	"path/filepath"
	"strings"
)

const maxStemLength = 100

func isSafeChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.' || c == '-' || c == '_':
		return true
	default:
		return false
	}
}

// SanitizeFilename strips path components from filename and replaces any
// character outside [A-Za-z0-9._-] in the stem with "_". The extension is
// preserved verbatim. An empty resulting stem falls back to "document".
// The stem is capped at 100 characters.
func SanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]

	clean := make([]byte, 0, len(stem))
	for i := 0; i < len(stem); i++ {
		c := stem[i]
		if isSafeChar(c) {
			clean = append(clean, c)
		} else {
			clean = append(clean, '_')
		}
	}
	if len(clean) == 0 {
		clean = []byte("document")
	}
	if len(clean) > maxStemLength {
		clean = clean[:maxStemLength]
	}
	return string(clean) + ext
}

// Extension returns the lowercase file extension of filename, without the
// leading dot.
func Extension(filename string) string {
	ext := filepath.Ext(filename)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
