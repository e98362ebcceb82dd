// internal/pkg/slug/slug.go
package slug

import (
	"strings"
	"unicode"
)

// Make converts a display name into a URL-safe slug: lowercase, runs of
// non-alphanumeric characters collapsed into single hyphens.
func Make(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen

	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	return strings.TrimRight(b.String(), "-")
}
