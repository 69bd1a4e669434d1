package brief

import (
	"strings"
	"unicode"
)

// MaxSlugLen caps the length of Slug output.
const MaxSlugLen = 48

// Slug reduces name to lowercase ASCII words joined by dashes. It returns ""
// when name has no ASCII letters or digits.
func Slug(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r)
			dash = false
		default:
			dash = true
		}
		if sb.Len() >= MaxSlugLen {
			break
		}
	}
	base := sb.String()
	if len(base) > MaxSlugLen {
		base = base[:MaxSlugLen]
	}
	return strings.TrimRight(base, "-")
}
