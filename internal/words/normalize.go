package words

import "strings"

// Normalize lowercases s and drops every rune outside [a-z ], mirroring the
// original WQWords.getTranslation's
// toLowerCase().replaceAll("[^a-zA-Z0\\u0020]", "").replaceAll("[0-9]", "").
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
