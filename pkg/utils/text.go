package utils

import (
	"strings"
	"unicode"
)

// Slugify lower-cases s and joins its letter/digit runs with '-'.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

// Excerpt flattens markdown-ish content to one line and cuts it at n runes.
func Excerpt(content string, n int) string {
	var parts []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#>*-` "))
		if line != "" {
			parts = append(parts, line)
		}
	}
	flat := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	r := []rune(flat)
	if len(r) <= n {
		return flat
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
