package helper

import (
	"regexp"
	"strings"
)

var (
	reNonAlnumLower = regexp.MustCompile(`[^a-z0-9]+`)
	reHyphenRun     = regexp.MustCompile(`-+`)
)

// SchoolSlug mengubah nama sekolah jadi slug [a-z0-9-] untuk path folder
// penyimpanan permanen. Maksimal 50 karakter, fallback "sekolah".
func SchoolSlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = reNonAlnumLower.ReplaceAllString(s, "-")
	s = reHyphenRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > 50 {
		s = strings.Trim(s[:50], "-")
	}
	if s == "" {
		s = "sekolah"
	}
	return s
}
