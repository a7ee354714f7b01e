package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// 去除变音符号，例如 "Saint-Laurent é" -> "Saint-Laurent e"
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ret, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return ret
}

// 由流域名生成可用于文件名的ASCII标识
func Slug(s string) string {
	s = StripAccents(strings.TrimSpace(s))
	var (
		b      strings.Builder
		sepped = true
	)
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			sepped = false
		case !sepped:
			b.WriteByte('_')
			sepped = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}
