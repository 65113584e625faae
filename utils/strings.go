package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName turns identifiers like "open-graph" or "contain_letterbox" into
// "Open Graph" / "Contain Letterbox".
func DisplayName(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return cases.Title(language.English).String(s)
}

// UpperName upper-cases a short token, e.g. a format name ("webp" -> "WEBP").
func UpperName(s string) string {
	return cases.Upper(language.Und).String(s)
}
