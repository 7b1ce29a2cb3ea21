package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// TitleCase is the deterministic local fallback for canonical names: split
// on whitespace, hyphens, and underscores, capitalize each token, rejoin
// with single spaces. "door-frame_TOP" becomes "Door Frame Top".
func TitleCase(s string) string {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '-' || r == '_'
	})
	return titleCaser.String(strings.Join(tokens, " "))
}
