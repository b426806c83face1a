package document

import "strings"

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeAttr escapes the five XML special characters for use inside an
// attribute value.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
