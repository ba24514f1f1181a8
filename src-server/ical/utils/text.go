package utils

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
)

// Escape a TEXT value (RFC5545 3.3.11). The value is NFC-normalized first so
// the same text always produces the same octets on the wire.
func EscapeText(s string) string {
	return textEscaper.Replace(norm.NFC.String(s))
}

// Report whether the string is empty once surrounding whitespace is removed
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
