package utils

import (
	"strings"
)

// Create a calendar address (RFC5545 3.3.3) from a bare mail address.
//
// An address that already carries the `mailto:` scheme is returned as is.
func NewCalAddress(mail string) string {
	mail = strings.TrimSpace(mail)
	if len(mail) >= 7 && strings.EqualFold(mail[:7], "mailto:") {
		return "mailto:" + mail[7:]
	}
	return "mailto:" + mail
}
