package auth

import (
	"regexp"
	"strings"
)

var localPartRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+$`)

// isCampusEmail reports whether email belongs to the configured campus
// mail domain. Only students of the campus may register.
func isCampusEmail(email, domain string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return false
	}
	if email[at+1:] != strings.ToLower(domain) {
		return false
	}
	return localPartRe.MatchString(email[:at])
}
