package analysis

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// urlPattern is deliberately permissive: scheme plus any run of characters
// that commonly appear in URLs. Precise RFC 3986 parsing happens later, per
// extracted candidate, in extractURLDomain.
var urlPattern = regexp.MustCompile(`https?://[A-Za-z0-9$_.+!*(),%@&=:~#/?-]+`)

// fold lowercases text with a locale-invariant case fold so that matching
// behaves identically regardless of the host locale (Turkish dotless-i and
// friends). A cases.Caser is stateful, so a fresh one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// extractURLs returns every URL-looking substring of the message, in order.
func extractURLs(message string) []string {
	return urlPattern.FindAllString(message, -1)
}

// extractURLDomain returns the folded authority of a URL, falling back to
// the folded raw string when it cannot be parsed.
func extractURLDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return fold(rawURL)
	}
	return fold(parsed.Host)
}

// emailDomain extracts the domain part of an email address, folded.
// Returns "" for strings without an "@".
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return fold(email[at+1:])
}

// emailLocalPart returns the portion of the address before the "@",
// truncated at its first "." (the part attackers decorate with digits).
func emailLocalPart(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	if dot := strings.Index(local, "."); dot >= 0 {
		local = local[:dot]
	}
	return local
}

// containsDigit reports whether s contains any ASCII digit.
func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
