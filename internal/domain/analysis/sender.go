package analysis

import (
	"strings"

	"github.com/fraudwatch/message-security/internal/domain"
)

// SenderAuthenticator scores a claimed sender address, and optionally raw
// protocol headers, for spoofing indicators. It holds no mutable state and
// is safe for concurrent use.
//
// All checks are independent and additive; a single address can trip every
// one of them.
type SenderAuthenticator struct {
	brandTokens    []string
	expectedTLDs   []string
	suspiciousTLDs []string
}

// NewSenderAuthenticator creates a sender authenticator with the built-in
// brand-token and TLD reputation sets.
func NewSenderAuthenticator() *SenderAuthenticator {
	return &SenderAuthenticator{
		brandTokens: []string{
			"bank", "paypal", "amazon", "microsoft", "apple",
		},
		// TLD patterns a legitimate owner of those brands would use.
		expectedTLDs: []string{".com", ".co.uk", ".org"},
		// Low-reputation extensions frequently seen on throwaway domains.
		suspiciousTLDs: []string{".tk", ".ml", ".ga", ".cf", ".info", ".biz"},
	}
}

// AnalyzeSender inspects an email address and returns its spoofing
// sub-score together with the threat labels that fired.
func (a *SenderAuthenticator) AnalyzeSender(email string) (int, []string) {
	score := 0
	var threats []string

	folded := fold(email)
	emailDom := emailDomain(email)

	// Brand spoofing: a recognizable institution token on a domain that
	// lacks any of the TLD patterns the real brand would use.
	for _, brand := range a.brandTokens {
		if !strings.Contains(folded, brand) {
			continue
		}
		expected := false
		for _, tld := range a.expectedTLDs {
			if strings.Contains(emailDom, tld) {
				expected = true
				break
			}
		}
		if !expected {
			score += 30
			threats = append(threats, "Potential Brand Spoofing")
		}
		break
	}

	for _, tld := range a.suspiciousTLDs {
		if strings.HasSuffix(emailDom, tld) {
			score += 15
			threats = append(threats, "Suspicious Domain Extension")
			break
		}
	}

	if containsDigit(emailLocalPart(email)) {
		score += 10
		threats = append(threats, "Numbers in Username")
	}

	return score, threats
}

// AnalyzeHeaders inspects protocol headers for authentication failures and
// suspicious routing. Used only by the header-aware analysis path.
//
// Unknown or missing fields simply contribute nothing; a malformed header
// map is never an error.
func (a *SenderAuthenticator) AnalyzeHeaders(headers domain.Headers) (int, []string) {
	score := 0
	var findings []string

	if authResults := fold(headers.First("Authentication-Results")); authResults != "" {
		if strings.Contains(authResults, "spf=fail") {
			score += 20
			findings = append(findings, "SPF Authentication Failed")
		}
		if strings.Contains(authResults, "dkim=fail") {
			score += 15
			findings = append(findings, "DKIM Authentication Failed")
		}
		if strings.Contains(authResults, "dmarc=fail") {
			score += 25
			findings = append(findings, "DMARC Authentication Failed")
		}
	}

	// Each suspicious Received line counts on its own; a relay chain that
	// bounces through several unknown hops compounds the score.
	suspiciousMarkers := []string{"[unknown]", "localhost", "127.0.0.1"}
	for _, received := range headers["Received"] {
		line := fold(received)
		for _, marker := range suspiciousMarkers {
			if strings.Contains(line, marker) {
				score += 10
				findings = append(findings, "Suspicious Received Header")
				break
			}
		}
	}

	return score, findings
}
