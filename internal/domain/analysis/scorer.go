package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/fraudwatch/message-security/internal/domain"
)

// Threat labels emitted by the scoring passes.
const (
	threatPhishingKeywords = "Phishing Keywords Detected"
	threatFinancial        = "Financial Social Engineering"
	threatLinkShortener    = "Suspicious URL Shortener"
	threatUrgency          = "High Urgency Language"
)

// Scorer runs every detection pass over a message and aggregates the
// contributions into one RiskAnalysis. It is deterministic and pure given
// its inputs, holds no mutable state, and is safe for concurrent use.
type Scorer struct {
	corpora *Corpora
	sender  *SenderAuthenticator
}

// NewScorer creates a message risk scorer over the given corpora.
func NewScorer(corpora *Corpora) *Scorer {
	return &Scorer{
		corpora: corpora,
		sender:  NewSenderAuthenticator(),
	}
}

// Analyze scores a message, optionally together with its claimed sender
// address (pass "" when unknown). An empty message is not an error; it
// simply contributes nothing and comes back LOW.
func (s *Scorer) Analyze(message, senderEmail string) domain.RiskAnalysis {
	analysis := domain.RiskAnalysis{
		RiskLevel:  domain.RiskLow,
		AnalyzedAt: time.Now(),
	}

	folded := fold(message)

	// Phishing keywords: charge once per distinct term present.
	if matches := matchTerms(folded, s.corpora.PhishingKeywords); len(matches) > 0 {
		analysis.RiskScore += len(matches) * phishingKeywordWeight
		analysis.DetectedThreats = append(analysis.DetectedThreats, threatPhishingKeywords)
		analysis.SuspiciousElements = append(analysis.SuspiciousElements, matches...)
	}

	// Financial triggers: same mechanics, heavier weight.
	if matches := matchTerms(folded, s.corpora.FinancialTriggers); len(matches) > 0 {
		analysis.RiskScore += len(matches) * financialTriggerWeight
		analysis.DetectedThreats = append(analysis.DetectedThreats, threatFinancial)
		analysis.SuspiciousElements = append(analysis.SuspiciousElements, matches...)
	}

	// URLs: the count is recorded once; every shortener link compounds
	// the score individually.
	if urls := extractURLs(message); len(urls) > 0 {
		analysis.SuspiciousElements = append(analysis.SuspiciousElements,
			fmt.Sprintf("URLs Found: %d", len(urls)))
		for _, u := range urls {
			if s.corpora.IsLinkShortener(extractURLDomain(u)) {
				analysis.RiskScore += linkShortenerWeight
				analysis.DetectedThreats = append(analysis.DetectedThreats, threatLinkShortener)
			}
		}
	}

	// Urgency: unlike the passes above this counts raw occurrences, so a
	// message shouting "urgent" three times scores three times.
	urgencyCount := 0
	for _, word := range s.corpora.UrgencyWords {
		urgencyCount += strings.Count(folded, word)
	}
	if urgencyCount > 0 {
		analysis.RiskScore += urgencyCount * urgencyWordWeight
		analysis.DetectedThreats = append(analysis.DetectedThreats, threatUrgency)
	}

	if senderEmail != "" {
		senderScore, threats := s.sender.AnalyzeSender(senderEmail)
		analysis.RiskScore += senderScore
		analysis.DetectedThreats = append(analysis.DetectedThreats, threats...)
	}

	analysis.RiskLevel = domain.RiskLevelForScore(analysis.RiskScore)
	analysis.Recommendations = recommendationsFor(analysis.RiskLevel)
	return analysis
}

// AnalyzeWithHeaders runs the full analysis and additionally inspects raw
// protocol headers, re-deriving the level and recommendations from the
// combined score.
func (s *Scorer) AnalyzeWithHeaders(message, senderEmail string, headers domain.Headers) domain.RiskAnalysis {
	analysis := s.Analyze(message, senderEmail)

	if len(headers) > 0 {
		headerScore, findings := s.sender.AnalyzeHeaders(headers)
		analysis.RiskScore += headerScore
		analysis.HeaderFindings = findings
		analysis.RiskLevel = domain.RiskLevelForScore(analysis.RiskScore)
		analysis.Recommendations = recommendationsFor(analysis.RiskLevel)
	}

	return analysis
}

// matchTerms returns the corpus terms present in the folded text as
// substrings, preserving corpus order. Each term counts at most once no
// matter how often it occurs.
func matchTerms(folded string, terms []string) []string {
	var matches []string
	for _, term := range terms {
		if strings.Contains(folded, term) {
			matches = append(matches, term)
		}
	}
	return matches
}

// recommendationsFor selects the fixed advice block for a risk level.
// CRITICAL shares the strict do-not-interact list with HIGH.
func recommendationsFor(level domain.RiskLevel) []string {
	switch level {
	case domain.RiskHigh, domain.RiskCritical:
		return []string{
			"DO NOT CLICK any links or download attachments",
			"DO NOT provide personal or financial information",
			"Report this message as phishing to your email provider",
			"Verify sender through alternative communication method",
		}
	case domain.RiskMedium:
		return []string{
			"Exercise extreme caution with this message",
			"Verify sender identity before taking action",
			"Do not provide sensitive information",
			"Check URLs carefully before clicking",
		}
	default:
		return []string{
			"Message appears relatively safe",
			"Still exercise normal email caution",
			"Verify important requests independently",
		}
	}
}
