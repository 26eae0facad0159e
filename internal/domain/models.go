package domain

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel is the categorical verdict derived from a numeric risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskLevelForScore converts an accumulated risk score to a categorical level.
//
// One threshold table is used for every analysis path, including the
// header-aware one. Scores are unbounded above; the tiers only care about
// the fixed cut-offs.
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskCritical
	case score >= 50:
		return RiskHigh
	case score >= 25:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Headers is a case-sensitive multimap of message headers. Multi-valued
// fields (Received chains in particular) keep one entry per line.
type Headers map[string][]string

// First returns the first value for a header field, or "" when absent.
func (h Headers) First(key string) string {
	values := h[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// RiskAnalysis is the result of scoring a single message. A fresh value is
// produced per call; nothing in it is shared or mutated afterwards.
//
// Simplification: threats, elements and recommendations are plain ordered
// string slices. In production each detected threat would carry structured
// metadata (matched offset, rule version) for review tooling.
type RiskAnalysis struct {
	ID             uuid.UUID `json:"id"`
	Identity       string    `json:"identity,omitempty"`
	SenderEmail    string    `json:"sender_email,omitempty"`
	MessagePreview string    `json:"message_preview,omitempty"`

	// RiskScore is the sum of every sub-check's contribution. Sub-checks
	// only ever add; the score never decreases during an analysis.
	RiskScore int       `json:"risk_score"`
	RiskLevel RiskLevel `json:"risk_level"`

	// DetectedThreats holds one label per trigger category that fired, in
	// detection order. Duplicates are allowed when several sub-checks emit
	// the same label (e.g. one per matching shortener URL).
	DetectedThreats    []string `json:"detected_threats"`
	SuspiciousElements []string `json:"suspicious_elements"`
	Recommendations    []string `json:"recommendations"`

	// HeaderFindings is only populated by the header-aware analysis path.
	HeaderFindings []string `json:"header_findings,omitempty"`

	// ScamCategories is advisory labeling merged in by the application
	// layer; it never contributes to RiskScore.
	ScamCategories []string `json:"scam_categories,omitempty"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// ScamCategory describes one known scam taxonomy entry. The category set is
// built once at startup and treated as read-only afterwards.
type ScamCategory struct {
	Key              string   `json:"key"`
	Description      string   `json:"description"`
	WarningSigns     []string `json:"warning_signs"`
	CommonPatterns   []string `json:"common_patterns"`
	ProtectionAdvice []string `json:"protection_advice"`
}
