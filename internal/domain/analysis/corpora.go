package analysis

// Per-match weights for each corpus category. Phishing and financial
// passes charge per distinct term found; the urgency pass charges per
// occurrence; shorteners charge per matching URL.
const (
	phishingKeywordWeight  = 10
	financialTriggerWeight = 15
	urgencyWordWeight      = 5
	linkShortenerWeight    = 20
)

// Corpora holds the static trigger-term sets consumed by the scorer. All
// terms are stored pre-lowercased; the scorer folds input once and matches
// by substring. Build it once at startup and share it read-only.
type Corpora struct {
	PhishingKeywords  []string
	FinancialTriggers []string
	UrgencyWords      []string
	LinkShorteners    map[string]struct{}
}

// DefaultCorpora returns the built-in trigger sets: generic phishing lures
// plus UK-specific ones (tax authority, parcel delivery, utilities), named
// financial institutions and payment rails, urgency vocabulary, and known
// link-shortener domains.
//
// "urgent"/"immediate" style tokens live only in UrgencyWords; listing them
// as phishing keywords as well would charge the same signal twice.
func DefaultCorpora() *Corpora {
	shorteners := []string{
		"bit.ly", "tinyurl.com", "short.link", "rebrand.ly",
		"cutt.ly", "ow.ly", "t.ly", "is.gd", "buff.ly",
	}
	shortenerSet := make(map[string]struct{}, len(shorteners))
	for _, d := range shorteners {
		shortenerSet[d] = struct{}{}
	}

	return &Corpora{
		PhishingKeywords: []string{
			"verify account", "suspended", "click here",
			"limited time", "act now", "congratulations", "winner",
			"free money", "claim now", "security alert", "update payment",
			"confirm identity", "avoid suspension", "immediate action",
			// UK-specific lures
			"hmrc", "tax refund", "royal mail", "delivery failed",
			"tv licence", "council tax", "parking fine", "speeding ticket",
			"nhs", "prescription ready", "appointment cancelled",
			"energy bill", "british gas", "scottish power", "eon",
		},
		FinancialTriggers: []string{
			"bank account", "credit card", "paypal", "bitcoin",
			"cryptocurrency", "investment opportunity", "tax refund",
			"inheritance", "lottery", "prize money", "wire transfer",
			// UK financial institutions and payment rails
			"hsbc", "barclays", "lloyds", "natwest", "halifax", "santander",
			"nationwide", "tesco bank", "first direct", "monzo", "starling",
			"revolut", "wise", "sort code", "bacs payment", "faster payment",
			"standing order", "direct debit", "isa account", "pension fund",
		},
		UrgencyWords: []string{
			"immediate", "urgent", "asap", "hurry", "expires", "deadline",
		},
		LinkShorteners: shortenerSet,
	}
}

// IsLinkShortener reports whether a domain belongs to a known URL
// shortening service. The match is exact, not suffix-based.
func (c *Corpora) IsLinkShortener(domain string) bool {
	_, ok := c.LinkShorteners[domain]
	return ok
}
