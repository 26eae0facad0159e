package analysis

import (
	"strings"

	"github.com/fraudwatch/message-security/internal/domain"
)

// Classifier labels free text with known scam categories. Labels are
// advisory only and never contribute to a risk score.
type Classifier struct {
	categories []domain.ScamCategory
	byKey      map[string]domain.ScamCategory
}

// NewClassifier creates a classifier over the given category set. The set
// order is preserved in Classify results.
func NewClassifier(categories []domain.ScamCategory) *Classifier {
	byKey := make(map[string]domain.ScamCategory, len(categories))
	for _, cat := range categories {
		byKey[cat.Key] = cat
	}
	return &Classifier{categories: categories, byKey: byKey}
}

// Classify returns the keys of every category with at least one warning
// sign present in the text as a case-insensitive substring. Each category
// appears at most once, in corpus order. Returns nil when nothing matches.
func (c *Classifier) Classify(text string) []string {
	folded := fold(text)

	var keys []string
	for _, cat := range c.categories {
		for _, sign := range cat.WarningSigns {
			if strings.Contains(folded, fold(sign)) {
				keys = append(keys, cat.Key)
				break
			}
		}
	}
	return keys
}

// Category looks up a category by key.
func (c *Classifier) Category(key string) (domain.ScamCategory, bool) {
	cat, ok := c.byKey[key]
	return cat, ok
}

// Categories returns the full category set in corpus order.
func (c *Classifier) Categories() []domain.ScamCategory {
	return c.categories
}

// DefaultCategories returns the built-in scam taxonomy.
func DefaultCategories() []domain.ScamCategory {
	return []domain.ScamCategory{
		{
			Key:         "romance_scams",
			Description: "Emotional manipulation for financial gain",
			WarningSigns: []string{
				"Too good to be true profile",
				"Immediate love declarations",
				"Refuses video calls",
				"Always traveling/military",
				"Financial emergencies",
				"Poor grammar/language",
				"Stolen profile photos",
			},
			CommonPatterns: []string{
				"Military deployment",
				"Business trip abroad",
				"Medical emergency",
				"Inheritance issues",
				"Travel expenses",
				"Custom fees",
				"Family crisis",
			},
			ProtectionAdvice: []string{
				"Video call before meeting",
				"Never send money",
				"Reverse image search photos",
				"Meet in public places",
				"Verify identity independently",
			},
		},
		{
			Key:         "investment_scams",
			Description: "Fake investment opportunities promising high returns",
			WarningSigns: []string{
				"Guaranteed high returns",
				"Pressure to invest quickly",
				"Unregistered investments",
				"Complex strategies",
				"Celebrity endorsements",
				"Limited time offers",
			},
			CommonPatterns: []string{
				"Ponzi schemes",
				"Pyramid schemes",
				"Fake cryptocurrency",
				"Forex scams",
				"Binary options",
				"Advance fee fraud",
			},
			ProtectionAdvice: []string{
				"Check regulatory registration",
				"Get independent advice",
				"Be skeptical of guarantees",
				"Research thoroughly",
				"Start with small amounts",
			},
		},
		{
			Key:         "phishing_scams",
			Description: "Attempts to steal personal information through fake communications",
			WarningSigns: []string{
				"Urgent action required",
				"Generic greetings",
				"Suspicious links",
				"Grammar errors",
				"Unexpected attachments",
				"Requests for passwords",
			},
			CommonPatterns: []string{
				"Bank security alerts",
				"Package delivery",
				"Tax refunds",
				"Account suspensions",
				"Prize winnings",
				"Security breaches",
			},
			ProtectionAdvice: []string{
				"Verify sender independently",
				"Check URLs carefully",
				"Never click suspicious links",
				"Use two-factor authentication",
				"Keep software updated",
			},
		},
		{
			Key:         "crypto_scams",
			Description: "Cryptocurrency-related fraudulent schemes",
			WarningSigns: []string{
				"Guaranteed profits",
				"Celebrity endorsements",
				"Pump and dump schemes",
				"Fake exchanges",
				"Giveaway scams",
				"Cloud mining offers",
			},
			CommonPatterns: []string{
				"Fake ICOs",
				"Mining scams",
				"Wallet theft",
				"Exchange fraud",
				"Rug pulls",
				"Fake trading bots",
			},
			ProtectionAdvice: []string{
				"Use reputable exchanges",
				"Store coins securely",
				"Research thoroughly",
				"Be wary of social media promotions",
				"Never share private keys",
			},
		},
	}
}
