package analysis

import (
	"testing"

	"github.com/fraudwatch/message-security/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSenderAuthenticator_AnalyzeSender(t *testing.T) {
	auth := NewSenderAuthenticator()

	tests := []struct {
		name          string
		email         string
		expectedScore int
		expectThreats []string
	}{
		{
			name:          "legitimate brand domain",
			email:         "service@paypal.com",
			expectedScore: 0,
		},
		{
			name:          "brand on unexpected domain",
			email:         "alerts@paypal-secure.net",
			expectedScore: 30,
			expectThreats: []string{"Potential Brand Spoofing"},
		},
		{
			name:          "brand spoof plus suspicious extension",
			email:         "support@paypal-security.info",
			expectedScore: 45,
			expectThreats: []string{"Potential Brand Spoofing", "Suspicious Domain Extension"},
		},
		{
			name:          "digits in username",
			email:         "john1985@example.net",
			expectedScore: 10,
			expectThreats: []string{"Numbers in Username"},
		},
		{
			name:          "digits after dot in local part are ignored",
			email:         "john.1985@example.net",
			expectedScore: 0,
		},
		{
			name:          "all three checks fire",
			email:         "amazon99@prizes.tk",
			expectedScore: 55,
			expectThreats: []string{"Potential Brand Spoofing", "Suspicious Domain Extension", "Numbers in Username"},
		},
		{
			name:          "suspicious extension only",
			email:         "newsletter@updates.biz",
			expectedScore: 15,
			expectThreats: []string{"Suspicious Domain Extension"},
		},
		{
			name:          "plain personal address",
			email:         "jane.doe@example.net",
			expectedScore: 0,
		},
		{
			name:          "brand check is case insensitive",
			email:         "ALERTS@PAYPAL-SECURE.NET",
			expectedScore: 30,
			expectThreats: []string{"Potential Brand Spoofing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, threats := auth.AnalyzeSender(tt.email)

			assert.Equal(t, tt.expectedScore, score)
			assert.Equal(t, tt.expectThreats, threats)
		})
	}
}

func TestSenderAuthenticator_AnalyzeHeaders(t *testing.T) {
	auth := NewSenderAuthenticator()

	tests := []struct {
		name           string
		headers        domain.Headers
		expectedScore  int
		expectFindings []string
	}{
		{
			name: "all three authentications fail",
			headers: domain.Headers{
				"Authentication-Results": {"mx.example.com; spf=fail; dkim=fail; dmarc=fail"},
			},
			expectedScore:  60,
			expectFindings: []string{"SPF Authentication Failed", "DKIM Authentication Failed", "DMARC Authentication Failed"},
		},
		{
			name: "passing results contribute nothing",
			headers: domain.Headers{
				"Authentication-Results": {"mx.example.com; spf=pass; dkim=pass; dmarc=pass"},
			},
			expectedScore: 0,
		},
		{
			name: "single suspicious relay",
			headers: domain.Headers{
				"Received": {"from [unknown] (10.1.2.3) by mx.example.com"},
			},
			expectedScore:  10,
			expectFindings: []string{"Suspicious Received Header"},
		},
		{
			name: "one hop with two markers counts once",
			headers: domain.Headers{
				"Received": {"from localhost (127.0.0.1) by mx.example.com"},
			},
			expectedScore:  10,
			expectFindings: []string{"Suspicious Received Header"},
		},
		{
			name:          "empty headers",
			headers:       domain.Headers{},
			expectedScore: 0,
		},
		{
			name: "clean relay chain",
			headers: domain.Headers{
				"Received": {
					"from mail.example.org by mx.example.com",
					"from smtp.example.net by mail.example.org",
				},
			},
			expectedScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, findings := auth.AnalyzeHeaders(tt.headers)

			assert.Equal(t, tt.expectedScore, score)
			assert.Equal(t, tt.expectFindings, findings)
		})
	}
}
