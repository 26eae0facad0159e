package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudwatch/message-security/internal/domain"
	"github.com/fraudwatch/message-security/internal/domain/analysis"
	"github.com/fraudwatch/message-security/internal/logging"
)

type fakeLimiter struct {
	admit bool
	err   error
	calls int
}

func (f *fakeLimiter) Admit(_ context.Context, _ string, _ time.Time) (bool, error) {
	f.calls++
	return f.admit, f.err
}

type fakeStore struct {
	saved   []*domain.RiskAnalysis
	saveErr error
}

func (f *fakeStore) SaveAnalysis(_ context.Context, analysis *domain.RiskAnalysis) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, analysis)
	return nil
}

func (f *fakeStore) GetHighRiskAnalyses(_ context.Context, _ int) ([]domain.RiskAnalysis, error) {
	return nil, nil
}

func (f *fakeStore) Close() error { return nil }

func newTestService(limiter *fakeLimiter, store *fakeStore) *MessageSecurityService {
	svc := NewMessageSecurityService(
		limiter,
		nil,
		analysis.NewScorer(analysis.DefaultCorpora()),
		analysis.NewClassifier(analysis.DefaultCategories()),
		logging.New(logging.Config{Level: "fatal", Format: "json"}),
	)
	// Assign after construction so a nil *fakeStore stays a nil interface.
	if store != nil {
		svc.store = store
	}
	return svc
}

func TestAnalyzeMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("admitted request is scored and persisted", func(t *testing.T) {
		store := &fakeStore{}
		svc := newTestService(&fakeLimiter{admit: true}, store)

		result, err := svc.AnalyzeMessage(ctx, AnalysisRequest{
			Identity:    "user-1",
			Message:     "Please verify account at http://bit.ly/x",
			SenderEmail: "support@paypal-security.info",
		})
		require.NoError(t, err)

		assert.NotEqual(t, "", result.ID.String())
		assert.Equal(t, "user-1", result.Identity)
		assert.Greater(t, result.RiskScore, 0)
		require.Len(t, store.saved, 1)
		assert.Equal(t, result.ID, store.saved[0].ID)
	})

	t.Run("rate limited request is rejected before scoring", func(t *testing.T) {
		store := &fakeStore{}
		svc := newTestService(&fakeLimiter{admit: false}, store)

		result, err := svc.AnalyzeMessage(ctx, AnalysisRequest{
			Identity: "user-1",
			Message:  "anything",
		})

		assert.ErrorIs(t, err, ErrRateLimited)
		assert.Nil(t, result)
		assert.Empty(t, store.saved)
		assert.Equal(t, int64(1), svc.Stats().RateLimited)
		assert.Equal(t, int64(0), svc.Stats().TotalAnalyzed)
	})

	t.Run("limiter failure degrades open", func(t *testing.T) {
		limiter := &fakeLimiter{admit: false, err: errors.New("redis down")}
		svc := newTestService(limiter, nil)

		result, err := svc.AnalyzeMessage(ctx, AnalysisRequest{
			Identity: "user-1",
			Message:  "hello there",
		})

		require.NoError(t, err)
		assert.NotNil(t, result)
	})

	t.Run("store failure does not fail the analysis", func(t *testing.T) {
		store := &fakeStore{saveErr: errors.New("connection refused")}
		svc := newTestService(&fakeLimiter{admit: true}, store)

		result, err := svc.AnalyzeMessage(ctx, AnalysisRequest{
			Identity: "user-1",
			Message:  "hello there",
		})

		require.NoError(t, err)
		assert.NotNil(t, result)
	})

	t.Run("headers trigger the header-aware path", func(t *testing.T) {
		svc := newTestService(&fakeLimiter{admit: true}, nil)

		result, err := svc.AnalyzeMessage(ctx, AnalysisRequest{
			Identity: "user-1",
			Message:  "hello",
			Headers: domain.Headers{
				"Authentication-Results": {"mx.example.com; dmarc=fail"},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, 25, result.RiskScore)
		assert.Equal(t, []string{"DMARC Authentication Failed"}, result.HeaderFindings)
	})

	t.Run("scam categories are attached", func(t *testing.T) {
		svc := newTestService(&fakeLimiter{admit: true}, nil)

		result, err := svc.AnalyzeMessage(ctx, AnalysisRequest{
			Identity: "user-1",
			Message:  "Guaranteed high returns if you invest today!",
		})

		require.NoError(t, err)
		assert.Contains(t, result.ScamCategories, "investment_scams")
	})

	t.Run("truncation never splits a rune", func(t *testing.T) {
		svc := newTestService(&fakeLimiter{admit: true}, nil)

		// A two-byte rune straddles the 500-byte cut point.
		message := strings.Repeat("a", 499) + strings.Repeat("£", 20)
		result, err := svc.AnalyzeMessage(ctx, AnalysisRequest{
			Identity: "user-1",
			Message:  message,
		})

		require.NoError(t, err)
		assert.True(t, utf8.ValidString(result.MessagePreview))
		assert.Equal(t, strings.Repeat("a", 499), result.MessagePreview)
	})

	t.Run("long messages are truncated in the preview", func(t *testing.T) {
		svc := newTestService(&fakeLimiter{admit: true}, nil)

		long := make([]byte, 2000)
		for i := range long {
			long[i] = 'a'
		}
		result, err := svc.AnalyzeMessage(ctx, AnalysisRequest{
			Identity: "user-1",
			Message:  string(long),
		})

		require.NoError(t, err)
		assert.Len(t, result.MessagePreview, 500)
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeLimiter{admit: true}, nil)

	_, err := svc.AnalyzeMessage(ctx, AnalysisRequest{Identity: "a", Message: "hi"})
	require.NoError(t, err)
	_, err = svc.AnalyzeMessage(ctx, AnalysisRequest{Identity: "a", Message: "bank account bitcoin"})
	require.NoError(t, err)

	stats := svc.Stats()
	assert.Equal(t, int64(2), stats.TotalAnalyzed)
	assert.Equal(t, int64(1), stats.ByLevel[domain.RiskLow])
	assert.Equal(t, int64(1), stats.ByLevel[domain.RiskMedium])
}
