// Package application orchestrates admission control, message scoring and
// persistence into one analysis pipeline.
package application

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/fraudwatch/message-security/internal/domain"
	"github.com/fraudwatch/message-security/internal/domain/analysis"
	"github.com/fraudwatch/message-security/internal/logging"
	"github.com/fraudwatch/message-security/internal/ports"
)

// ErrRateLimited is returned when an identity has exhausted its analysis
// quota for the current window.
var ErrRateLimited = errors.New("rate limit exceeded")

const messagePreviewLength = 500

// AnalysisRequest is one message submitted for scoring. Identity is the
// rate-limit key (a user or API client, not the message sender). Headers
// are optional; when present the header-aware analysis path runs.
type AnalysisRequest struct {
	Identity    string
	Message     string
	SenderEmail string
	Headers     domain.Headers
}

// Stats are running counters for the lifetime of the service.
type Stats struct {
	TotalAnalyzed int64
	RateLimited   int64
	ByLevel       map[domain.RiskLevel]int64
}

// MessageSecurityService runs the full pipeline for each request: admission
// check, risk scoring, scam classification, then persistence. Persistence
// is optional and best-effort; a store failure never fails an analysis.
type MessageSecurityService struct {
	limiter    ports.Admitter
	store      ports.AnalysisStore
	scorer     *analysis.Scorer
	classifier *analysis.Classifier
	logger     *logging.Logger

	mu    sync.RWMutex
	stats Stats
}

// NewMessageSecurityService creates the analysis pipeline. store may be nil
// to run without persistence.
func NewMessageSecurityService(
	limiter ports.Admitter,
	store ports.AnalysisStore,
	scorer *analysis.Scorer,
	classifier *analysis.Classifier,
	logger *logging.Logger,
) *MessageSecurityService {
	return &MessageSecurityService{
		limiter:    limiter,
		store:      store,
		scorer:     scorer,
		classifier: classifier,
		logger:     logger.WithComponent("message-security"),
		stats: Stats{
			ByLevel: make(map[domain.RiskLevel]int64),
		},
	}
}

// AnalyzeMessage scores one message. Requests rejected by the limiter
// return ErrRateLimited before any scoring work happens.
func (s *MessageSecurityService) AnalyzeMessage(ctx context.Context, req AnalysisRequest) (*domain.RiskAnalysis, error) {
	admitted, err := s.limiter.Admit(ctx, req.Identity, time.Now())
	if err != nil {
		// Degrade open: an unreachable limiter should not take message
		// analysis down with it.
		s.logger.Error().Err(err).Str("identity", req.Identity).
			Msg("admission check failed, allowing request")
		admitted = true
	}
	if !admitted {
		s.mu.Lock()
		s.stats.RateLimited++
		s.mu.Unlock()
		s.logger.Warn().Str("identity", req.Identity).Msg("request rate limited")
		return nil, ErrRateLimited
	}

	var result domain.RiskAnalysis
	if len(req.Headers) > 0 {
		result = s.scorer.AnalyzeWithHeaders(req.Message, req.SenderEmail, req.Headers)
	} else {
		result = s.scorer.Analyze(req.Message, req.SenderEmail)
	}

	result.ID = uuid.New()
	result.Identity = req.Identity
	result.SenderEmail = req.SenderEmail
	result.MessagePreview = preview(req.Message)
	result.ScamCategories = s.classifier.Classify(req.Message)

	if s.store != nil {
		if err := s.store.SaveAnalysis(ctx, &result); err != nil {
			s.logger.Error().Err(err).Str("analysis_id", result.ID.String()).
				Msg("failed to persist analysis")
		}
	}

	s.mu.Lock()
	s.stats.TotalAnalyzed++
	s.stats.ByLevel[result.RiskLevel]++
	s.mu.Unlock()

	event := s.logger.Info()
	if result.RiskLevel == domain.RiskHigh || result.RiskLevel == domain.RiskCritical {
		event = s.logger.Warn()
	}
	event.
		Str("identity", req.Identity).
		Int("risk_score", result.RiskScore).
		Str("risk_level", string(result.RiskLevel)).
		Int("threats", len(result.DetectedThreats)).
		Msg("message analyzed")

	return &result, nil
}

// HighRiskAnalyses returns recent HIGH and CRITICAL analyses from the
// store, or nothing when running without persistence.
func (s *MessageSecurityService) HighRiskAnalyses(ctx context.Context, limit int) ([]domain.RiskAnalysis, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.GetHighRiskAnalyses(ctx, limit)
}

// Stats returns a copy of the running counters.
func (s *MessageSecurityService) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byLevel := make(map[domain.RiskLevel]int64, len(s.stats.ByLevel))
	for level, count := range s.stats.ByLevel {
		byLevel[level] = count
	}
	return Stats{
		TotalAnalyzed: s.stats.TotalAnalyzed,
		RateLimited:   s.stats.RateLimited,
		ByLevel:       byLevel,
	}
}

func preview(message string) string {
	if len(message) <= messagePreviewLength {
		return message
	}
	// Back off to a rune boundary so the preview stays valid UTF-8.
	cut := messagePreviewLength
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut]
}
