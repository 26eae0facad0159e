package ports

import (
	"context"

	"github.com/fraudwatch/message-security/internal/domain"
)

// AnalysisStore persists completed risk analyses.
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, analysis *domain.RiskAnalysis) error
	GetHighRiskAnalyses(ctx context.Context, limit int) ([]domain.RiskAnalysis, error)
	Close() error
}
