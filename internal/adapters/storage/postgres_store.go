package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/fraudwatch/message-security/internal/domain"
)

// PostgresStore implements ports.AnalysisStore for PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a PostgreSQL connection pool and verifies it.
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Modest pool; the write path is one insert per analyzed message.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// InitSchema creates database tables if they don't exist.
// In production, use proper migration tools.
func (s *PostgresStore) InitSchema() error {
	schema := `
	-- ============================================================================
	-- RISK_ANALYSES TABLE
	-- ============================================================================
	-- One row per analyzed message: the numeric score, its categorical level,
	-- and the evidence lists that produced it.
	--
	-- Prototype simplifications:
	-- 1. Evidence lists (detected_threats, suspicious_elements, recommendations,
	--    header_findings, scam_categories) stored as JSONB string arrays.
	--    They are always read alongside their parent analysis, so no joins needed.
	--    Production: a dedicated detections table (id, analysis_id, label, evidence)
	--    would allow queries like "all brand-spoofing hits this week".
	--
	-- 2. message_preview (500 chars) instead of the full message. Full bodies
	--    belong in object storage; the hot table only needs enough for display.
	--
	-- 3. No review workflow columns (review_status, reviewed_by). A human
	--    confirm/dismiss loop is how the keyword corpora get tuned over time.
	CREATE TABLE IF NOT EXISTS risk_analyses (
		id UUID PRIMARY KEY,
		identity VARCHAR(128),
		sender_email VARCHAR(254),
		message_preview TEXT,
		risk_score INTEGER NOT NULL,
		risk_level VARCHAR(10) NOT NULL,
		detected_threats JSONB,
		suspicious_elements JSONB,
		recommendations JSONB,
		header_findings JSONB,
		scam_categories JSONB,
		analyzed_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	-- Backs GetHighRiskAnalyses: filter on risk_level, newest first
	CREATE INDEX IF NOT EXISTS idx_risk_level ON risk_analyses(risk_level, analyzed_at DESC);
	-- Investigation view: "everything this identity submitted lately"
	CREATE INDEX IF NOT EXISTS idx_risk_identity ON risk_analyses(identity, analyzed_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveAnalysis inserts a completed risk analysis.
func (s *PostgresStore) SaveAnalysis(ctx context.Context, analysis *domain.RiskAnalysis) error {
	threatsJSON, err := json.Marshal(analysis.DetectedThreats)
	if err != nil {
		return fmt.Errorf("failed to marshal threats: %w", err)
	}
	elementsJSON, err := json.Marshal(analysis.SuspiciousElements)
	if err != nil {
		return fmt.Errorf("failed to marshal suspicious elements: %w", err)
	}
	recsJSON, err := json.Marshal(analysis.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	headerJSON, err := json.Marshal(analysis.HeaderFindings)
	if err != nil {
		return fmt.Errorf("failed to marshal header findings: %w", err)
	}
	categoriesJSON, err := json.Marshal(analysis.ScamCategories)
	if err != nil {
		return fmt.Errorf("failed to marshal scam categories: %w", err)
	}

	query := `
		INSERT INTO risk_analyses (
			id, identity, sender_email, message_preview, risk_score, risk_level,
			detected_threats, suspicious_elements, recommendations,
			header_findings, scam_categories, analyzed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(ctx, query,
		analysis.ID, analysis.Identity, analysis.SenderEmail, analysis.MessagePreview,
		analysis.RiskScore, analysis.RiskLevel, threatsJSON, elementsJSON,
		recsJSON, headerJSON, categoriesJSON, analysis.AnalyzedAt,
	)
	return err
}

// GetHighRiskAnalyses retrieves recent HIGH and CRITICAL analyses, highest
// score first.
func (s *PostgresStore) GetHighRiskAnalyses(ctx context.Context, limit int) ([]domain.RiskAnalysis, error) {
	query := `
		SELECT id, identity, sender_email, message_preview, risk_score, risk_level,
		       detected_threats, suspicious_elements, recommendations,
		       header_findings, scam_categories, analyzed_at
		FROM risk_analyses
		WHERE risk_level IN ('HIGH', 'CRITICAL')
		ORDER BY risk_score DESC, analyzed_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	analyses := make([]domain.RiskAnalysis, 0)
	for rows.Next() {
		var analysis domain.RiskAnalysis
		var threatsJSON, elementsJSON, recsJSON, headerJSON, categoriesJSON []byte

		err := rows.Scan(
			&analysis.ID, &analysis.Identity, &analysis.SenderEmail, &analysis.MessagePreview,
			&analysis.RiskScore, &analysis.RiskLevel, &threatsJSON, &elementsJSON,
			&recsJSON, &headerJSON, &categoriesJSON, &analysis.AnalyzedAt,
		)
		if err != nil {
			return nil, err
		}

		json.Unmarshal(threatsJSON, &analysis.DetectedThreats)
		json.Unmarshal(elementsJSON, &analysis.SuspiciousElements)
		json.Unmarshal(recsJSON, &analysis.Recommendations)
		json.Unmarshal(headerJSON, &analysis.HeaderFindings)
		json.Unmarshal(categoriesJSON, &analysis.ScamCategories)

		analyses = append(analyses, analysis)
	}

	return analyses, rows.Err()
}
