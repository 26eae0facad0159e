package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/fraudwatch/message-security/internal/adapters/storage"
	"github.com/fraudwatch/message-security/internal/application"
	"github.com/fraudwatch/message-security/internal/config"
	"github.com/fraudwatch/message-security/internal/domain"
	"github.com/fraudwatch/message-security/internal/domain/analysis"
	"github.com/fraudwatch/message-security/internal/logging"
	"github.com/fraudwatch/message-security/internal/ports"
	"github.com/fraudwatch/message-security/internal/ratelimit"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.NewDefault().Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
	})
	logger.Info().Str("environment", cfg.App.Environment).Msg("starting message security service")

	ctx := context.Background()

	// Storage is optional; without it analyses are scored but not kept.
	var store ports.AnalysisStore
	if cfg.Database.Enabled {
		pgStore, err := storage.NewPostgresStore(cfg.Database.DSN())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pgStore.Close()

		if err := pgStore.InitSchema(); err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize schema")
		}
		logger.Info().Msg("connected to postgres")
		store = pgStore
	}

	// Shared Redis quota when configured, per-process otherwise.
	var limiter ports.Admitter
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()

		logger.Info().Str("addr", cfg.Redis.Addr()).Msg("connected to redis")
		limiter = ratelimit.NewRedisSlidingWindow(
			client, cfg.Redis.KeyPrefix, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	} else {
		memLimiter := ratelimit.NewSlidingWindow(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		defer memLimiter.Close()
		limiter = memLimiter
	}

	service := application.NewMessageSecurityService(
		limiter,
		store,
		analysis.NewScorer(analysis.DefaultCorpora()),
		analysis.NewClassifier(analysis.DefaultCategories()),
		logger,
	)

	if err := runDemo(ctx, service, logger); err != nil {
		logger.Error().Err(err).Msg("demo pipeline failed")
		os.Exit(1)
	}
}

// runDemo pushes a handful of representative messages through the pipeline
// and prints what the analysis made of them.
func runDemo(ctx context.Context, service *application.MessageSecurityService, logger *logging.Logger) error {
	requests := []application.AnalysisRequest{
		{
			Identity: "demo-user",
			Message:  "Hi, just confirming our meeting on Thursday at 2pm. See you then!",
		},
		{
			Identity:    "demo-user",
			Message:     "URGENT: Your account has been suspended. Click here to verify account: http://bit.ly/secure-login",
			SenderEmail: "security@paypal-verify.tk",
		},
		{
			Identity:    "demo-user",
			Message:     "HMRC tax refund of £740 is waiting. Confirm your bank account and sort code before the deadline.",
			SenderEmail: "refunds@hmrc-gov.info",
		},
		{
			Identity: "demo-user",
			Message:  "Guaranteed high returns! Invest in bitcoin today, limited time offer from our investment opportunity.",
		},
		{
			Identity:    "demo-user",
			Message:     "Your parcel could not be delivered. Pay the redelivery fee here: http://tinyurl.com/redeliver",
			SenderEmail: "royal-mail@delivery-notice.ml",
			Headers: domain.Headers{
				"Authentication-Results": {"mx.example.com; spf=fail; dkim=fail; dmarc=fail"},
				"Received":               {"from [unknown] (10.0.0.5) by relay.example.com"},
			},
		},
	}

	for _, req := range requests {
		result, err := service.AnalyzeMessage(ctx, req)
		if err != nil {
			if errors.Is(err, application.ErrRateLimited) {
				logger.Warn().Str("identity", req.Identity).Msg("demo request rate limited")
				continue
			}
			return err
		}

		logger.Info().
			Str("preview", result.MessagePreview).
			Int("risk_score", result.RiskScore).
			Str("risk_level", string(result.RiskLevel)).
			Strs("threats", result.DetectedThreats).
			Strs("scam_categories", result.ScamCategories).
			Msg("analysis result")
	}

	stats := service.Stats()
	logger.Info().
		Int64("total_analyzed", stats.TotalAnalyzed).
		Int64("rate_limited", stats.RateLimited).
		Msg("demo complete")

	high, err := service.HighRiskAnalyses(ctx, 10)
	if err != nil {
		return err
	}
	for _, entry := range high {
		logger.Warn().
			Str("sender", entry.SenderEmail).
			Int("risk_score", entry.RiskScore).
			Str("risk_level", string(entry.RiskLevel)).
			Msg("stored high risk analysis")
	}

	return nil
}
