package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/pronostic-tracker/external/sportmonks"
	"github.com/riskibarqy/pronostic-tracker/internal/config"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/match"
	"github.com/riskibarqy/pronostic-tracker/internal/domain/prediction"
	"github.com/riskibarqy/pronostic-tracker/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pronostic-tracker/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/pronostic-tracker/internal/interfaces/httpapi"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/logging"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/metrics"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/resilience"
	"github.com/riskibarqy/pronostic-tracker/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// Container holds the wired services shared by the API and the batch CLI.
type Container struct {
	Ingestion   *usecase.MatchIngestionService
	Settlement  *usecase.SettlementService
	Lookup      *usecase.MatchLookupService
	Stats       *usecase.StatsService
	Predictions *usecase.PredictionService
	Metrics     *metrics.Recorder

	db *sqlx.DB
}

func Build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		matchRepo      match.Repository
		predictionRepo prediction.Repository
		db             *sqlx.DB
	)
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		matches := memory.NewMatchRepository()
		matchRepo = matches
		predictionRepo = memory.NewPredictionRepository(matches)
		logger.Warn("using in-memory storage", "driver", cfg.StorageDriver)
	default:
		var err error
		db, err = openDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		matchRepo = postgres.NewMatchRepository(db)
		predictionRepo = postgres.NewPredictionRepository(db)
	}

	provider := sportmonks.NewClient(sportmonks.ClientConfig{
		BaseURL: cfg.SportMonksBaseURL,
		Token:   cfg.SportMonksToken,
		Timeout: cfg.SportMonksTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SportMonksCircuitEnabled,
			FailureThreshold: cfg.SportMonksCircuitFailureCount,
			OpenTimeout:      cfg.SportMonksCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SportMonksCircuitHalfOpenMaxReq,
		},
	})
	if strings.TrimSpace(cfg.SportMonksToken) == "" {
		logger.Warn("SPORTMONKS_TOKEN is empty, provider calls will fail")
	}

	recorder := metrics.NewRecorder()
	normalizer := usecase.NewFixtureNormalizer(provider, cfg.Location, cfg.LookupCacheTTL, logger)

	return &Container{
		Ingestion:   usecase.NewMatchIngestionService(provider, normalizer, matchRepo, recorder, cfg.Location, logger),
		Settlement:  usecase.NewSettlementService(provider, matchRepo, predictionRepo, recorder, cfg.SettleLookahead, logger),
		Lookup:      usecase.NewMatchLookupService(provider, normalizer, matchRepo),
		Stats:       usecase.NewStatsService(predictionRepo),
		Predictions: usecase.NewPredictionService(matchRepo, predictionRepo),
		Metrics:     recorder,
		db:          db,
	}, nil
}

func (c *Container) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func NewHTTPServer(cfg config.Config, c *Container, logger *logging.Logger) (*http.Server, error) {
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(
		c.Ingestion,
		c.Settlement,
		c.Lookup,
		c.Stats,
		c.Predictions,
		c.Metrics.Handler(),
		cfg.IngestDaysAhead,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}

func openDatabase(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
