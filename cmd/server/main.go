package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/rs/zerolog"

	"github.com/caffeinepub/trade-setup-analyzer/internal/api"
	"github.com/caffeinepub/trade-setup-analyzer/internal/config"
	"github.com/caffeinepub/trade-setup-analyzer/internal/database"
	"github.com/caffeinepub/trade-setup-analyzer/internal/ledger"
	"github.com/caffeinepub/trade-setup-analyzer/internal/logger"
	"github.com/caffeinepub/trade-setup-analyzer/internal/logsink"
	"github.com/caffeinepub/trade-setup-analyzer/internal/marketdata"
	"github.com/caffeinepub/trade-setup-analyzer/internal/repository"
	"github.com/caffeinepub/trade-setup-analyzer/internal/scheduler"
	"github.com/caffeinepub/trade-setup-analyzer/internal/service"
	"github.com/caffeinepub/trade-setup-analyzer/internal/tradeimport"
	"github.com/caffeinepub/trade-setup-analyzer/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := logger.New(logger.Config{})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Console-only logger until the database sink exists
	boot := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	// Open database connection and bring the schema current
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		boot.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Root logger: console plus the queryable database sink
	logRepo := repository.NewLogRepository(db)
	sink := logsink.New(logRepo)
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}, sink)

	log.Info().Str("path", cfg.Database.Path).Msg("database ready")

	// Create repositories
	analysisRepo := repository.NewAnalysisRepository(db)
	watchlistRepo := repository.NewWatchlistRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	tradeRepo := repository.NewTradeRecordRepository(db)

	// Market data pipeline: the provider client behind the request coordinator
	baseURL := cfg.Provider.BaseURL
	if baseURL == "" {
		baseURL = yahoo.DefaultBaseURL
	}
	yahooClient := yahoo.NewClient(baseURL, cfg.Provider.Timeout, logger.Component(log, "marketdata"))
	coord := marketdata.NewCoordinator(yahooClient, marketdata.WithLogger(logger.Component(log, "marketdata")))

	// Single writer goroutine owning all analysis inserts
	writer := ledger.NewWriter(analysisRepo, logger.Component(log, "ledger"))

	keys, err := sessionKeys(cfg.Session.Keys, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to decode session keys")
	}

	// Create services
	quoteService := service.NewQuoteService(coord, marketdata.SystemClock(), logger.Component(log, "quote"))
	analysisService := service.NewAnalysisService(analysisRepo, writer, coord, yahooClient, logger.Component(log, "analysis"))
	watchlistService := service.NewWatchlistService(watchlistRepo, quoteService, logger.Component(log, "watchlist"))
	sessionService := service.NewSessionService(sessionRepo, keys, cfg.Session.TTL, logger.Component(log, "session"))
	systemService := service.NewSystemService(db, logger.Component(log, "system"))
	logService := service.NewLogService(logRepo)
	importer := tradeimport.NewImporter(tradeRepo, logger.Component(log, "import"))

	// Background jobs
	sched := scheduler.New(logger.Component(log, "scheduler"))
	err = sched.AddJob(cfg.Scheduler.WatchlistRefresh, scheduler.NewJob("watchlist-refresh", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		_, err := watchlistService.RefreshAll(ctx)
		return err
	}))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule watchlist refresh")
	}
	err = sched.AddJob(cfg.Scheduler.SessionCleanup, scheduler.NewJob("session-cleanup", func() error {
		_, err := sessionService.CleanupExpired()
		return err
	}))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule session cleanup")
	}
	sched.Start()

	// Create router
	router := api.NewRouter(
		quoteService,
		analysisService,
		watchlistService,
		sessionService,
		systemService,
		logService,
		importer,
		cfg,
		logger.Component(log, "http"),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop intake first, then drain the workers that feed the database.
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	sched.Stop()
	if err := writer.Close(); err != nil {
		log.Error().Err(err).Msg("closing analysis writer failed")
	}
	coord.ClearAll()

	log.Info().Msg("server exited")
	sink.Close()
}

// sessionKeys decodes the configured fernet keys, or generates an ephemeral
// one so the server still comes up without configuration. Ephemeral keys
// invalidate every session on restart.
func sessionKeys(configured []string, log zerolog.Logger) ([]*fernet.Key, error) {
	if len(configured) > 0 {
		return fernet.DecodeKeys(configured...)
	}

	var key fernet.Key
	if err := key.Generate(); err != nil {
		return nil, err
	}
	log.Warn().Msg("SESSION_KEYS not set, using an ephemeral key, sessions will not survive a restart")
	return []*fernet.Key{&key}, nil
}
