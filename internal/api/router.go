package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/caffeinepub/trade-setup-analyzer/internal/api/handlers"
	custommiddleware "github.com/caffeinepub/trade-setup-analyzer/internal/api/middleware"
	"github.com/caffeinepub/trade-setup-analyzer/internal/config"
	"github.com/caffeinepub/trade-setup-analyzer/internal/service"
	"github.com/caffeinepub/trade-setup-analyzer/internal/tradeimport"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	quoteService *service.QuoteService,
	analysisService *service.AnalysisService,
	watchlistService *service.WatchlistService,
	sessionService *service.SessionService,
	systemService *service.SystemService,
	logService *service.LogService,
	importer *tradeimport.Importer,
	cfg *config.Config,
	log zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.RequestLogger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// Mutating routes require a valid session token. Reads stay open so the
	// dashboard can render without logging in.
	requireSession := custommiddleware.RequireSession(sessionService)

	// API routes
	r.Route("/api", func(r chi.Router) {
		quoteHandler := handlers.NewQuoteHandler(quoteService)

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", quoteHandler.States)

			r.Route("/{ticker}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateTickerMiddleware)
				r.Get("/", quoteHandler.Quote)
				r.Get("/state", quoteHandler.State)
				r.With(requireSession).Post("/refresh", quoteHandler.Refresh)
			})
		})

		r.Get("/diagnostics", quoteHandler.Diagnostics)

		r.Route("/analyses", func(r chi.Router) {
			analysisHandler := handlers.NewAnalysisHandler(analysisService)
			r.Get("/", analysisHandler.List)
			r.With(requireSession).Post("/", analysisHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", analysisHandler.Get)
				r.With(requireSession).Delete("/", analysisHandler.Delete)
			})
		})

		r.Route("/watchlist", func(r chi.Router) {
			watchlistHandler := handlers.NewWatchlistHandler(watchlistService)
			r.Get("/", watchlistHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/", watchlistHandler.Add)
				r.Post("/refresh", watchlistHandler.Refresh)

				r.Route("/{id}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Delete("/", watchlistHandler.Delete)
				})
			})
		})

		r.Route("/import", func(r chi.Router) {
			r.Use(requireSession)
			importHandler := handlers.NewImportHandler(importer)
			r.Post("/trades", importHandler.ImportTrades)
			r.Get("/trades", importHandler.ListTrades)

			r.Route("/trades/{id}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Delete("/", importHandler.DeleteTrade)
			})
		})

		r.Route("/session", func(r chi.Router) {
			sessionHandler := handlers.NewSessionHandler(sessionService, quoteService)
			r.Post("/login", sessionHandler.Login)
			r.Post("/logout", sessionHandler.Logout)
		})

		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService, logService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
			r.Get("/info", systemHandler.Info)
			r.Get("/logs", systemHandler.Logs)
		})
	})

	return r
}
