package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caffeinepub/trade-setup-analyzer/internal/api/middleware"
	"github.com/caffeinepub/trade-setup-analyzer/internal/config"
	"github.com/caffeinepub/trade-setup-analyzer/internal/marketdata"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
	"github.com/caffeinepub/trade-setup-analyzer/internal/testutil"
)

type emptyHistory struct{}

func (emptyHistory) FetchDailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]model.PricePoint, error) {
	return nil, nil
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	db := testutil.SetupTestDB(t)
	fetcher := testutil.NewStubFetcher()
	coord := testutil.NewTestCoordinator(t, fetcher)
	quotes := testutil.NewTestQuoteService(t, coord, marketdata.SystemClock())
	analyses := testutil.NewTestAnalysisService(t, db, coord, emptyHistory{})
	watchlist := testutil.NewTestWatchlistService(t, db, quotes)
	sessions := testutil.NewTestSessionService(t, db, time.Hour)
	systems := testutil.NewTestSystemService(t, db)
	logs := testutil.NewTestLogService(t, db)
	importer := testutil.NewTestImporter(t, db)

	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}

	return NewRouter(quotes, analyses, watchlist, sessions, systems, logs, importer, cfg, zerolog.Nop())
}

func loginThroughRouter(t *testing.T, router http.Handler) string {
	t.Helper()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/session/login", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Login failed with %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&resp)
	return resp.Token
}

func TestRouterServesOpenReads(t *testing.T) {
	router := setupRouter(t)

	paths := []string{
		"/api/quotes",
		"/api/diagnostics",
		"/api/analyses",
		"/api/watchlist",
		"/api/system/health",
		"/api/system/version",
		"/api/system/logs",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			if w.Code != http.StatusOK {
				t.Errorf("Expected 200 for %s, got %d: %s", path, w.Code, w.Body.String())
			}
		})
	}
}

func TestRouterServesQuotes(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quotes/AAPL", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var quote model.Quote
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&quote)

	if quote.Ticker != "AAPL" {
		t.Errorf("Expected ticker AAPL, got %q", quote.Ticker)
	}
}

func TestRouterValidatesPathParameters(t *testing.T) {
	router := setupRouter(t)

	t.Run("rejects a malformed ticker", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quotes/WAYTOOLONGSYMBOLXX", nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("rejects a malformed analysis id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analyses/not-a-uuid", nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestRouterGuardsMutatingRoutes(t *testing.T) {
	router := setupRouter(t)
	id := uuid.New().String()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/quotes/AAPL/refresh"},
		{http.MethodPost, "/api/analyses"},
		{http.MethodDelete, "/api/analyses/" + id},
		{http.MethodPost, "/api/watchlist"},
		{http.MethodPost, "/api/watchlist/refresh"},
		{http.MethodDelete, "/api/watchlist/" + id},
		{http.MethodPost, "/api/import/trades"},
		{http.MethodGet, "/api/import/trades"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))

			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401 without a session token, got %d", w.Code)
			}
		})
	}
}

func TestRouterAcceptsAuthenticatedMutations(t *testing.T) {
	router := setupRouter(t)
	token := loginThroughRouter(t, router)

	t.Run("adds a watchlist entry", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/watchlist", strings.NewReader(`{"ticker":"NVDA","label":"Chips"}`))
		req.Header.Set(middleware.SessionHeader, token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("refreshes a quote", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/quotes/AAPL/refresh", nil)
		req.Header.Set(middleware.SessionHeader, token)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})
}
