package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caffeinepub/trade-setup-analyzer/internal/marketdata"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
	"github.com/caffeinepub/trade-setup-analyzer/internal/testutil"
)

func setupWatchlistHandler(t *testing.T) (*WatchlistHandler, *sql.DB, *testutil.StubFetcher) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	fetcher := testutil.NewStubFetcher()
	coord := testutil.NewTestCoordinator(t, fetcher)
	quotes := testutil.NewTestQuoteService(t, coord, marketdata.SystemClock())
	svc := testutil.NewTestWatchlistService(t, db, quotes)

	return NewWatchlistHandler(svc), db, fetcher
}

func TestWatchlistHandler_Add(t *testing.T) {
	t.Run("returns 201 with the stored item", func(t *testing.T) {
		handler, _, _ := setupWatchlistHandler(t)

		body := strings.NewReader(`{"ticker":" nvda ","label":"Chips"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/watchlist", body)
		w := httptest.NewRecorder()

		handler.Add(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var item model.WatchlistItem
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&item)

		if item.Ticker != "NVDA" {
			t.Errorf("Expected ticker 'NVDA', got '%s'", item.Ticker)
		}
		if item.Label != "Chips" {
			t.Errorf("Expected label 'Chips', got '%s'", item.Label)
		}
		if item.ID == "" {
			t.Error("Expected the item to carry an ID")
		}
	})

	t.Run("returns 409 for a duplicate ticker", func(t *testing.T) {
		handler, db, _ := setupWatchlistHandler(t)
		testutil.NewWatchlistItem().WithTicker("AAPL").Build(t, db)

		req := httptest.NewRequest(http.MethodPost, "/api/watchlist", strings.NewReader(`{"ticker":"aapl"}`))
		w := httptest.NewRecorder()

		handler.Add(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for a malformed ticker", func(t *testing.T) {
		handler, _, _ := setupWatchlistHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/watchlist", strings.NewReader(`{"ticker":"NOT A TICKER"}`))
		w := httptest.NewRecorder()

		handler.Add(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		handler, _, _ := setupWatchlistHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/watchlist", strings.NewReader("{not json"))
		w := httptest.NewRecorder()

		handler.Add(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestWatchlistHandler_List(t *testing.T) {
	handler, db, _ := setupWatchlistHandler(t)

	testutil.NewWatchlistItem().WithTicker("MSFT").Build(t, db)
	testutil.NewWatchlistItem().WithTicker("AAPL").Build(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/watchlist", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var items []model.WatchlistItem
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&items)

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Ticker != "AAPL" || items[1].Ticker != "MSFT" {
		t.Errorf("Expected tickers sorted [AAPL MSFT], got [%s %s]", items[0].Ticker, items[1].Ticker)
	}
}

func TestWatchlistHandler_Delete(t *testing.T) {
	handler, db, _ := setupWatchlistHandler(t)
	seeded := testutil.NewWatchlistItem().WithTicker("AAPL").Build(t, db)

	req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/watchlist/"+seeded.ID, map[string]string{
		"id": seeded.ID,
	})
	w := httptest.NewRecorder()

	handler.Delete(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	handler.Delete(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %d", w.Code)
	}
}

func TestWatchlistHandler_Refresh(t *testing.T) {
	handler, db, fetcher := setupWatchlistHandler(t)

	testutil.NewWatchlistItem().WithTicker("AAPL").Build(t, db)
	testutil.NewWatchlistItem().WithTicker("MSFT").Build(t, db)

	req := httptest.NewRequest(http.MethodPost, "/api/watchlist/refresh", nil)
	w := httptest.NewRecorder()

	handler.Refresh(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body RefreshResponse
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&body)

	if body.Refreshed != 2 {
		t.Errorf("Expected 2 refreshed tickers, got %d", body.Refreshed)
	}
	if fetcher.CallCount() != 2 {
		t.Errorf("Expected 2 provider calls, got %d", fetcher.CallCount())
	}
}
