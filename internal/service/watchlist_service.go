package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/caffeinepub/trade-setup-analyzer/internal/marketdata"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
	"github.com/caffeinepub/trade-setup-analyzer/internal/repository"
	"github.com/caffeinepub/trade-setup-analyzer/internal/validation"
)

// refreshConcurrency bounds how many watchlist fetches run at once during a
// sweep. The coordinator's per-ticker gates make overlap safe; the bound
// just keeps a long list from opening dozens of connections.
const refreshConcurrency = 4

// WatchlistService manages the tracked-ticker list and the periodic quote
// refresh that keeps the view state warm for every item on it.
type WatchlistService struct {
	watchlistRepo *repository.WatchlistRepository
	quotes        *QuoteService
	log           zerolog.Logger
}

// NewWatchlistService creates a new WatchlistService with the provided dependencies.
func NewWatchlistService(watchlistRepo *repository.WatchlistRepository, quotes *QuoteService, log zerolog.Logger) *WatchlistService {
	return &WatchlistService{
		watchlistRepo: watchlistRepo,
		quotes:        quotes,
		log:           log,
	}
}

// AddWatchlistItem validates and stores a new tracked ticker.
// Returns ErrDuplicateEntry if the ticker is already on the list.
func (s *WatchlistService) AddWatchlistItem(ticker, label string) (model.WatchlistItem, error) {
	key := marketdata.NormalizeTicker(ticker)
	if err := validation.ValidateTicker(key); err != nil {
		return model.WatchlistItem{}, err
	}

	item := model.WatchlistItem{
		ID:      uuid.New().String(),
		Ticker:  key,
		Label:   strings.TrimSpace(label),
		AddedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := s.watchlistRepo.Create(item); err != nil {
		return model.WatchlistItem{}, err
	}

	s.log.Info().Str("ticker", key).Str("id", item.ID).Msg("watchlist item added")
	return item, nil
}

// GetWatchlist retrieves all tracked tickers sorted by symbol.
func (s *WatchlistService) GetWatchlist() ([]model.WatchlistItem, error) {
	return s.watchlistRepo.GetWatchlist()
}

// GetWatchlistItemOnID retrieves a single watchlist item by its ID.
func (s *WatchlistService) GetWatchlistItemOnID(id string) (model.WatchlistItem, error) {
	return s.watchlistRepo.GetWatchlistItemOnID(id)
}

// DeleteWatchlistItem removes a tracked ticker by its ID.
func (s *WatchlistService) DeleteWatchlistItem(id string) error {
	return s.watchlistRepo.DeleteWatchlistItem(id)
}

// RefreshAll fetches a fresh quote for every watched ticker through the
// quote layer, so view states and caches stay warm. Individual fetch
// failures are logged and skipped rather than aborting the sweep; the
// returned count is how many tickers refreshed successfully. Only context
// cancellation surfaces as an error.
func (s *WatchlistService) RefreshAll(ctx context.Context) (int, error) {
	items, err := s.watchlistRepo.GetWatchlist()
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	var refreshed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)

	for _, item := range items {
		item := item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := s.quotes.Fetch(gctx, item.Ticker); err != nil {
				s.log.Warn().Err(err).Str("ticker", item.Ticker).Msg("watchlist refresh fetch failed")
				return nil
			}
			refreshed.Add(1)
			return nil
		})
	}

	err = g.Wait()
	s.log.Info().
		Int64("refreshed", refreshed.Load()).
		Int("watched", len(items)).
		Msg("watchlist refresh complete")
	return int(refreshed.Load()), err
}
