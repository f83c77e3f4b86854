package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/caffeinepub/trade-setup-analyzer/internal/apperrors"
	"github.com/caffeinepub/trade-setup-analyzer/internal/indicators"
	"github.com/caffeinepub/trade-setup-analyzer/internal/ledger"
	"github.com/caffeinepub/trade-setup-analyzer/internal/marketdata"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
	"github.com/caffeinepub/trade-setup-analyzer/internal/repository"
)

// HistoryFetcher supplies the daily OHLCV series the indicator math runs
// over. The provider client implements it; tests substitute a stub.
type HistoryFetcher interface {
	FetchDailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]model.PricePoint, error)
}

// historyDays is how far back the indicator series reaches. The 50-day
// moving average needs 50 trading days; 120 calendar days covers weekends
// and market holidays with room to spare.
const historyDays = 120

// AnalysisService runs setup analyses: a coordinator-gated quote for the
// latest price, a daily history series for the indicator math, and the
// ledger writer for persistence.
type AnalysisService struct {
	analysisRepo *repository.AnalysisRepository
	writer       *ledger.Writer
	coord        *marketdata.Coordinator
	history      HistoryFetcher
	log          zerolog.Logger
}

// NewAnalysisService creates a new AnalysisService with the provided dependencies.
func NewAnalysisService(
	analysisRepo *repository.AnalysisRepository,
	writer *ledger.Writer,
	coord *marketdata.Coordinator,
	history HistoryFetcher,
	log zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		analysisRepo: analysisRepo,
		writer:       writer,
		coord:        coord,
		history:      history,
		log:          log,
	}
}

// Analyze fetches the current quote and daily history for a ticker, derives
// the indicator levels, and queues the resulting setup for persistence.
// The returned setup carries its assigned ID; the row itself is written by
// the ledger goroutine shortly after. Indicator fields stay nil when the
// history is too short to compute them.
func (s *AnalysisService) Analyze(ctx context.Context, ticker, notes string) (model.TradeSetup, error) {
	key := marketdata.NormalizeTicker(ticker)
	if key == "" {
		return model.TradeSetup{}, apperrors.ErrEmptyTicker
	}

	quote, err := s.coord.Fetch(ctx, key)
	if err != nil {
		return model.TradeSetup{}, err
	}

	end := time.Now().UTC()
	points, err := s.history.FetchDailyHistory(ctx, key, end.AddDate(0, 0, -historyDays), end)
	if err != nil {
		return model.TradeSetup{}, err
	}

	setup := model.TradeSetup{
		Ticker:      key,
		LatestPrice: quote.LatestPrice,
		Trend:       model.TrendFlat,
		Notes:       notes,
		Provider:    quote.Provider,
		AnalyzedAt:  end.Truncate(time.Second),
	}

	closes := indicators.Closes(points)
	sma20, ok20 := indicators.SMA(closes, indicators.SMAShortPeriod)
	if ok20 {
		setup.SMA20 = &sma20
	}
	sma50, ok50 := indicators.SMA(closes, indicators.SMALongPeriod)
	if ok50 {
		setup.SMA50 = &sma50
	}
	if support, resistance, ok := indicators.SupportResistance(points, indicators.PivotLookback); ok {
		setup.Support = &support
		setup.Resistance = &resistance
	}
	if ok20 && ok50 {
		setup.Trend = indicators.TrendOf(quote.LatestPrice, sma20, sma50)
	}

	setup, err = s.writer.Submit(setup)
	if err != nil {
		return model.TradeSetup{}, err
	}

	s.log.Info().
		Str("ticker", key).
		Str("trend", string(setup.Trend)).
		Float64("latestPrice", setup.LatestPrice).
		Msg("analysis complete")

	return setup, nil
}

// GetTradeSetups retrieves persisted analyses, newest first. An empty ticker
// returns setups for all tickers; limit <= 0 returns everything.
func (s *AnalysisService) GetTradeSetups(ticker string, limit int) ([]model.TradeSetup, error) {
	return s.analysisRepo.GetTradeSetups(marketdata.NormalizeTicker(ticker), limit)
}

// GetTradeSetupOnID retrieves a single persisted analysis by its ID.
func (s *AnalysisService) GetTradeSetupOnID(id string) (model.TradeSetup, error) {
	return s.analysisRepo.GetTradeSetupOnID(id)
}

// DeleteTradeSetup removes a persisted analysis by its ID.
func (s *AnalysisService) DeleteTradeSetup(id string) error {
	return s.analysisRepo.DeleteTradeSetup(id)
}
