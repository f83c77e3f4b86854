package request

// AddWatchlistItemRequest is the body for adding a ticker to the watchlist.
type AddWatchlistItemRequest struct {
	Ticker string `json:"ticker"`
	Label  string `json:"label,omitempty"`
}
