package model

import "time"

// WatchlistItem is a ticker the user tracks; the scheduler refreshes quotes
// for every item on the list.
type WatchlistItem struct {
	ID      string    `json:"id"`
	Ticker  string    `json:"ticker"`
	Label   string    `json:"label,omitempty"`
	AddedAt time.Time `json:"addedAt"`
}
