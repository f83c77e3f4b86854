package model

import "time"

// Session is a logged-in UI session. The token travels as a fernet-encrypted
// value of the session ID; only the ID and expiry are stored.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
