package request

// AnalyzeRequest is the body for creating a trade-setup analysis.
type AnalyzeRequest struct {
	Ticker string `json:"ticker"`
	Notes  string `json:"notes,omitempty"`
}
