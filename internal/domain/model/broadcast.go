package model

// BroadcastReport tallies one broadcast run. Excluded counts recipients
// whose identifiers failed normalization and were never attempted.
// Skipped counts recipients left unattempted when the run is interrupted.
// Sent + Failed + Excluded + Skipped always equals Total.
type BroadcastReport struct {
	Sent     int `json:"sent"`
	Failed   int `json:"failed"`
	Excluded int `json:"excluded"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}
