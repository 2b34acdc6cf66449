package domain

// IngestionResult summarizes one ingestion run. It is never persisted.
type IngestionResult struct {
	Total    int            `json:"total"`
	Inserted int            `json:"inserted"`
	Updated  int            `json:"modified"`
	Sources  map[string]int `json:"sources"`
}
