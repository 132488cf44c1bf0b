package entity

import "time"

// IngestionResult records the outcome of one ingest run. It is both the
// pipeline's return value and the atomic unit of the persisted history.
// The counts form a funnel: discovered >= new >= summarized >= ingested;
// the gaps are per-item losses absorbed by the pipeline.
type IngestionResult struct {
	DiscoveredCount int       `json:"discovered_count"`
	NewCount        int       `json:"new_count"`
	SummarizedCount int       `json:"summarized_count"`
	IngestedCount   int       `json:"ingested_count"`
	NewPostIDs      []string  `json:"new_post_ids"`
	Timestamp       time.Time `json:"timestamp"`
}
