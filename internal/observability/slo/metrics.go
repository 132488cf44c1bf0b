package slo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets define the service level objectives for the pipeline.
// These targets are used to measure and monitor pipeline reliability.
const (
	// IngestSuccessSLO defines the target ratio of new posts that end up
	// in the retrieval corpus per run (99% = at most 1 in 100 absorbed)
	IngestSuccessSLO = 0.99

	// FreshnessSLO defines the maximum acceptable age of the last
	// successful pipeline run (6 hours)
	FreshnessSLO = 6 * time.Hour

	// AnswerErrorRateSLO defines the maximum acceptable answer error rate
	// as a ratio (1% = 0.01)
	AnswerErrorRateSLO = 0.01
)

// SLO tracking metrics
// These gauges are updated after each pipeline run or periodically to track
// whether the service is meeting its SLO targets.
var (
	// SLOIngestSuccess tracks the ratio of new posts successfully ingested
	// in the most recent run, calculated as: ingested / new
	SLOIngestSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_ingest_success_ratio",
			Help: "Ratio of new posts ingested in the last run (0-1), target: 0.99",
		},
	)

	// SLOLastRunTimestamp tracks the unix time of the last successful run
	SLOLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_last_successful_run_timestamp_seconds",
			Help: "Unix timestamp of the last successful pipeline run",
		},
	)

	// SLOAnswerErrorRate tracks the current answer error rate ratio (0-1)
	// calculated as: error_answers / total_answers
	SLOAnswerErrorRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_answer_error_rate_ratio",
			Help: "Current answer error rate ratio (0-1), target: 0.01",
		},
	)
)

// UpdateIngestSuccess updates the ingest success SLO metric.
// Call this after each pipeline run with the counts from the run result.
// A run with no new posts counts as fully successful.
func UpdateIngestSuccess(newCount, ingestedCount int) {
	if newCount <= 0 {
		SLOIngestSuccess.Set(1)
		return
	}
	SLOIngestSuccess.Set(float64(ingestedCount) / float64(newCount))
}

// MarkRunSuccessful records the completion time of a successful run.
func MarkRunSuccessful(at time.Time) {
	SLOLastRunTimestamp.Set(float64(at.Unix()))
}

// UpdateAnswerErrorRate updates the answer error rate SLO metric.
// Call this periodically with the calculated error rate ratio.
func UpdateAnswerErrorRate(ratio float64) {
	SLOAnswerErrorRate.Set(ratio)
}
