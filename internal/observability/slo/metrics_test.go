package slo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpdateIngestSuccess(t *testing.T) {
	tests := []struct {
		name     string
		new      int
		ingested int
	}{
		{
			name:     "all ingested",
			new:      10,
			ingested: 10,
		},
		{
			name:     "partial",
			new:      10,
			ingested: 8,
		},
		{
			name:     "nothing new",
			new:      0,
			ingested: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateIngestSuccess(tt.new, tt.ingested)
			})
		})
	}
}

func TestMarkRunSuccessful(t *testing.T) {
	assert.NotPanics(t, func() {
		MarkRunSuccessful(time.Now())
	})
}

func TestUpdateAnswerErrorRate(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
	}{
		{
			name:  "no errors",
			ratio: 0,
		},
		{
			name:  "within target",
			ratio: 0.005,
		},
		{
			name:  "above target",
			ratio: 0.05,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateAnswerErrorRate(tt.ratio)
			})
		})
	}
}
