package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ============================================================
// Test Group 1: ValidateURL
// ============================================================

func TestValidateURL_Valid(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"https feed", "https://blog.example.com/rss.xml"},
		{"http feed", "http://blog.example.com/feed"},
		{"with query", "https://example.org/feed?format=atom"},
		{"with port", "http://localhost:9090/rss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, ValidateURL(tt.url))
		})
	}
}

func TestValidateURL_Invalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"no scheme", "blog.example.com/rss.xml"},
		{"wrong scheme", "ftp://example.org/feed"},
		{"scheme only", "https://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateURL(tt.url))
		})
	}
}

// ============================================================
// Test Group 2: ValidateOneOf
// ============================================================

func TestValidateOneOf(t *testing.T) {
	assert.NoError(t, ValidateOneOf("managed", "managed", "http"))
	assert.NoError(t, ValidateOneOf("http", "managed", "http"))
	assert.Error(t, ValidateOneOf("grpc", "managed", "http"))
	assert.Error(t, ValidateOneOf("", "managed", "http"))
}

// ============================================================
// Test Group 3: ValidateDuration
// ============================================================

func TestValidateDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		min      time.Duration
		max      time.Duration
		wantErr  bool
	}{
		{"within range", 30 * time.Second, time.Second, time.Minute, false},
		{"at minimum", time.Second, time.Second, time.Minute, false},
		{"at maximum", time.Minute, time.Second, time.Minute, false},
		{"below minimum", 500 * time.Millisecond, time.Second, time.Minute, true},
		{"above maximum", 2 * time.Minute, time.Second, time.Minute, true},
		{"inverted range", 30 * time.Second, time.Minute, time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDuration(tt.duration, tt.min, tt.max)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// ============================================================
// Test Group 4: ValidateIntRange
// ============================================================

func TestValidateIntRange(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		min     int
		max     int
		wantErr bool
	}{
		{"within range", 8, 1, 64, false},
		{"at minimum", 1, 1, 64, false},
		{"at maximum", 64, 1, 64, false},
		{"below minimum", 0, 1, 64, true},
		{"above maximum", 100, 1, 64, true},
		{"inverted range", 8, 64, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIntRange(tt.value, tt.min, tt.max)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// ============================================================
// Test Group 5: ValidatePositiveDuration
// ============================================================

func TestValidatePositiveDuration(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration(time.Nanosecond))
	assert.NoError(t, ValidatePositiveDuration(time.Hour))
	assert.Error(t, ValidatePositiveDuration(0))
	assert.Error(t, ValidatePositiveDuration(-time.Second))
}
