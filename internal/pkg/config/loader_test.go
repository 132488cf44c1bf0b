package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Test Group 1: LoadEnvString
// ============================================================================

func TestLoadEnvString_WithValue(t *testing.T) {
	t.Setenv("TEST_STRING", "custom_value")

	result := LoadEnvString("TEST_STRING", "default_value")

	assert.Equal(t, "custom_value", result)
}

func TestLoadEnvString_WithoutValue(t *testing.T) {
	// Don't set TEST_STRING

	result := LoadEnvString("TEST_STRING", "default_value")

	assert.Equal(t, "default_value", result)
}

func TestLoadEnvString_EmptyString(t *testing.T) {
	t.Setenv("TEST_STRING", "")

	result := LoadEnvString("TEST_STRING", "default_value")

	// Empty string should use default
	assert.Equal(t, "default_value", result)
}

// ============================================================================
// Test Group 2: LoadEnvWithFallback
// ============================================================================

func TestLoadEnvWithFallback_WithValidValue(t *testing.T) {
	t.Setenv("TEST_BACKEND", "http")

	result := LoadEnvWithFallback("TEST_BACKEND", "managed", func(v string) error {
		return ValidateOneOf(v, "managed", "http")
	})

	assert.Equal(t, "http", result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_WithoutValue(t *testing.T) {
	// Don't set TEST_BACKEND

	result := LoadEnvWithFallback("TEST_BACKEND", "managed", func(v string) error {
		return ValidateOneOf(v, "managed", "http")
	})

	assert.Equal(t, "managed", result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_InvalidValue(t *testing.T) {
	t.Setenv("TEST_BACKEND", "bogus")

	result := LoadEnvWithFallback("TEST_BACKEND", "managed", func(v string) error {
		return ValidateOneOf(v, "managed", "http")
	})

	assert.Equal(t, "managed", result.Value)
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "TEST_BACKEND")
	assert.True(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_NoValidator(t *testing.T) {
	t.Setenv("TEST_STRING", "any_value")

	result := LoadEnvWithFallback("TEST_STRING", "default", nil)

	// Without validator, any value should be accepted
	assert.Equal(t, "any_value", result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

// ============================================================================
// Test Group 3: LoadEnvDuration
// ============================================================================

func TestLoadEnvDuration_WithValidValue(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "45s")

	result := LoadEnvDuration("TEST_TIMEOUT", 10*time.Second, ValidatePositiveDuration)

	assert.Equal(t, 45*time.Second, result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvDuration_WithoutValue(t *testing.T) {
	result := LoadEnvDuration("TEST_TIMEOUT", 10*time.Second, ValidatePositiveDuration)

	assert.Equal(t, 10*time.Second, result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvDuration_ParseError(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "not-a-duration")

	result := LoadEnvDuration("TEST_TIMEOUT", 10*time.Second, ValidatePositiveDuration)

	assert.Equal(t, 10*time.Second, result.Value)
	assert.Len(t, result.Warnings, 1)
	assert.True(t, result.FallbackApplied)
}

func TestLoadEnvDuration_ValidationFailure(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "-5s")

	result := LoadEnvDuration("TEST_TIMEOUT", 10*time.Second, ValidatePositiveDuration)

	assert.Equal(t, 10*time.Second, result.Value)
	assert.Len(t, result.Warnings, 1)
	assert.True(t, result.FallbackApplied)
}

// ============================================================================
// Test Group 4: LoadEnvInt
// ============================================================================

func TestLoadEnvInt_WithValidValue(t *testing.T) {
	t.Setenv("TEST_CONCURRENCY", "16")

	result := LoadEnvInt("TEST_CONCURRENCY", 8, func(v int) error {
		return ValidateIntRange(v, 1, 64)
	})

	assert.Equal(t, 16, result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvInt_WithoutValue(t *testing.T) {
	result := LoadEnvInt("TEST_CONCURRENCY", 8, nil)

	assert.Equal(t, 8, result.Value)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvInt_ParseError(t *testing.T) {
	t.Setenv("TEST_CONCURRENCY", "eight")

	result := LoadEnvInt("TEST_CONCURRENCY", 8, nil)

	assert.Equal(t, 8, result.Value)
	assert.Len(t, result.Warnings, 1)
	assert.True(t, result.FallbackApplied)
}

func TestLoadEnvInt_ValidationFailure(t *testing.T) {
	t.Setenv("TEST_CONCURRENCY", "500")

	result := LoadEnvInt("TEST_CONCURRENCY", 8, func(v int) error {
		return ValidateIntRange(v, 1, 64)
	})

	assert.Equal(t, 8, result.Value)
	assert.Len(t, result.Warnings, 1)
	assert.True(t, result.FallbackApplied)
}

// ============================================================================
// Test Group 5: LoadEnvFloat
// ============================================================================

func TestLoadEnvFloat_WithValidValue(t *testing.T) {
	t.Setenv("TEST_JITTER", "0.35")

	result := LoadEnvFloat("TEST_JITTER", 0.2, nil)

	assert.Equal(t, 0.35, result.Value)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvFloat_ParseError(t *testing.T) {
	t.Setenv("TEST_JITTER", "one-fifth")

	result := LoadEnvFloat("TEST_JITTER", 0.2, nil)

	assert.Equal(t, 0.2, result.Value)
	assert.Len(t, result.Warnings, 1)
	assert.True(t, result.FallbackApplied)
}

func TestLoadEnvFloat_ValidationFailure(t *testing.T) {
	t.Setenv("TEST_JITTER", "1.5")

	result := LoadEnvFloat("TEST_JITTER", 0.2, func(v float64) error {
		if v < 0 || v > 1 {
			return assert.AnError
		}
		return nil
	})

	assert.Equal(t, 0.2, result.Value)
	assert.True(t, result.FallbackApplied)
}

// ============================================================================
// Test Group 6: LoadEnvBool
// ============================================================================

func TestLoadEnvBool_TrueValues(t *testing.T) {
	for _, v := range []string{"1", "t", "T", "true", "TRUE", "True"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("TEST_FLAG", v)

			result := LoadEnvBool("TEST_FLAG", false)

			assert.Equal(t, true, result.Value)
			assert.False(t, result.FallbackApplied)
		})
	}
}

func TestLoadEnvBool_FalseValues(t *testing.T) {
	for _, v := range []string{"0", "f", "F", "false", "FALSE", "False"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("TEST_FLAG", v)

			result := LoadEnvBool("TEST_FLAG", true)

			assert.Equal(t, false, result.Value)
			assert.False(t, result.FallbackApplied)
		})
	}
}

func TestLoadEnvBool_InvalidValue(t *testing.T) {
	t.Setenv("TEST_FLAG", "yes")

	result := LoadEnvBool("TEST_FLAG", true)

	assert.Equal(t, true, result.Value)
	assert.Len(t, result.Warnings, 1)
	assert.True(t, result.FallbackApplied)
}

func TestLoadEnvBool_WithoutValue(t *testing.T) {
	result := LoadEnvBool("TEST_FLAG", true)

	assert.Equal(t, true, result.Value)
	assert.False(t, result.FallbackApplied)
}
