package config

import (
	"fmt"
	"net/url"
	"time"
)

// ValidateURL validates that a string is an absolute http or https URL.
//
// Example:
//
//	err := ValidateURL("https://blog.example.com/rss.xml")
//	if err != nil {
//	    logger.Error("invalid feed URL", "error", err)
//	}
func ValidateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("invalid URL: cannot be empty")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL '%s': %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL '%s': scheme must be http or https", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid URL '%s': missing host", raw)
	}

	return nil
}

// ValidateOneOf validates that a value is one of an allowed set.
// Used for enumerated settings such as backend kind or LLM provider.
//
// Example:
//
//	err := ValidateOneOf("managed", "managed", "http")
func ValidateOneOf(value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("value '%s' is not one of %v", value, allowed)
}

// ValidateDuration validates that a duration is within a specified range.
// Both bounds are inclusive.
//
// Example:
//
//	// Validate timeout is between 1s and 5m
//	err := ValidateDuration(30*time.Second, 1*time.Second, 5*time.Minute)
func ValidateDuration(duration, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%v) cannot be greater than max (%v)", min, max)
	}

	if duration < min {
		return fmt.Errorf("duration %v is below minimum %v", duration, min)
	}

	if duration > max {
		return fmt.Errorf("duration %v exceeds maximum %v", duration, max)
	}

	return nil
}

// ValidateIntRange validates that an integer value is within a specified range.
// Both bounds are inclusive.
//
// Example:
//
//	// Validate concurrency is between 1 and 64
//	err := ValidateIntRange(8, 1, 64)
func ValidateIntRange(value, min, max int) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%d) cannot be greater than max (%d)", min, max)
	}

	if value < min {
		return fmt.Errorf("value %d is below minimum %d", value, min)
	}

	if value > max {
		return fmt.Errorf("value %d exceeds maximum %d", value, max)
	}

	return nil
}

// ValidatePositiveDuration validates that a duration is strictly positive.
// This is the common validation for timeouts, delays, and TTLs.
//
// Example:
//
//	err := ValidatePositiveDuration(1 * time.Hour)
func ValidatePositiveDuration(duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", duration)
	}

	return nil
}
