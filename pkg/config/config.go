// Package config reads process settings from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup returns the trimmed value of key. Unset and blank variables are
// both reported as absent.
func lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// GetString retrieves an environment variable or returns a fallback when unset.
func GetString(key, fallback string) string {
	if value, ok := lookup(key); ok {
		return value
	}
	return fallback
}

// GetInt retrieves an environment variable as integer or returns fallback.
func GetInt(key string, fallback int) int {
	value, ok := lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment", "key", key, "error", err)
		return fallback
	}
	return parsed
}

// GetBool retrieves an environment variable as bool or returns fallback.
func GetBool(key string, fallback bool) bool {
	value, ok := lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("invalid boolean in environment", "key", key, "error", err)
		return fallback
	}
	return parsed
}

// GetDuration reads key as a count of unit ("15") or as a Go duration
// ("1m30s"). Negative and malformed values yield fallback.
func GetDuration(key string, unit, fallback time.Duration) time.Duration {
	value, ok := lookup(key)
	if !ok {
		return fallback
	}
	if n, err := strconv.Atoi(value); err == nil {
		if n < 0 {
			slog.Warn("negative duration in environment", "key", key, "value", n)
			return fallback
		}
		return time.Duration(n) * unit
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		slog.Warn("invalid duration in environment", "key", key, "value", value)
		return fallback
	}
	return parsed
}
