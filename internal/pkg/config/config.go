// Package config exposes typed, read-only access to runtime settings.
package config

import (
	"io"
	"time"
)

// Config is the read side of the application configuration. Missing keys
// yield the zero value, so callers apply their own defaults.
type Config interface {
	io.Closer

	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetFloat64(key string) float64

	// GetSecond reads an integer number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer number of minutes.
	GetMinute(key string) time.Duration

	// GetArray reads a YAML list or a comma separated string. Blank
	// entries are dropped.
	GetArray(key string) []string
}
