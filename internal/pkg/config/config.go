package config

import (
	"errors"
	"io"
	"strings"
	"time"
)

// ErrMissingKeys is returned by Require when mandatory values are absent.
var ErrMissingKeys = errors.New("config: missing required keys")

// TimeConfig reads integer values as durations of a given unit.
type TimeConfig interface {
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetHour(key string) time.Duration
	GetDay(key string) time.Duration
}

// NumberConfig reads numeric values. Missing or unparsable values read as zero.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetFloat64(key string) float64
}

// Config is the read-only view of process configuration handed to every
// component at construction.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	GetBool(key string) bool
	GetString(key string) string

	// GetBinary decodes a base64 value.
	GetBinary(key string) []byte

	// GetArray splits a comma separated value, dropping empty elements.
	GetArray(key string) []string

	// GetMap parses k1:v1,k2:v2.
	GetMap(key string) map[string]string

	// IsSet reports whether key has a value from any source.
	IsSet(key string) bool
}

// Require checks that every key holds a non-blank value.
func Require(cfg Config, keys ...string) error {
	var missing []string
	for _, k := range keys {
		if !cfg.IsSet(k) || strings.TrimSpace(cfg.GetString(k)) == "" {
			missing = append(missing, k)
		}
	}

	if len(missing) > 0 {
		return errors.Join(ErrMissingKeys, errors.New(strings.Join(missing, ", ")))
	}

	return nil
}
