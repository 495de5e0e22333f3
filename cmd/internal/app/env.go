package app

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// The Env helpers fall back to def when a variable is unset, blank or
// malformed. Malformed values are logged as config.env_invalid so a typo
// does not silently run with the default.

func lookupEnv(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func envInvalid(key, raw string, err error) {
	slog.Warn("config.env_invalid", "key", key, "value", raw, "err", err)
}

// EnvString reads a string env var with a default.
func EnvString(key, def string) string {
	if v, ok := lookupEnv(key); ok {
		return v
	}
	return def
}

// EnvBool reads a bool env var with a default.
func EnvBool(key string, def bool) bool {
	v, ok := lookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		envInvalid(key, v, err)
		return def
	}
	return b
}

// EnvInt reads a positive int env var with a default.
func EnvInt(key string, def int) int {
	return int(envInteger(key, int64(def), strconv.IntSize, 1))
}

// EnvInt32 reads a non-negative int32 env var with a default.
func EnvInt32(key string, def int32) int32 {
	return int32(envInteger(key, int64(def), 32, 0))
}

func envInteger(key string, def int64, bits int, floor int64) int64 {
	v, ok := lookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, bits)
	if err == nil && n < floor {
		err = fmt.Errorf("must be >= %d", floor)
	}
	if err != nil {
		envInvalid(key, v, err)
		return def
	}
	return n
}

// EnvDuration reads a positive duration env var with a default.
func EnvDuration(key string, def time.Duration) time.Duration {
	v, ok := lookupEnv(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err == nil && d <= 0 {
		err = fmt.Errorf("must be positive")
	}
	if err != nil {
		envInvalid(key, v, err)
		return def
	}
	return d
}
