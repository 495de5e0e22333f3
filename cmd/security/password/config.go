package password

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy controls which plaintext passwords are accepted for hashing.
type Policy struct {
	MinLength      int
	MaxLength      int
	RejectVeryWeak bool
}

// Config is the single configuration surface for this package.
type Config struct {
	Params Argon2idParams
	Policy Policy
}

// DefaultConfig returns the baseline used for storefront customer accounts.
func DefaultConfig() Config {
	// Parallelism follows the host but stays within [1..4] so container
	// limits stay predictable.
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024,
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4].
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: Policy{
			MinLength:      10,
			MaxLength:      256,
			RejectVeryWeak: true,
		},
	}
}

type uintSetting struct {
	key      string
	min, max uint32
	apply    func(*Config, uint32) error
}

var uintSettings = []uintSetting{
	{key: "STOREFRONT_ARGON2_MEMORY_KIB", min: 8 * 1024, max: 1024 * 1024, apply: func(c *Config, v uint32) error {
		c.Params.MemoryKiB = v
		return nil
	}},
	{key: "STOREFRONT_ARGON2_ITERATIONS", min: 1, max: 20, apply: func(c *Config, v uint32) error {
		c.Params.Iterations = v
		return nil
	}},
	{key: "STOREFRONT_ARGON2_PARALLELISM", min: 1, max: 64, apply: func(c *Config, v uint32) error {
		p, err := u32ToU8(v)
		if err != nil {
			return err
		}
		c.Params.Parallelism = p
		return nil
	}},
	{key: "STOREFRONT_ARGON2_SALT_LEN", min: 8, max: 64, apply: func(c *Config, v uint32) error {
		c.Params.SaltLength = v
		return nil
	}},
	{key: "STOREFRONT_ARGON2_KEY_LEN", min: 16, max: 64, apply: func(c *Config, v uint32) error {
		c.Params.KeyLength = v
		return nil
	}},
	{key: "STOREFRONT_PASSWORD_MIN_LEN", min: 1, max: 1024, apply: func(c *Config, v uint32) error {
		c.Policy.MinLength = int(v)
		return nil
	}},
	{key: "STOREFRONT_PASSWORD_MAX_LEN", min: 1, max: 4096, apply: func(c *Config, v uint32) error {
		c.Policy.MaxLength = int(v)
		return nil
	}},
}

// FromEnv loads config from environment variables on top of DefaultConfig.
//
// Env surface:
//   - STOREFRONT_PASSWORD_MIN_LEN, STOREFRONT_PASSWORD_MAX_LEN
//   - STOREFRONT_PASSWORD_REJECT_VERY_WEAK (true/false)
//   - STOREFRONT_ARGON2_MEMORY_KIB, STOREFRONT_ARGON2_ITERATIONS,
//     STOREFRONT_ARGON2_PARALLELISM, STOREFRONT_ARGON2_SALT_LEN,
//     STOREFRONT_ARGON2_KEY_LEN
//
// A present but invalid variable is an error; it never silently falls back.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	for _, s := range uintSettings {
		raw, ok := os.LookupEnv(s.key)
		if !ok {
			continue
		}
		v, err := parseBounded(raw, s.min, s.max)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", s.key, err)
		}
		if err := s.apply(&cfg, v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", s.key, err)
		}
	}

	if raw, ok := os.LookupEnv("STOREFRONT_PASSWORD_REJECT_VERY_WEAK"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return Config{}, fmt.Errorf("STOREFRONT_PASSWORD_REJECT_VERY_WEAK: invalid boolean")
		}
		cfg.Policy.RejectVeryWeak = b
	}

	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		return Config{}, fmt.Errorf(
			"password policy invalid: min_len(%d) > max_len(%d)",
			cfg.Policy.MinLength,
			cfg.Policy.MaxLength,
		)
	}

	return cfg, nil
}

func parseBounded(s string, minVal, maxVal uint32) (uint32, error) {
	u64, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}
	u := uint32(u64)
	if u < minVal || u > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return u, nil
}

func u32ToU8(u uint32) (uint8, error) {
	if u > math.MaxUint8 {
		return 0, fmt.Errorf("out of range [0..%d]", math.MaxUint8)
	}
	return uint8(u), nil
}
