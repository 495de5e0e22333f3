package password

import (
	"os"
	"testing"
)

var envKeys = []string{
	"STOREFRONT_PASSWORD_MIN_LEN",
	"STOREFRONT_PASSWORD_MAX_LEN",
	"STOREFRONT_PASSWORD_REJECT_VERY_WEAK",
	"STOREFRONT_ARGON2_MEMORY_KIB",
	"STOREFRONT_ARGON2_ITERATIONS",
	"STOREFRONT_ARGON2_PARALLELISM",
	"STOREFRONT_ARGON2_SALT_LEN",
	"STOREFRONT_ARGON2_KEY_LEN",
}

func clearPasswordEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearPasswordEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}

	def := DefaultConfig()
	if cfg != def {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestFromEnv_Override(t *testing.T) {
	clearPasswordEnv(t)
	t.Setenv("STOREFRONT_PASSWORD_MIN_LEN", "14")
	t.Setenv("STOREFRONT_PASSWORD_MAX_LEN", "200")
	t.Setenv("STOREFRONT_PASSWORD_REJECT_VERY_WEAK", "false")
	t.Setenv("STOREFRONT_ARGON2_MEMORY_KIB", "16384")
	t.Setenv("STOREFRONT_ARGON2_ITERATIONS", "2")
	t.Setenv("STOREFRONT_ARGON2_PARALLELISM", "2")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.Policy.MinLength != 14 || cfg.Policy.MaxLength != 200 {
		t.Fatalf("policy mismatch: %+v", cfg.Policy)
	}
	if cfg.Policy.RejectVeryWeak {
		t.Fatalf("reject_very_weak should be false")
	}
	if cfg.Params.MemoryKiB != 16384 || cfg.Params.Iterations != 2 || cfg.Params.Parallelism != 2 {
		t.Fatalf("params mismatch: %+v", cfg.Params)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]string{
		"STOREFRONT_ARGON2_MEMORY_KIB":         "1",
		"STOREFRONT_ARGON2_ITERATIONS":         "abc",
		"STOREFRONT_PASSWORD_REJECT_VERY_WEAK": "maybe",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearPasswordEnv(t)
			t.Setenv(key, val)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %s=%q", key, val)
			}
		})
	}
}

func TestFromEnv_MinAboveMax(t *testing.T) {
	clearPasswordEnv(t)
	t.Setenv("STOREFRONT_PASSWORD_MIN_LEN", "64")
	t.Setenv("STOREFRONT_PASSWORD_MAX_LEN", "32")

	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error for min > max")
	}
}
