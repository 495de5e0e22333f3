package session

import (
	"testing"
	"time"

	paseto "aidanwoods.dev/go-paseto"
)

func TestLoadConfigFromEnv_MissingSigningKey(t *testing.T) {
	t.Setenv("STOREFRONT_SIGNING_KEY_HEX", "")
	t.Setenv("STOREFRONT_AUTH_EPHEMERAL_KEY", "")
	_, err := LoadConfigFromEnv()
	if err != ErrConfig {
		t.Fatalf("expected ErrConfig on missing key, got %v", err)
	}
}

func TestLoadConfigFromEnv_EphemeralKey(t *testing.T) {
	t.Setenv("STOREFRONT_SIGNING_KEY_HEX", "")
	t.Setenv("STOREFRONT_AUTH_EPHEMERAL_KEY", "true")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.SigningKeyHex) != 128 {
		t.Fatalf("expected generated 64-byte key, got %d hex chars", len(cfg.SigningKeyHex))
	}
}

func TestLoadConfigFromEnv_InvalidDurations(t *testing.T) {
	t.Setenv("STOREFRONT_SIGNING_KEY_HEX", paseto.NewV4AsymmetricSecretKey().ExportHex())
	t.Setenv("STOREFRONT_AUTH_ACCESS_TTL", "-5m")
	_, err := LoadConfigFromEnv()
	if err != ErrConfig {
		t.Fatalf("expected ErrConfig for negative duration, got %v", err)
	}
}

func TestLoadConfigFromEnv_InvalidSessionTokenBytes(t *testing.T) {
	t.Setenv("STOREFRONT_SIGNING_KEY_HEX", paseto.NewV4AsymmetricSecretKey().ExportHex())
	t.Setenv("STOREFRONT_AUTH_SESSION_TOKEN_BYTES", "16")
	_, err := LoadConfigFromEnv()
	if err != ErrConfig {
		t.Fatalf("expected ErrConfig for small token bytes, got %v", err)
	}
}

func TestLoadConfigFromEnv_InvalidNativeTTLOrder(t *testing.T) {
	t.Setenv("STOREFRONT_SIGNING_KEY_HEX", paseto.NewV4AsymmetricSecretKey().ExportHex())
	t.Setenv("STOREFRONT_AUTH_SESSION_TTL_WEB", "72h")
	t.Setenv("STOREFRONT_AUTH_SESSION_TTL_NATIVE", "24h")
	_, err := LoadConfigFromEnv()
	if err != ErrConfig {
		t.Fatalf("expected ErrConfig for native ttl order, got %v", err)
	}
}

func TestLoadConfigFromEnv_RejectsUnknownFormatAndBadCookie(t *testing.T) {
	t.Setenv("STOREFRONT_SIGNING_KEY_HEX", paseto.NewV4AsymmetricSecretKey().ExportHex())

	t.Setenv("STOREFRONT_AUTH_TOKEN_FORMAT", "saml")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for unknown format, got %v", err)
	}

	t.Setenv("STOREFRONT_AUTH_TOKEN_FORMAT", "")
	t.Setenv("STOREFRONT_SESSION_COOKIE_NAME", "bad name")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for bad cookie name, got %v", err)
	}
}

func TestLoadConfigFromEnv_Valid(t *testing.T) {
	t.Setenv("STOREFRONT_SIGNING_KEY_HEX", paseto.NewV4AsymmetricSecretKey().ExportHex())
	t.Setenv("STOREFRONT_AUTH_ISSUER", "storefront-test")
	t.Setenv("STOREFRONT_AUTH_TOKEN_FORMAT", "JWT")
	t.Setenv("STOREFRONT_AUTH_ACCESS_TTL", "10m")
	t.Setenv("STOREFRONT_AUTH_SESSION_TTL_WEB", "48h")
	t.Setenv("STOREFRONT_AUTH_SESSION_TTL_NATIVE", "720h")
	t.Setenv("STOREFRONT_AUTH_CLOCK_SKEW", "20s")
	t.Setenv("STOREFRONT_AUTH_SESSION_TOKEN_BYTES", "48")
	t.Setenv("STOREFRONT_SESSION_COOKIE_NAME", "sf_sid")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Issuer != "storefront-test" {
		t.Fatalf("issuer mismatch: %q", cfg.Issuer)
	}
	if cfg.TokenFormat != FormatJWT {
		t.Fatalf("format mismatch: %q", cfg.TokenFormat)
	}
	if cfg.AccessTokenTTL != 10*time.Minute {
		t.Fatalf("access ttl mismatch: %v", cfg.AccessTokenTTL)
	}
	if cfg.SessionTTLWeb != 48*time.Hour {
		t.Fatalf("web ttl mismatch: %v", cfg.SessionTTLWeb)
	}
	if cfg.SessionTTLNative != 720*time.Hour {
		t.Fatalf("native ttl mismatch: %v", cfg.SessionTTLNative)
	}
	if cfg.ClockSkew != 20*time.Second {
		t.Fatalf("clock skew mismatch: %v", cfg.ClockSkew)
	}
	if cfg.SessionTokenBytes != 48 {
		t.Fatalf("token bytes mismatch: %d", cfg.SessionTokenBytes)
	}
	if cfg.CookieName != "sf_sid" {
		t.Fatalf("cookie name mismatch: %q", cfg.CookieName)
	}
}
