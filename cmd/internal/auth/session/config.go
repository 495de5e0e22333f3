package session

import (
	"os"
	"strconv"
	"strings"
	"time"

	paseto "aidanwoods.dev/go-paseto"
)

// TokenFormat selects the access token encoding.
type TokenFormat string

const (
	// FormatPaseto issues PASETO v4.public tokens.
	FormatPaseto TokenFormat = "paseto"
	// FormatJWT issues EdDSA-signed JWTs.
	FormatJWT TokenFormat = "jwt"
)

// Config defines the runtime configuration of the session subsystem.
type Config struct {
	// Issuer is the "iss" claim of access tokens.
	Issuer string

	TokenFormat TokenFormat

	// AccessTokenTTL is the lifetime of bearer access tokens.
	AccessTokenTTL time.Duration

	// SessionTTLWeb applies to browser sessions and to native sessions
	// without remember-me; SessionTTLNative to remembered native sessions.
	SessionTTLWeb    time.Duration
	SessionTTLNative time.Duration

	// ClockSkew is tolerated when validating token time claims.
	ClockSkew time.Duration

	// SessionTokenBytes is the entropy of opaque cookie tokens.
	SessionTokenBytes int

	// SigningKeyHex is a hex-encoded 64-byte Ed25519 private key. The same
	// key signs PASETO v4.public and EdDSA JWT tokens.
	SigningKeyHex string

	// CookieName is the cookie carrying the opaque session token.
	CookieName string
}

// DefaultConfig returns defaults suitable for development. SigningKeyHex
// is left empty.
func DefaultConfig() Config {
	return Config{
		Issuer:            "storefront",
		TokenFormat:       FormatPaseto,
		AccessTokenTTL:    15 * time.Minute,
		SessionTTLWeb:     7 * 24 * time.Hour,
		SessionTTLNative:  60 * 24 * time.Hour,
		ClockSkew:         30 * time.Second,
		SessionTokenBytes: 32,
		CookieName:        "storefront_session",
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required unless STOREFRONT_AUTH_EPHEMERAL_KEY=true:
//   - STOREFRONT_SIGNING_KEY_HEX
//
// Optional:
//   - STOREFRONT_AUTH_ISSUER
//   - STOREFRONT_AUTH_TOKEN_FORMAT (paseto|jwt)
//   - STOREFRONT_AUTH_ACCESS_TTL, STOREFRONT_AUTH_SESSION_TTL_WEB,
//     STOREFRONT_AUTH_SESSION_TTL_NATIVE, STOREFRONT_AUTH_CLOCK_SKEW
//   - STOREFRONT_AUTH_SESSION_TOKEN_BYTES (32..64)
//   - STOREFRONT_SESSION_COOKIE_NAME
//
// Any invalid value yields ErrConfig.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := envTrim("STOREFRONT_AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := envTrim("STOREFRONT_AUTH_TOKEN_FORMAT"); v != "" {
		switch TokenFormat(strings.ToLower(v)) {
		case FormatPaseto:
			cfg.TokenFormat = FormatPaseto
		case FormatJWT:
			cfg.TokenFormat = FormatJWT
		default:
			return Config{}, ErrConfig
		}
	}

	durations := []struct {
		key       string
		dst       *time.Duration
		allowZero bool
	}{
		{key: "STOREFRONT_AUTH_ACCESS_TTL", dst: &cfg.AccessTokenTTL},
		{key: "STOREFRONT_AUTH_SESSION_TTL_WEB", dst: &cfg.SessionTTLWeb},
		{key: "STOREFRONT_AUTH_SESSION_TTL_NATIVE", dst: &cfg.SessionTTLNative},
		{key: "STOREFRONT_AUTH_CLOCK_SKEW", dst: &cfg.ClockSkew, allowZero: true},
	}
	for _, d := range durations {
		v := envTrim(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed < 0 || (parsed == 0 && !d.allowZero) {
			return Config{}, ErrConfig
		}
		*d.dst = parsed
	}

	if v := envTrim("STOREFRONT_AUTH_SESSION_TOKEN_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 32 || n > 64 {
			return Config{}, ErrConfig
		}
		cfg.SessionTokenBytes = n
	}

	if v := envTrim("STOREFRONT_SESSION_COOKIE_NAME"); v != "" {
		if strings.ContainsAny(v, " ;,=\t") {
			return Config{}, ErrConfig
		}
		cfg.CookieName = v
	}

	cfg.SigningKeyHex = envTrim("STOREFRONT_SIGNING_KEY_HEX")
	if cfg.SigningKeyHex == "" {
		ephemeral, _ := strconv.ParseBool(envTrim("STOREFRONT_AUTH_EPHEMERAL_KEY"))
		if !ephemeral {
			return Config{}, ErrConfig
		}
		cfg.SigningKeyHex = paseto.NewV4AsymmetricSecretKey().ExportHex()
	}

	if cfg.SessionTTLNative < cfg.SessionTTLWeb {
		return Config{}, ErrConfig
	}

	return cfg, nil
}

func envTrim(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
