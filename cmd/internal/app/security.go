package app

import (
	"errors"
	"fmt"

	"storefront/cmd/security/token"
)

// ValidateSecurityConfig enforces the session token digest policy at
// startup. Session rows store HashSessionTokenHex of the cookie token, so a
// deployment requiring HMAC must not start in plain SHA-256 mode.
func ValidateSecurityConfig(cfg Config) error {
	if !cfg.RequireTokenHMAC {
		return nil
	}

	_, err := token.HMACKeyFromEnv(token.MinHMACKeyBytes)
	switch {
	case err == nil:
	case errors.Is(err, token.ErrHMACKeyMissing):
		return fmt.Errorf("%w: STOREFRONT_REQUIRE_TOKEN_HMAC=true but %s is missing", ErrConfig, token.HMACEnvKey)
	case errors.Is(err, token.ErrHMACKeyTooShort):
		return fmt.Errorf("%w: %s is too short (min %d bytes)", ErrConfig, token.HMACEnvKey, token.MinHMACKeyBytes)
	default:
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}

	if !token.HMACEnabled() {
		return fmt.Errorf("%w: session token digests are not in HMAC mode", ErrConfig)
	}
	return nil
}
