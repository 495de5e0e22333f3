package account

import (
	"sync"

	"storefront/cmd/security/password"
)

// HashPassword hashes plain with the env-configured Argon2id settings.
func HashPassword(plain string) (string, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		return "", err
	}
	return cfg.Hash(plain)
}

// VerifyPassword checks plain against a stored hash. A malformed hash is an
// error, a mismatch is (false, nil).
func VerifyPassword(plain, encoded string) (bool, error) {
	cfg, err := password.FromEnv()
	if err != nil {
		return false, err
	}
	return cfg.Verify(encoded, plain)
}

// dummyHash is verified against when an email is unknown so that sign-in
// timing does not reveal which accounts exist.
var (
	dummyOnce sync.Once
	dummyHash string
)

// VerifyDummy burns the same work as a real verification.
func VerifyDummy(plain string) {
	dummyOnce.Do(func() {
		if h, err := HashPassword("dummy-password-for-timing-only"); err == nil {
			dummyHash = h
		}
	})
	if dummyHash == "" {
		return
	}
	_, _ = VerifyPassword(plain, dummyHash)
}
