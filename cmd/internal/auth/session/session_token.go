package session

import (
	"crypto/subtle"
	"strings"

	"storefront/cmd/security/token"
)

// maxCredentialLen bounds header-supplied credentials before any work.
const maxCredentialLen = 4096

func newSessionToken(nBytes int) (plain string, hashHex string, err error) {
	plain, err = token.NewOpaque(nBytes)
	if err != nil {
		return "", "", err
	}
	return plain, token.HashSessionTokenHex(plain), nil
}

func hashSessionToken(plain string) string {
	return token.HashSessionTokenHex(plain)
}

// equalHex64 compares two 64-char digests in constant time.
func equalHex64(a, b string) bool {
	if len(a) != 64 || len(b) != 64 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func normalizeLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
