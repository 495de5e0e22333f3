package token

import "errors"

// ErrHMACKeyMissing and ErrHMACKeyTooShort describe STOREFRONT_TOKEN_HMAC_KEY.
var (
	ErrHMACKeyMissing  = errors.New("token HMAC key missing")
	ErrHMACKeyTooShort = errors.New("token HMAC key too short")
)

// ErrTokenLength is returned by NewOpaque for an entropy size outside 16..64 bytes.
var ErrTokenLength = errors.New("token length out of range")
