// Package token generates opaque session tokens and derives the digests
// that are stored in place of them.
//
// With STOREFRONT_TOKEN_HMAC_KEY set, digests are HMAC-SHA256(token, key);
// otherwise plain SHA-256 is used, which is only acceptable in development.
// Digests are always 64 lowercase hex characters.
package token
