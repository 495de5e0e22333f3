// Package password hashes and verifies customer account passwords.
//
// Hashes use Argon2id in the PHC string form
// ($argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt>$<key>). Stored hashes are
// treated as untrusted input on Verify: parameters far above the configured
// cost are refused before any key derivation runs.
package password
