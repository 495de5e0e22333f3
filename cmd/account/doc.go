// Package account holds storefront customer accounts: creation, lookup by
// email or ID, and password verification for sign-in.
//
// Account IDs are ULIDs. Emails are compared case-insensitively.
package account
