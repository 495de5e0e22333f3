// Package session issues storefront sessions and resolves the current
// session from inbound request headers.
//
// A session is a server-side row (Postgres, Redis or in-memory) plus two
// credentials that point at it:
//
//   - a short-lived signed access token (PASETO v4.public or EdDSA JWT),
//     presented as "Authorization: Bearer <token>";
//   - an opaque session token held in a cookie; only its digest is stored.
//
// Resolver.Resolve turns a header set into a Result that is either
// Present(Session) or Absent. Missing, expired, tampered or revoked
// credentials are Absent. Failures of the backing store are returned as
// *BackendError so an outage is never mistaken for a signed-out visitor.
package session
