// Package jwt signs and verifies the compact HS256 credentials handed out by sessionauth.
//
// A credential carries its subject (the normalized email), its kind (Bearer or Refresh), a token
// id and an absolute expiry. Bearer and refresh credentials are signed with independent secrets
// and carry a kind claim, so one is never accepted where the other is expected even when both
// secrets are the same.
//
// Verification failures are classified into three stable sentinels:
//
//   - [ErrMalformed]: wrong segment count, undecodable base64 or JSON.
//   - [ErrInvalidSignature]: well-formed, but signature, algorithm, kind or subject mismatch.
//   - [ErrExpired]: signature valid, current time at or past the embedded expiry.
//
// The signature is checked before the expiry, so a tampered exp claim is reported as
// ErrInvalidSignature rather than ErrExpired.
package jwt
