// Package sessionauth issues, verifies, rotates and revokes paired bearer and refresh
// credentials for registered users.
//
// An [Engine] is assembled with [Builder] and exposes two [AuthGate] instances (strict and
// lenient malformed-token messaging), a [RefreshGate] and a [SessionService]. Gates never
// block by themselves: [AuthGate.Authenticate] produces an immutable [RequestAuthContext]
// and routes that must be authenticated call [RequireAuthorization] or [RequireIdentity].
//
// # Sessions
//
// Each identity owns at most one refresh token in the [session.Store]. Login overwrites it,
// refresh compare-and-swaps it, logout clears it. Overwriting is the only revocation
// mechanism: a stolen refresh token stays usable until the legitimate user logs in,
// refreshes or logs out.
//
// # Architecture boundaries
//
// Persistence is behind [UserRepository] and [session.Store]; HTTP wiring lives in the
// middleware package and internal/httpapi. This package does not import net/http handlers.
//
// # What this package must NOT do
//
//   - Put raw tokens or signing secrets into rejection messages, audit events or logs.
//   - Coerce an [AuthResult] to a boolean.
//   - Read the clock more than once per issuance or verification.
package sessionauth
