// Package middleware adapts sessionauth gates to net/http.
//
// # Guards
//
//   - [Authenticate] is the soft gate: it attaches a [sessionauth.RequestAuthContext] and
//     always calls the next handler.
//   - [RequireAuthorization] and [RequireIdentity] are hard gates composed after
//     Authenticate; they answer with the rejection instead of calling next.
//   - [RefreshGuard] decodes {"refreshToken": "..."} and attaches a [sessionauth.SessionHandle].
//   - [NoQueryParams] rejects any query string.
//
// Every rejection is written as {"error": true, "message": "..."} with the rejection's status.
//
// # What this package must NOT do
//
//   - Parse or sign tokens itself (the gates own that).
//   - Access stores directly.
//   - Decide response shapes for authenticated requests beyond pass/reject.
package middleware
