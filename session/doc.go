// Package session persists the single active refresh token of every identity.
//
// # Model
//
// A session is one slot per identity holding zero or one refresh token. Login overwrites the
// slot, refresh swaps it with compare-and-set, logout clears it. Overwriting is the only
// revocation mechanism: a superseded token stops matching immediately, even before its own
// expiry.
//
// # Implementations
//
//   - [MemoryStore]: mutex-guarded map for tests and single-process deployments.
//   - [RedisStore]: one key per identity; Rotate runs as a single Lua script.
//   - storage/postgres: a nullable column on the users table, rotated with a conditional UPDATE.
//
// # What this package must NOT do
//
//   - Import sessionauth or jwt (no upward imports).
//   - Interpret token contents; values are opaque strings.
package session
