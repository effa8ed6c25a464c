// Package password hashes and verifies user passwords for sessionauth's login path.
//
// Two algorithms sit behind the [Hasher] interface:
//
//   - [Argon2]: argon2id, PHC encoded: $argon2id$v=19$m=<KiB>,t=<passes>,p=<lanes>$<salt>$<hash>
//   - [Bcrypt]: golang.org/x/crypto/bcrypt, $2a$/$2b$ encoded.
//
// [Auto] picks the verifier from the stored hash prefix, so a deployment can move from one
// algorithm to the other without invalidating existing accounts.
//
// This package never stores, logs or returns plaintext passwords.
package password
