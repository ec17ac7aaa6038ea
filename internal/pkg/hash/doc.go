// Package hash provides keyed digests for secrets that must never be stored
// in plain form, such as one-time codes and transaction fingerprints.
//
// Callers keep only the digest and later verify user input against it with a
// constant-time comparison.
package hash

// Hash computes and verifies digests.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}
