// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a hash. A mismatch or a malformed
	// hash both yield false.
	Check(password, hash string) bool
}

// SecretGenerator produces the random secrets handed out by the auth flows.
type SecretGenerator interface {
	// NumericCode returns a zero-padded random code of the given number of digits.
	NumericCode(digits int) (string, error)

	// HexToken returns n random bytes hex-encoded.
	HexToken(n int) (string, error)
}
