// Package auth covers credential material and bearer tokens: bcrypt
// password hashing tagged with its algorithm, and JWT issue/verify for
// the request layer.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// AlgorithmBcrypt is the hash-algorithm tag stored next to every
// password hash, so the scheme can be rotated later without guessing.
const AlgorithmBcrypt = "bcrypt"

// HashPassword hashes a plaintext password and returns the hash
// together with its algorithm tag.
func HashPassword(plain string) (hash, algorithm string, err error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), AlgorithmBcrypt, nil
}

// VerifyPassword checks a plaintext password against a stored hash.
// Unknown algorithm tags never verify.
func VerifyPassword(hash, algorithm, plain string) bool {
	if algorithm != AlgorithmBcrypt {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
