package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// CalculatePasswordHash returns the hex sha256 digest of password + ":" + salt.
// The digest format is fixed by the stored user table and must not change.
func CalculatePasswordHash(password, salt string) string {
	sum := sha256.Sum256([]byte(password + ":" + salt))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword compares a stored digest against a candidate password in
// constant time.
func VerifyPassword(storedHash, password, salt string) bool {
	candidate := CalculatePasswordHash(password, salt)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(candidate)) == 1
}
