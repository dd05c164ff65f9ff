package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// credentialLength is the length of generated tokens and salts.
const credentialLength = 64

// newCredential returns a random credentialLength-character hex string.
// Used for both bearer tokens and password salts, generated
// independently.
func newCredential() (string, error) {
	buf := make([]byte, credentialLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// hashPassword computes base64(SHA-256(password ‖ salt)). The plain
// password is never persisted; only this digest and the salt are.
func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return base64.StdEncoding.EncodeToString(sum[:])
}
