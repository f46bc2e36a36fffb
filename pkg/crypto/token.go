package crypto

import (
	"crypto/rand"
	"crypto/subtle"
)

// VerifyTokenLength is the fixed length of the verify token exchanged
// during the encryption handshake.
const VerifyTokenLength = 32

// GenerateVerifyToken returns a fresh cryptographically random 32-byte
// verify token.
func GenerateVerifyToken() ([]byte, error) {
	token := make([]byte, VerifyTokenLength)
	if _, err := rand.Read(token); err != nil {
		return nil, err
	}
	return token, nil
}

// VerifyTokenMatches reports whether decrypted equals expected,
// byte-for-byte. The comparison need not be constant-time (the token isn't
// a secret once it has been sent to the client), but subtle.ConstantTimeCompare
// keeps the check branch-free regardless.
func VerifyTokenMatches(expected, decrypted []byte) bool {
	if len(expected) != len(decrypted) {
		return false
	}
	return subtle.ConstantTimeCompare(expected, decrypted) == 1
}
