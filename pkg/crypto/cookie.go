package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
)

// CookieSignatureLength is the length of the HMAC-SHA-256 prefix prepended
// to a signed cookie.
const CookieSignatureLength = sha256.Size

// Sign returns message prefixed with an HMAC-SHA-256 tag over message,
// keyed with secret: sign(m, k) = HMAC(m) || m.
func Sign(message, secret []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(message)
	tag := mac.Sum(nil)
	signed := make([]byte, 0, len(tag)+len(message))
	signed = append(signed, tag...)
	signed = append(signed, message...)
	return signed
}

// Verify splits signed into its HMAC-SHA-256 tag and message, and reports
// whether the tag matches message under secret. It fails closed: any
// signed shorter than CookieSignatureLength is rejected without comparison.
func Verify(signed, secret []byte) (bool, []byte) {
	if len(signed) < CookieSignatureLength {
		return false, nil
	}
	tag, message := signed[:CookieSignatureLength], signed[CookieSignatureLength:]
	mac := hmac.New(sha256.New, secret)
	mac.Write(message)
	expected := mac.Sum(nil)
	if !hmac.Equal(tag, expected) {
		return false, nil
	}
	return true, message
}
