package crypto

import (
	"crypto/sha1" //nolint:gosec // required by Mojang's session-join protocol
	"math/big"
)

// ServerIDHash computes Mojang's "server hash": SHA-1 over serverID,
// sharedSecret and the server's DER-encoded public key, formatted the way
// the vanilla Java client and session service expect it: a signed,
// two's-complement hex string with no leading zeros and a leading '-' for
// negative values.
func ServerIDHash(serverID string, sharedSecret, publicKeyDER []byte) string {
	h := sha1.New() //nolint:gosec
	h.Write([]byte(serverID))
	h.Write(sharedSecret)
	h.Write(publicKeyDER)
	digest := h.Sum(nil)
	return twosComplementHex(digest)
}

// twosComplementHex mirrors Java's new BigInteger(digest).toString(16):
// the digest is interpreted as a two's-complement signed big-endian
// integer, not as raw unsigned bytes.
func twosComplementHex(digest []byte) string {
	n := new(big.Int).SetBytes(digest)
	// Negative if the digest's high bit is set.
	if digest[0]&0x80 != 0 {
		max := new(big.Int).Lsh(big.NewInt(1), uint(len(digest)*8))
		n.Sub(n, max)
	}
	if n.Sign() < 0 {
		return "-" + new(big.Int).Neg(n).Text(16)
	}
	return n.Text(16)
}
