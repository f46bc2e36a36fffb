// Package cipher implements the AES-128/CFB-8 stream cipher the Minecraft
// Java Edition protocol uses once a connection's encryption handshake
// completes. The cipher.Stream type the Go standard library ships
// (crypto/cipher.NewCFBEncrypter) operates in full-block feedback, not the
// single-byte feedback Minecraft requires, so CFB-8 is implemented here
// directly.
package cipher

import "crypto/cipher"

// cfb8 is a cipher.Stream implementation of one-byte-feedback CFB mode: a
// fresh keystream byte is derived per plaintext/ciphertext byte by
// re-encrypting the shift register and taking its first byte.
type cfb8 struct {
	block     cipher.Block
	blockSize int
	register  []byte
	decrypt   bool
}

func newCFB8(block cipher.Block, iv []byte, decrypt bool) *cfb8 {
	register := make([]byte, len(iv))
	copy(register, iv)
	return &cfb8{
		block:     block,
		blockSize: block.BlockSize(),
		register:  register,
		decrypt:   decrypt,
	}
}

// XORKeyStream implements cipher.Stream. dst and src may overlap exactly.
func (c *cfb8) XORKeyStream(dst, src []byte) {
	feedback := make([]byte, c.blockSize)
	for i := range src {
		copy(feedback, c.register)
		c.block.Encrypt(c.register, c.register)
		keystreamByte := c.register[0]

		// src and dst may be the same slice, so the input byte must be
		// captured before the output overwrites it: the decrypt register
		// is fed the ciphertext byte, not the recovered plaintext.
		in := src[i]
		out := in ^ keystreamByte
		dst[i] = out

		copy(c.register, feedback[1:])
		if c.decrypt {
			c.register[c.blockSize-1] = in
		} else {
			c.register[c.blockSize-1] = out
		}
	}
}

// NewEncrypter returns a CFB-8 encryption stream keyed and seeded with
// secret (used as both the AES-128 key and the initial shift register).
func NewEncrypter(secret []byte) (cipher.Stream, error) {
	block, err := newAESBlock(secret)
	if err != nil {
		return nil, err
	}
	return newCFB8(block, secret, false), nil
}

// NewDecrypter returns a CFB-8 decryption stream keyed and seeded with
// secret.
func NewDecrypter(secret []byte) (cipher.Stream, error) {
	block, err := newAESBlock(secret)
	if err != nil {
		return nil, err
	}
	return newCFB8(block, secret, true), nil
}
