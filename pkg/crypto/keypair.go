// Package crypto implements the cryptographic primitives the login phase
// needs: the process-global RSA-1024 key pair, the encryption handshake's
// RSA decrypt step, verify-token and keep-alive id generation, HMAC-SHA-256
// cookie signing, and the Minecraft server-id hash Mojang's session service
// expects.
package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"sync"
)

const rsaKeyBits = 1024

// KeyPair is a process-wide RSA key pair, generated once on first use and
// shared read-only across every connection.
type KeyPair struct {
	once       sync.Once
	initErr    error
	private    *rsa.PrivateKey
	public     *rsa.PublicKey
	encodedPub []byte
}

// NewKeyPair returns a KeyPair whose RSA key is generated lazily on first
// access, not at construction time.
func NewKeyPair() *KeyPair {
	return &KeyPair{}
}

func (k *KeyPair) init() {
	k.once.Do(func() {
		priv, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
		if err != nil {
			k.initErr = err
			return
		}
		der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
		if err != nil {
			k.initErr = err
			return
		}
		k.private = priv
		k.public = &priv.PublicKey
		k.encodedPub = der
	})
}

// EncodedPublicKey returns the cached DER (SubjectPublicKeyInfo) encoding of
// the public key, generating the key pair on first call.
func (k *KeyPair) EncodedPublicKey() ([]byte, error) {
	k.init()
	if k.initErr != nil {
		return nil, k.initErr
	}
	return k.encodedPub, nil
}

// Decrypt decrypts an RSA/PKCS#1 v1.5 ciphertext with the private key.
func (k *KeyPair) Decrypt(ciphertext []byte) ([]byte, error) {
	k.init()
	if k.initErr != nil {
		return nil, k.initErr
	}
	return rsa.DecryptPKCS1v15(rand.Reader, k.private, ciphertext)
}

// Encrypt encrypts plaintext with the public key, used by tests that need
// to round-trip the encryption handshake without a real Minecraft client.
func (k *KeyPair) Encrypt(plaintext []byte) ([]byte, error) {
	k.init()
	if k.initErr != nil {
		return nil, k.initErr
	}
	return rsa.EncryptPKCS1v15(rand.Reader, k.public, plaintext)
}
