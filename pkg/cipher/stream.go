package cipher

import (
	"crypto/aes"
	cryptocipher "crypto/cipher"
	"fmt"
	"io"
)

func newAESBlock(secret []byte) (cryptocipher.Block, error) {
	if len(secret) != 16 {
		return nil, fmt.Errorf("cipher: shared secret must be 16 bytes, got %d", len(secret))
	}
	return aes.NewCipher(secret)
}

// Stream is a transparent duplex wrapper around an underlying byte stream.
// While disabled it forwards reads and writes unchanged; Enable switches it
// to AES-128/CFB-8 for the remainder of the connection. It is not safe for
// concurrent use by multiple readers or multiple writers, matching the
// single-reader/single-writer discipline the connection state machine
// already enforces.
type Stream struct {
	r io.Reader
	w io.Writer

	enabled   bool
	encryptor cryptocipher.Stream
	decryptor cryptocipher.Stream
}

// New wraps the r/w halves of an underlying stream as a pass-through cipher
// stream.
func New(r io.Reader, w io.Writer) *Stream {
	return &Stream{r: r, w: w}
}

// Enable is a single-shot operation that enables AES-128/CFB-8 using the
// 16-byte sharedSecret as both key and IV. Calling it twice is a programming
// error; the connection state machine, not this type, is responsible for
// preventing that.
func (s *Stream) Enable(sharedSecret []byte) error {
	enc, err := NewEncrypter(sharedSecret)
	if err != nil {
		return err
	}
	dec, err := NewDecrypter(sharedSecret)
	if err != nil {
		return err
	}
	s.encryptor = enc
	s.decryptor = dec
	s.enabled = true
	return nil
}

// Enabled reports whether Enable has been called successfully.
func (s *Stream) Enabled() bool { return s.enabled }

// Read implements io.Reader, decrypting bytes filled by the underlying
// reader when enabled.
func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if n > 0 && s.enabled {
		s.decryptor.XORKeyStream(p[:n], p[:n])
	}
	return n, err
}

// ReadByte implements io.ByteReader by reading (and, when enabled,
// decrypting) a single byte through Read.
func (s *Stream) ReadByte() (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(s, buf[:])
	return buf[0], err
}

// Write implements io.Writer, encrypting into a fresh buffer before
// forwarding to the underlying writer when enabled.
func (s *Stream) Write(p []byte) (int, error) {
	if !s.enabled {
		return s.w.Write(p)
	}
	out := make([]byte, len(p))
	s.encryptor.XORKeyStream(out, p)
	return s.w.Write(out)
}
