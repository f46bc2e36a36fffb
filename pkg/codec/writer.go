package codec

import (
	"encoding/binary"
	"io"

	"github.com/google/uuid"

	"github.com/scrayosnet/passage/pkg/varint"
)

// Writer wraps a byte stream with the Minecraft protocol's primitive
// encoders.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteVarInt writes the canonical minimal VarInt encoding of v.
func (wr *Writer) WriteVarInt(v int32) error {
	_, err := wr.w.Write(varint.EncodeInt32(v))
	return err
}

// WriteVarLong writes the canonical minimal VarLong encoding of v.
func (wr *Writer) WriteVarLong(v int64) error {
	_, err := wr.w.Write(varint.EncodeInt64(v))
	return err
}

// WriteString writes a VarInt-length-prefixed UTF-8 string.
func (wr *Writer) WriteString(s string) error {
	if err := wr.WriteVarInt(int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(wr.w, s)
	return err
}

// WriteUUID writes 16 big-endian bytes.
func (wr *Writer) WriteUUID(id uuid.UUID) error {
	b := id
	_, err := wr.w.Write(b[:])
	return err
}

// WriteBool writes 0 or 1.
func (wr *Writer) WriteBool(b bool) error {
	var v byte
	if b {
		v = 1
	}
	_, err := wr.w.Write([]byte{v})
	return err
}

// WriteByteArray writes a VarInt-length-prefixed byte array.
func (wr *Writer) WriteByteArray(b []byte) error {
	if err := wr.WriteVarInt(int32(len(b))); err != nil {
		return err
	}
	_, err := wr.w.Write(b)
	return err
}

// WriteU16 writes a big-endian unsigned 16-bit integer.
func (wr *Writer) WriteU16(v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := wr.w.Write(buf[:])
	return err
}

// WriteU64 writes a big-endian unsigned 64-bit integer.
func (wr *Writer) WriteU64(v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := wr.w.Write(buf[:])
	return err
}

// WriteI32 writes a big-endian signed 32-bit integer.
func (wr *Writer) WriteI32(v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := wr.w.Write(buf[:])
	return err
}

// WriteI8 writes a signed byte.
func (wr *Writer) WriteI8(v int8) error {
	_, err := wr.w.Write([]byte{byte(v)})
	return err
}

// WriteTextComponent writes text as a single NBT TAG_String.
func (wr *Writer) WriteTextComponent(text string) error {
	return WriteTextComponent(wr.w, text)
}

// WriteByteArrayRaw writes b with no length prefix, for packets (plugin
// messages, known packs) whose opaque payload simply runs to the end of
// the frame.
func (wr *Writer) WriteByteArrayRaw(b []byte) (int, error) {
	return wr.w.Write(b)
}
