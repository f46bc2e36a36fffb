package codec

import (
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/scrayosnet/passage/pkg/varint"
)

// Reader wraps a byte stream with the Minecraft protocol's primitive
// decoders. It owns no buffering of its own; callers typically wrap a
// *bufio.Reader before constructing one.
type Reader struct {
	r io.Reader
}

// NewReader returns a Reader reading from r. r must additionally implement
// io.ByteReader (as *bufio.Reader does) so VarInt/VarLong decoding can read
// one byte at a time without over-reading.
func NewReader(r interface {
	io.Reader
	io.ByteReader
}) *Reader {
	return &Reader{r: r}
}

func (rd *Reader) byteReader() io.ByteReader {
	return rd.r.(io.ByteReader)
}

// ReadVarInt reads a VarInt, at most 5 bytes.
func (rd *Reader) ReadVarInt() (int32, error) {
	return varint.DecodeInt32(rd.byteReader())
}

// ReadVarLong reads a VarLong, at most 10 bytes.
func (rd *Reader) ReadVarLong() (int64, error) {
	return varint.DecodeInt64(rd.byteReader())
}

// ReadString reads a VarInt-length-prefixed UTF-8 string.
func (rd *Reader) ReadString() (string, error) {
	n, err := rd.ReadVarInt()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", &IllegalPacketLengthError{Length: n}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", &InvalidEncodingError{}
	}
	return string(buf), nil
}

// ReadUUID reads 16 big-endian bytes as a UUID.
func (rd *Reader) ReadUUID() (uuid.UUID, error) {
	var buf [16]byte
	if _, err := io.ReadFull(rd.r, buf[:]); err != nil {
		return uuid.Nil, err
	}
	return uuid.FromBytes(buf[:])
}

// ReadBool reads one byte; any nonzero value reads as true.
func (rd *Reader) ReadBool() (bool, error) {
	b, err := rd.byteReader().ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadByteArray reads a VarInt-length-prefixed byte array.
func (rd *Reader) ReadByteArray() ([]byte, error) {
	n, err := rd.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, &IllegalPacketLengthError{Length: n}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadFixedByteArray reads exactly n bytes, failing with
// ArrayConversionFailedError if fewer are available.
func (rd *Reader) ReadFixedByteArray(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(rd.r, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return nil, &ArrayConversionFailedError{Expected: n, Actual: read}
	}
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadU16 reads a big-endian unsigned 16-bit integer.
func (rd *Reader) ReadU16() (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(rd.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// ReadU64 reads a big-endian unsigned 64-bit integer.
func (rd *Reader) ReadU64() (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(rd.r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// ReadI32 reads a big-endian signed 32-bit integer.
func (rd *Reader) ReadI32() (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(rd.r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

// ReadI8 reads a signed byte.
func (rd *Reader) ReadI8() (int8, error) {
	b, err := rd.byteReader().ReadByte()
	if err != nil {
		return 0, err
	}
	return int8(b), nil
}

// ReadTextComponent delegates to the NBT reader.
func (rd *Reader) ReadTextComponent() (string, error) {
	return ReadTextComponent(rd.r)
}

// ReadRemaining reads exactly n raw bytes with no length prefix, for
// packets whose opaque payload runs to the end of the frame.
func (rd *Reader) ReadRemaining(n int) ([]byte, error) {
	if n < 0 {
		return nil, &IllegalPacketLengthError{Length: int32(n)}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
