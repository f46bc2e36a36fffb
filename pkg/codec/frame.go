package codec

import (
	"bufio"
	"bytes"
	"io"
)

// DefaultMaxPacketLength is the fallback ceiling for a frame's advertised
// length when the caller doesn't configure one explicitly.
const DefaultMaxPacketLength = 10000

// ReadFrame reads one length-prefixed Minecraft frame from r: a VarInt
// total length, then that many bytes containing a VarInt packet id followed
// by the packet payload. Frames with a non-positive or over-max length are
// rejected before any payload byte is read.
func ReadFrame(r *bufio.Reader, maxLength int32) (id int32, payload []byte, err error) {
	rd := NewReader(r)
	length, err := rd.ReadVarInt()
	if err != nil {
		return 0, nil, err
	}
	if length <= 0 || length > maxLength {
		return 0, nil, &IllegalPacketLengthError{Length: length, Max: maxLength}
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, err
	}

	inner := bufio.NewReader(bytes.NewReader(buf))
	innerRd := NewReader(inner)
	id, err = innerRd.ReadVarInt()
	if err != nil {
		return 0, nil, err
	}
	rest, err := io.ReadAll(inner)
	if err != nil {
		return 0, nil, err
	}
	return id, rest, nil
}

// WriteFrame encodes id and payload as `<VarInt total-length><VarInt id><payload>`
// and writes the whole frame in a single call.
func WriteFrame(w io.Writer, id int32, payload []byte) error {
	var inner bytes.Buffer
	innerWr := NewWriter(&inner)
	if err := innerWr.WriteVarInt(id); err != nil {
		return err
	}
	if _, err := inner.Write(payload); err != nil {
		return err
	}

	var frame bytes.Buffer
	frameWr := NewWriter(&frame)
	if err := frameWr.WriteVarInt(int32(inner.Len())); err != nil {
		return err
	}
	if _, err := frame.Write(inner.Bytes()); err != nil {
		return err
	}

	_, err := w.Write(frame.Bytes())
	return err
}
