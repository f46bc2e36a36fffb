package codec

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// The minimal set of NBT tag ids this codec needs to understand: just
// enough to read a full network-NBT document and re-serialize it as JSON,
// and to write/read the single TAG_String form text components are always
// written as.
const (
	tagEnd       = 0x00
	tagByte      = 0x01
	tagShort     = 0x02
	tagInt       = 0x03
	tagLong      = 0x04
	tagFloat     = 0x05
	tagDouble    = 0x06
	tagByteArray = 0x07
	tagString    = 0x08
	tagList      = 0x09
	tagCompound  = 0x0A
	tagIntArray  = 0x0B
	tagLongArray = 0x0C
)

// WriteTextComponent writes a text component as a single NBT TAG_String:
// the tag byte 0x08 followed by a big-endian u16 length and the raw UTF-8
// bytes (no name, network-NBT style).
func WriteTextComponent(w io.Writer, text string) error {
	if _, err := w.Write([]byte{tagString}); err != nil {
		return err
	}
	return writeNBTString(w, text)
}

func writeNBTString(w io.Writer, s string) error {
	b := []byte(s)
	if len(b) > 0xFFFF {
		return fmt.Errorf("codec: nbt string too long (%d bytes)", len(b))
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(b)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readNBTString(r io.Reader) (string, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint16(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadTextComponent accepts either of the two forms a clientbound text
// component reader must understand: a bare TAG_String (tag byte 0x08 then
// the string), or a full network-NBT value (any tag, read to end of the
// supplied reader, then re-serialized as a JSON string). Any trailing bytes
// after a TAG_String are consumed and ignored.
func ReadTextComponent(r io.Reader) (string, error) {
	var tagBuf [1]byte
	if _, err := io.ReadFull(r, tagBuf[:]); err != nil {
		return "", err
	}
	tag := tagBuf[0]
	if tag == tagString {
		s, err := readNBTString(r)
		if err != nil {
			return "", err
		}
		// Consume (and discard) anything left; the wire contract for this
		// case is the remainder of the packet buffer, already length-bound
		// by the caller.
		_, _ = io.Copy(io.Discard, r)
		return s, nil
	}

	value, err := readNBTValue(r, tag, false)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// readNBTValue decodes the payload of a tag whose id was already consumed.
// withName additionally consumes the tag's name field (compound entries are
// named; network-NBT root values and list elements are not).
func readNBTValue(r io.Reader, tag byte, withName bool) (any, error) {
	if withName && tag != tagEnd {
		if _, err := readNBTString(r); err != nil {
			return nil, err
		}
	}
	switch tag {
	case tagEnd:
		return nil, nil
	case tagByte:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		return int8(b[0]), nil
	case tagShort:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		return int16(binary.BigEndian.Uint16(b[:])), nil
	case tagInt:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		return int32(binary.BigEndian.Uint32(b[:])), nil
	case tagLong:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		return int64(binary.BigEndian.Uint64(b[:])), nil
	case tagFloat:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		return binary.BigEndian.Uint32(b[:]), nil
	case tagDouble:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		return binary.BigEndian.Uint64(b[:]), nil
	case tagByteArray:
		n, err := readI32(r)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	case tagString:
		return readNBTString(r)
	case tagList:
		var elemTagBuf [1]byte
		if _, err := io.ReadFull(r, elemTagBuf[:]); err != nil {
			return nil, err
		}
		n, err := readI32(r)
		if err != nil {
			return nil, err
		}
		list := make([]any, 0, n)
		for i := int32(0); i < n; i++ {
			v, err := readNBTValue(r, elemTagBuf[0], false)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case tagCompound:
		out := map[string]any{}
		for {
			var childTagBuf [1]byte
			if _, err := io.ReadFull(r, childTagBuf[:]); err != nil {
				return nil, err
			}
			if childTagBuf[0] == tagEnd {
				return out, nil
			}
			name, err := readNBTString(r)
			if err != nil {
				return nil, err
			}
			v, err := readNBTValue(r, childTagBuf[0], false)
			if err != nil {
				return nil, err
			}
			out[name] = v
		}
	case tagIntArray:
		n, err := readI32(r)
		if err != nil {
			return nil, err
		}
		out := make([]int32, n)
		for i := range out {
			v, err := readI32(r)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case tagLongArray:
		n, err := readI32(r)
		if err != nil {
			return nil, err
		}
		out := make([]int64, n)
		for i := range out {
			var b [8]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return nil, err
			}
			out[i] = int64(binary.BigEndian.Uint64(b[:]))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("codec: unknown nbt tag 0x%02X", tag)
	}
}

func readI32(r io.Reader) (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}
