package codec_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrayosnet/passage/pkg/codec"
	"github.com/scrayosnet/passage/pkg/varint"
)

func TestStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	require.NoError(t, w.WriteString("hello, passage"))

	r := codec.NewReader(bufio.NewReader(&buf))
	got, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "hello, passage", got)
}

func TestStringInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	// length-prefix 2 invalid bytes directly
	require.NoError(t, w.WriteVarInt(2))
	buf.Write([]byte{0xFF, 0xFE})

	r := codec.NewReader(bufio.NewReader(&buf))
	_, err := r.ReadString()
	var invalidErr *codec.InvalidEncodingError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestUUIDRoundTrip(t *testing.T) {
	id := uuid.New()
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	require.NoError(t, w.WriteUUID(id))

	r := codec.NewReader(bufio.NewReader(&buf))
	got, err := r.ReadUUID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestBoolRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	require.NoError(t, w.WriteBool(true))
	require.NoError(t, w.WriteBool(false))

	r := codec.NewReader(bufio.NewReader(&buf))
	a, err := r.ReadBool()
	require.NoError(t, err)
	b, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, a)
	assert.False(t, b)
}

func TestBoolAnyNonzeroIsTrue(t *testing.T) {
	r := codec.NewReader(bufio.NewReader(bytes.NewReader([]byte{0x7F})))
	got, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, got)
}

func TestByteArrayRoundTrip(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	require.NoError(t, w.WriteByteArray(data))

	r := codec.NewReader(bufio.NewReader(&buf))
	got, err := r.ReadByteArray()
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestTextComponentTaggedString(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, codec.WriteTextComponent(&buf, "hello"))

	got, err := codec.ReadTextComponent(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, codec.WriteFrame(&buf, 0x01, []byte{0xAA, 0xBB, 0xCC}))

	wireLen := buf.Len()
	r := bufio.NewReader(&buf)
	id, payload, err := codec.ReadFrame(r, 10000)
	require.NoError(t, err)
	assert.Equal(t, int32(0x01), id)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, payload)

	// on-wire byte length equals size_varint(total_len) + total_len
	innerLen := varint.SizeInt32(0x01) + 3
	assert.Equal(t, varint.SizeInt32(int32(innerLen))+innerLen, wireLen)
}

func TestFrameRejectsZeroLength(t *testing.T) {
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	require.NoError(t, w.WriteVarInt(0))

	_, _, err := codec.ReadFrame(bufio.NewReader(&buf), 10000)
	var lenErr *codec.IllegalPacketLengthError
	assert.ErrorAs(t, err, &lenErr)
}

func TestFrameRejectsOverMax(t *testing.T) {
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	require.NoError(t, w.WriteVarInt(20000))

	_, _, err := codec.ReadFrame(bufio.NewReader(&buf), 10000)
	var lenErr *codec.IllegalPacketLengthError
	assert.ErrorAs(t, err, &lenErr)
}
