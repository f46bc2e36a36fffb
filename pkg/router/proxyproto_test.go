package router

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadProxyHeaderV1TCP4(t *testing.T) {
	input := "PROXY TCP4 192.168.0.1 192.168.0.11 56324 443\r\nrest-of-stream"
	r := bufio.NewReader(bytes.NewBufferString(input))

	addr, err := readProxyHeader(r)
	require.NoError(t, err)
	tcp, ok := addr.(*net.TCPAddr)
	require.True(t, ok)
	assert.Equal(t, "192.168.0.1", tcp.IP.String())
	assert.Equal(t, 56324, tcp.Port)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, "rest-of-stream", buf.String())
}

func TestReadProxyHeaderV1Malformed(t *testing.T) {
	cases := []string{
		"PROXY UNKNOWN 1.2.3.4 1.2.3.5 111 222\r\n",
		"PROXY TCP4 not-an-ip 1.2.3.5 111 222\r\n",
		"PROXY TCP4 1.2.3.4 1.2.3.5 111\r\n",
	}
	for _, c := range cases {
		r := bufio.NewReader(bytes.NewBufferString(c))
		_, err := readProxyHeader(r)
		assert.ErrorIs(t, err, ErrProxyProtocol)
	}
}

func buildV2Header(t *testing.T, familyProto byte, body []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(proxyV2Signature[:])
	buf.WriteByte(0x21) // version 2, command PROXY
	buf.WriteByte(familyProto)
	length := make([]byte, 2)
	binary.BigEndian.PutUint16(length, uint16(len(body)))
	buf.Write(length)
	buf.Write(body)
	return buf.Bytes()
}

func TestReadProxyHeaderV2IPv4(t *testing.T) {
	body := make([]byte, 12)
	copy(body[0:4], net.ParseIP("10.1.2.3").To4())
	copy(body[4:8], net.ParseIP("10.1.2.4").To4())
	binary.BigEndian.PutUint16(body[8:10], 25565)
	binary.BigEndian.PutUint16(body[10:12], 25566)

	header := buildV2Header(t, 0x11, body)
	r := bufio.NewReader(bytes.NewReader(append(header, []byte("trailing")...)))

	addr, err := readProxyHeader(r)
	require.NoError(t, err)
	tcp, ok := addr.(*net.TCPAddr)
	require.True(t, ok)
	assert.Equal(t, "10.1.2.3", tcp.IP.String())
	assert.Equal(t, 25565, tcp.Port)
}

func TestReadProxyHeaderV2IPv6(t *testing.T) {
	src := net.ParseIP("2001:db8::1")
	dst := net.ParseIP("2001:db8::2")
	body := make([]byte, 36)
	copy(body[0:16], src.To16())
	copy(body[16:32], dst.To16())
	binary.BigEndian.PutUint16(body[32:34], 25565)
	binary.BigEndian.PutUint16(body[34:36], 25566)

	header := buildV2Header(t, 0x21, body)
	r := bufio.NewReader(bytes.NewReader(header))

	addr, err := readProxyHeader(r)
	require.NoError(t, err)
	tcp, ok := addr.(*net.TCPAddr)
	require.True(t, ok)
	assert.True(t, tcp.IP.Equal(src))
	assert.Equal(t, 25565, tcp.Port)
}

func TestReadProxyHeaderV2LocalCommandHasNoAddress(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(proxyV2Signature[:])
	buf.WriteByte(0x20) // version 2, command LOCAL
	buf.WriteByte(0x00)
	buf.Write([]byte{0x00, 0x00})

	r := bufio.NewReader(&buf)
	_, err := readProxyHeader(r)
	assert.ErrorIs(t, err, ErrProxyProtocol)
}

func TestReadProxyHeaderNeitherFormIsMalformed(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString("GET / HTTP/1.1\r\n"))
	_, err := readProxyHeader(r)
	assert.ErrorIs(t, err, ErrProxyProtocol)
}
