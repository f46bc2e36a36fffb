package packet_test

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrayosnet/passage/pkg/codec"
	"github.com/scrayosnet/passage/pkg/protocol/packet"
	"github.com/scrayosnet/passage/pkg/protocol/state"
)

func TestHandshakeRoundTrip(t *testing.T) {
	p := packet.Handshake{
		ProtocolVersion: 765,
		ServerAddress:   "play.example.com",
		ServerPort:      25565,
		NextState:       state.NextTransfer,
	}

	var buf bytes.Buffer
	require.NoError(t, p.Encode(codec.NewWriter(&buf)))

	rd := bufioReader(t, buf.Bytes())
	got, err := packet.DecodeHandshake(codec.NewReader(rd))
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Zero(t, rd.Len())
}

func TestHandshakeRejectsOutOfRangeNextState(t *testing.T) {
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	require.NoError(t, w.WriteVarInt(0))
	require.NoError(t, w.WriteString(""))
	require.NoError(t, w.WriteU16(0))
	require.NoError(t, w.WriteVarInt(99))

	_, err := packet.DecodeHandshake(codec.NewReader(bufioReader(t, buf.Bytes())))
	assert.Error(t, err)
}

func TestLoginStartRoundTrip(t *testing.T) {
	p := packet.LoginStart{Name: "Hydrofin", UUID: uuid.MustParse("09879557-e479-45a9-b434-a56377674627")}

	var buf bytes.Buffer
	require.NoError(t, p.Encode(codec.NewWriter(&buf)))

	got, err := packet.DecodeLoginStart(codec.NewReader(bufioReader(t, buf.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestEncryptionResponseRoundTrip(t *testing.T) {
	p := packet.EncryptionResponse{SharedSecret: []byte("0123456789abcdef"), VerifyToken: bytes.Repeat([]byte{0x42}, 32)}

	var buf bytes.Buffer
	require.NoError(t, p.Encode(codec.NewWriter(&buf)))

	got, err := packet.DecodeEncryptionResponse(codec.NewReader(bufioReader(t, buf.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, p.SharedSecret, got.SharedSecret)
	assert.Equal(t, p.VerifyToken, got.VerifyToken)
}

func TestCookieResponseRoundTripWithAndWithoutPayload(t *testing.T) {
	withPayload := packet.CookieResponse{Key: "passage:session", Payload: []byte(`{"id":"x"}`)}
	var buf bytes.Buffer
	require.NoError(t, withPayload.Encode(codec.NewWriter(&buf)))
	got, err := packet.DecodeCookieResponse(codec.NewReader(bufioReader(t, buf.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, withPayload, got)

	noPayload := packet.CookieResponse{Key: "passage:authentication"}
	buf.Reset()
	require.NoError(t, noPayload.Encode(codec.NewWriter(&buf)))
	got, err = packet.DecodeCookieResponse(codec.NewReader(bufioReader(t, buf.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, noPayload.Key, got.Key)
	assert.Nil(t, got.Payload)
}

func TestClientInformationRoundTrip(t *testing.T) {
	p := packet.ClientInformation{
		Locale:              "de_DE",
		ViewDistance:        10,
		ChatMode:            packet.ChatModeCommandsOnly,
		ChatColors:          true,
		DisplayedSkinParts:  0x7F,
		MainHand:            packet.MainHandLeft,
		EnableTextFiltering: false,
		AllowServerListing:  true,
		ParticleStatus:      packet.ParticleStatusDecreased,
	}

	var buf bytes.Buffer
	require.NoError(t, p.Encode(codec.NewWriter(&buf)))

	got, err := packet.DecodeClientInformation(codec.NewReader(bufioReader(t, buf.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestClientInformationRejectsIllegalEnum(t *testing.T) {
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	require.NoError(t, w.WriteString("en_US"))
	require.NoError(t, w.WriteI8(8))
	require.NoError(t, w.WriteVarInt(99))

	_, err := packet.DecodeClientInformation(codec.NewReader(bufioReader(t, buf.Bytes())))
	assert.Error(t, err)
}

func TestConfigurationKeepAliveRoundTrip(t *testing.T) {
	p := packet.ConfigurationKeepAlive{Value: 123456789}

	var buf bytes.Buffer
	require.NoError(t, p.Encode(codec.NewWriter(&buf)))

	got, err := packet.DecodeConfigurationKeepAlive(codec.NewReader(bufioReader(t, buf.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestTransferEncodesVarIntPort(t *testing.T) {
	p := packet.Transfer{Host: "target.example.com", Port: 25565}

	var buf bytes.Buffer
	require.NoError(t, p.Encode(codec.NewWriter(&buf)))

	r := codec.NewReader(bufioReader(t, buf.Bytes()))
	host, err := r.ReadString()
	require.NoError(t, err)
	port, err := r.ReadVarInt()
	require.NoError(t, err)
	assert.Equal(t, p.Host, host)
	assert.Equal(t, int32(p.Port), port)
}

func TestStoreCookieRoundTrip(t *testing.T) {
	p := packet.StoreCookie{Key: "passage:session", Payload: []byte(`{"id":"x"}`)}

	var buf bytes.Buffer
	require.NoError(t, p.Encode(codec.NewWriter(&buf)))

	r := codec.NewReader(bufioReader(t, buf.Bytes()))
	key, err := r.ReadString()
	require.NoError(t, err)
	payload, err := r.ReadByteArray()
	require.NoError(t, err)
	assert.Equal(t, p.Key, key)
	assert.Equal(t, p.Payload, payload)
}

func TestEmptyConfigurationPacketEncodesNoBody(t *testing.T) {
	p := packet.NewEmptyConfigurationPacket(0x0C)

	var buf bytes.Buffer
	require.NoError(t, p.Encode(codec.NewWriter(&buf)))

	assert.Zero(t, buf.Len())
	assert.Equal(t, int32(0x0C), p.ID())
}

func bufioReader(t *testing.T, b []byte) *bytes.Reader {
	t.Helper()
	return bytes.NewReader(b)
}
