package packet

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/scrayosnet/passage/pkg/codec"
)

// ClientInformation is the serverbound packet announcing the client's
// locale, view distance and assorted display preferences.
type ClientInformation struct {
	Locale              string
	ViewDistance        int8
	ChatMode            ChatMode
	ChatColors          bool
	DisplayedSkinParts  uint8
	MainHand            MainHand
	EnableTextFiltering bool
	AllowServerListing  bool
	ParticleStatus      ParticleStatus
}

func (ClientInformation) ID() int32 { return 0x00 }

func (p ClientInformation) Encode(w *codec.Writer) error {
	if err := w.WriteString(p.Locale); err != nil {
		return err
	}
	if err := w.WriteI8(p.ViewDistance); err != nil {
		return err
	}
	if err := w.WriteVarInt(int32(p.ChatMode)); err != nil {
		return err
	}
	if err := w.WriteBool(p.ChatColors); err != nil {
		return err
	}
	if err := w.WriteI8(int8(p.DisplayedSkinParts)); err != nil {
		return err
	}
	if err := w.WriteVarInt(int32(p.MainHand)); err != nil {
		return err
	}
	if err := w.WriteBool(p.EnableTextFiltering); err != nil {
		return err
	}
	if err := w.WriteBool(p.AllowServerListing); err != nil {
		return err
	}
	return w.WriteVarInt(int32(p.ParticleStatus))
}

// DecodeClientInformation reads a ClientInformation packet body, validating
// each VarInt enum against its domain.
func DecodeClientInformation(r *codec.Reader) (ClientInformation, error) {
	var p ClientInformation
	locale, err := r.ReadString()
	if err != nil {
		return p, err
	}
	viewDistance, err := r.ReadI8()
	if err != nil {
		return p, err
	}
	chatMode, err := r.ReadVarInt()
	if err != nil {
		return p, err
	}
	if !chatModeInRange(chatMode) {
		return p, &codec.IllegalEnumValueError{Kind: "chat_mode", Value: chatMode}
	}
	chatColors, err := r.ReadBool()
	if err != nil {
		return p, err
	}
	skinParts, err := r.ReadI8()
	if err != nil {
		return p, err
	}
	mainHand, err := r.ReadVarInt()
	if err != nil {
		return p, err
	}
	if !mainHandInRange(mainHand) {
		return p, &codec.IllegalEnumValueError{Kind: "main_hand", Value: mainHand}
	}
	textFiltering, err := r.ReadBool()
	if err != nil {
		return p, err
	}
	serverListing, err := r.ReadBool()
	if err != nil {
		return p, err
	}
	particleStatus, err := r.ReadVarInt()
	if err != nil {
		return p, err
	}
	if !particleStatusInRange(particleStatus) {
		return p, &codec.IllegalEnumValueError{Kind: "particle_status", Value: particleStatus}
	}
	p.Locale = locale
	p.ViewDistance = viewDistance
	p.ChatMode = ChatMode(chatMode)
	p.ChatColors = chatColors
	p.DisplayedSkinParts = uint8(skinParts)
	p.MainHand = MainHand(mainHand)
	p.EnableTextFiltering = textFiltering
	p.AllowServerListing = serverListing
	p.ParticleStatus = ParticleStatus(particleStatus)
	return p, nil
}

// ConfigurationCookieResponse is the serverbound CookieResponse as sent
// during the Configuration phase (same body, different id to LoginPhase's).
type ConfigurationCookieResponse struct {
	Key     string
	Payload []byte
}

func (ConfigurationCookieResponse) ID() int32 { return 0x01 }

func (p ConfigurationCookieResponse) Encode(w *codec.Writer) error {
	if err := w.WriteString(p.Key); err != nil {
		return err
	}
	if err := w.WriteBool(p.Payload != nil); err != nil {
		return err
	}
	if p.Payload != nil {
		return w.WriteByteArray(p.Payload)
	}
	return nil
}

// DecodeConfigurationCookieResponse reads a Configuration-phase
// CookieResponse packet body.
func DecodeConfigurationCookieResponse(r *codec.Reader) (ConfigurationCookieResponse, error) {
	key, err := r.ReadString()
	if err != nil {
		return ConfigurationCookieResponse{}, err
	}
	present, err := r.ReadBool()
	if err != nil {
		return ConfigurationCookieResponse{}, err
	}
	var payload []byte
	if present {
		payload, err = r.ReadByteArray()
		if err != nil {
			return ConfigurationCookieResponse{}, err
		}
	}
	return ConfigurationCookieResponse{Key: key, Payload: payload}, nil
}

// PluginMessage is an opaque serverbound payload the core ignores.
type PluginMessage struct {
	Channel string
	Data    []byte
}

func (PluginMessage) ID() int32 { return 0x02 }

func (p PluginMessage) Encode(w *codec.Writer) error {
	if err := w.WriteString(p.Channel); err != nil {
		return err
	}
	_, err := w.WriteByteArrayRaw(p.Data)
	return err
}

// DecodePluginMessage reads a PluginMessage packet body from br; the
// channel string is length-prefixed as usual, but the payload that
// follows has no length prefix of its own and simply runs to the end of
// the frame, so the caller must hand us the exact remaining payload
// bytes wrapped in a *bytes.Reader (br.Len() reports the correct count
// once the channel string has been consumed from it).
func DecodePluginMessage(br *bytes.Reader) (PluginMessage, error) {
	r := codec.NewReader(br)
	channel, err := r.ReadString()
	if err != nil {
		return PluginMessage{}, err
	}
	data, err := r.ReadRemaining(br.Len())
	if err != nil {
		return PluginMessage{}, err
	}
	return PluginMessage{Channel: channel, Data: data}, nil
}

// AckFinishConfiguration signals the client is ready to leave Configuration
// (unused by this router, which always transfers or disconnects first).
type AckFinishConfiguration struct{}

func (AckFinishConfiguration) ID() int32                    { return 0x03 }
func (AckFinishConfiguration) Encode(w *codec.Writer) error { return nil }

// DecodeAckFinishConfiguration reads the (empty) packet body.
func DecodeAckFinishConfiguration(r *codec.Reader) (AckFinishConfiguration, error) {
	return AckFinishConfiguration{}, nil
}

// ConfigurationKeepAlive carries a 64-bit id, exchanged in both directions
// during Configuration under the same id.
type ConfigurationKeepAlive struct {
	Value uint64
}

func (ConfigurationKeepAlive) ID() int32 { return 0x04 }

func (p ConfigurationKeepAlive) Encode(w *codec.Writer) error { return w.WriteU64(p.Value) }

// DecodeConfigurationKeepAlive reads a KeepAlive packet body.
func DecodeConfigurationKeepAlive(r *codec.Reader) (ConfigurationKeepAlive, error) {
	id, err := r.ReadU64()
	return ConfigurationKeepAlive{Value: id}, err
}

// ConfigurationPong is the serverbound reply to a configuration Ping.
type ConfigurationPong struct {
	Value int32
}

func (ConfigurationPong) ID() int32 { return 0x05 }

func (p ConfigurationPong) Encode(w *codec.Writer) error { return w.WriteI32(p.Value) }

// DecodeConfigurationPong reads a serverbound Pong packet body.
func DecodeConfigurationPong(r *codec.Reader) (ConfigurationPong, error) {
	id, err := r.ReadI32()
	return ConfigurationPong{Value: id}, err
}

// ResourcePackResponse reports the outcome of a resource pack push; this
// router never pushes one, but must still decode unsolicited ones per the
// protocol.
type ResourcePackResponse struct {
	UUID   uuid.UUID
	Result ResourcePackResult
}

func (ResourcePackResponse) ID() int32 { return 0x06 }

func (p ResourcePackResponse) Encode(w *codec.Writer) error {
	if err := w.WriteUUID(p.UUID); err != nil {
		return err
	}
	return w.WriteVarInt(int32(p.Result))
}

// DecodeResourcePackResponse reads a ResourcePackResponse packet body.
func DecodeResourcePackResponse(r *codec.Reader) (ResourcePackResponse, error) {
	id, err := r.ReadUUID()
	if err != nil {
		return ResourcePackResponse{}, err
	}
	result, err := r.ReadVarInt()
	if err != nil {
		return ResourcePackResponse{}, err
	}
	if !resourcePackResultInRange(result) {
		return ResourcePackResponse{}, &codec.IllegalEnumValueError{Kind: "resource_pack_result", Value: result}
	}
	return ResourcePackResponse{UUID: id, Result: ResourcePackResult(result)}, nil
}

// KnownPacks is an opaque serverbound payload the core ignores.
type KnownPacks struct {
	Data []byte
}

func (KnownPacks) ID() int32 { return 0x07 }

func (p KnownPacks) Encode(w *codec.Writer) error {
	_, err := w.WriteByteArrayRaw(p.Data)
	return err
}

// DecodeKnownPacks reads the remainder of the frame as an opaque payload; br
// must wrap exactly the packet's payload bytes so br.Len() reports the
// correct remaining count (same convention as DecodePluginMessage).
func DecodeKnownPacks(br *bytes.Reader) (KnownPacks, error) {
	r := codec.NewReader(br)
	data, err := r.ReadRemaining(br.Len())
	return KnownPacks{Data: data}, err
}

// ConfigurationDisconnect is the clientbound Configuration-phase
// disconnect, carrying a text-component reason.
type ConfigurationDisconnect struct {
	Reason string
}

func (ConfigurationDisconnect) ID() int32 { return 0x02 }

func (p ConfigurationDisconnect) Encode(w *codec.Writer) error {
	return w.WriteTextComponent(p.Reason)
}

// StoreCookie asks the client to persist a named cookie payload.
type StoreCookie struct {
	Key     string
	Payload []byte
}

func (StoreCookie) ID() int32 { return 0x0A }

func (p StoreCookie) Encode(w *codec.Writer) error {
	if err := w.WriteString(p.Key); err != nil {
		return err
	}
	return w.WriteByteArray(p.Payload)
}

// Transfer instructs the client to reconnect directly to host:port.
type Transfer struct {
	Host string
	Port uint16
}

func (Transfer) ID() int32 { return 0x0B }

func (p Transfer) Encode(w *codec.Writer) error {
	if err := w.WriteString(p.Host); err != nil {
		return err
	}
	return w.WriteVarInt(int32(p.Port))
}

// emptyBody is shared by the handful of clientbound configuration packets
// this router never needs to populate but must still be able to emit as
// placeholders (CookieRequest, PluginMessage, Finish/Reset/Registry/Tags/
// Flags/Links), each encoding as a zero-length body.
type emptyBody struct {
	id int32
}

func (e emptyBody) ID() int32                    { return e.id }
func (e emptyBody) Encode(w *codec.Writer) error { return nil }

// NewEmptyConfigurationPacket returns a placeholder clientbound
// configuration packet with the given id and no body.
func NewEmptyConfigurationPacket(id int32) Packet {
	return emptyBody{id: id}
}
