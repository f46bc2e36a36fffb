package packet

import (
	"github.com/google/uuid"

	"github.com/scrayosnet/passage/pkg/codec"
	"github.com/scrayosnet/passage/pkg/profile"
)

// LoginStart is the first serverbound Login-phase packet, carrying the
// client's tentative name and uuid.
type LoginStart struct {
	Name string
	UUID uuid.UUID
}

func (LoginStart) ID() int32 { return 0x00 }

func (p LoginStart) Encode(w *codec.Writer) error {
	if err := w.WriteString(p.Name); err != nil {
		return err
	}
	return w.WriteUUID(p.UUID)
}

// DecodeLoginStart reads a LoginStart packet body.
func DecodeLoginStart(r *codec.Reader) (LoginStart, error) {
	name, err := r.ReadString()
	if err != nil {
		return LoginStart{}, err
	}
	id, err := r.ReadUUID()
	if err != nil {
		return LoginStart{}, err
	}
	return LoginStart{Name: name, UUID: id}, nil
}

// EncryptionResponse carries the client's RSA-encrypted shared secret and
// verify token.
type EncryptionResponse struct {
	SharedSecret []byte
	VerifyToken  []byte
}

func (EncryptionResponse) ID() int32 { return 0x01 }

func (p EncryptionResponse) Encode(w *codec.Writer) error {
	if err := w.WriteByteArray(p.SharedSecret); err != nil {
		return err
	}
	return w.WriteByteArray(p.VerifyToken)
}

// DecodeEncryptionResponse reads an EncryptionResponse packet body.
func DecodeEncryptionResponse(r *codec.Reader) (EncryptionResponse, error) {
	secret, err := r.ReadByteArray()
	if err != nil {
		return EncryptionResponse{}, err
	}
	token, err := r.ReadByteArray()
	if err != nil {
		return EncryptionResponse{}, err
	}
	return EncryptionResponse{SharedSecret: secret, VerifyToken: token}, nil
}

// LoginAcknowledged confirms the client received LoginSuccess and moves to
// the Configuration phase.
type LoginAcknowledged struct{}

func (LoginAcknowledged) ID() int32                    { return 0x03 }
func (LoginAcknowledged) Encode(w *codec.Writer) error { return nil }

// DecodeLoginAcknowledged reads the (empty) LoginAcknowledged body.
func DecodeLoginAcknowledged(r *codec.Reader) (LoginAcknowledged, error) {
	return LoginAcknowledged{}, nil
}

// CookieResponse is the Login-phase (id 0x04) serverbound reply to a
// CookieRequest, carrying an optional payload. The Configuration phase's
// reply is the separate ConfigurationCookieResponse type (id 0x01).
type CookieResponse struct {
	Key     string
	Payload []byte // nil means "not present"
}

func (CookieResponse) ID() int32 { return 0x04 }

func (p CookieResponse) Encode(w *codec.Writer) error {
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

// DecodeCookieResponse reads a CookieResponse packet body.
func DecodeCookieResponse(r *codec.Reader) (CookieResponse, error) {
	key, err := r.ReadString()
	if err != nil {
		return CookieResponse{}, err
	}
	present, err := r.ReadBool()
	if err != nil {
		return CookieResponse{}, err
	}
	var payload []byte
	if present {
		payload, err = r.ReadByteArray()
		if err != nil {
			return CookieResponse{}, err
		}
	}
	return CookieResponse{Key: key, Payload: payload}, nil
}

// LoginDisconnect is the clientbound Login-phase disconnect, carrying a
// JSON-encoded reason.
type LoginDisconnect struct {
	Reason string
}

func (LoginDisconnect) ID() int32 { return 0x00 }

func (p LoginDisconnect) Encode(w *codec.Writer) error { return w.WriteString(p.Reason) }

// EncryptionRequest opens the RSA/AES handshake.
type EncryptionRequest struct {
	ServerID           string
	PublicKey          []byte
	VerifyToken        []byte
	ShouldAuthenticate bool
}

func (EncryptionRequest) ID() int32 { return 0x01 }

func (p EncryptionRequest) Encode(w *codec.Writer) error {
	if err := w.WriteString(p.ServerID); err != nil {
		return err
	}
	if err := w.WriteByteArray(p.PublicKey); err != nil {
		return err
	}
	if err := w.WriteByteArray(p.VerifyToken); err != nil {
		return err
	}
	return w.WriteBool(p.ShouldAuthenticate)
}

// LoginSuccess completes the Login phase with the final resolved identity.
// The properties array is always empty on the wire; profile properties
// travel in the auth cookie instead.
type LoginSuccess struct {
	UUID uuid.UUID
	Name string
}

func (LoginSuccess) ID() int32 { return 0x02 }

func (p LoginSuccess) Encode(w *codec.Writer) error {
	if err := w.WriteUUID(p.UUID); err != nil {
		return err
	}
	if err := w.WriteString(p.Name); err != nil {
		return err
	}
	return w.WriteVarInt(0)
}

// CookieRequest asks the client to return a named, client-resident cookie.
type CookieRequest struct {
	Key string
}

func (CookieRequest) ID() int32 { return 0x05 }

func (p CookieRequest) Encode(w *codec.Writer) error { return w.WriteString(p.Key) }

// NewLoginSuccess is a convenience constructor used by the state machine
// once a profile has been resolved, either from the authentication adapter
// or from an adopted auth cookie.
func NewLoginSuccess(p profile.Profile) LoginSuccess {
	return LoginSuccess{UUID: p.ID, Name: p.Name}
}
