package packet

import "github.com/scrayosnet/passage/pkg/codec"

// StatusRequest is the serverbound request for a Server List Ping response.
type StatusRequest struct{}

func (StatusRequest) ID() int32                    { return 0x00 }
func (StatusRequest) Encode(w *codec.Writer) error { return nil }

// DecodeStatusRequest reads the (empty) StatusRequest body.
func DecodeStatusRequest(r *codec.Reader) (StatusRequest, error) { return StatusRequest{}, nil }

// StatusPing carries an opaque payload the server must echo back.
type StatusPing struct {
	Payload uint64
}

func (StatusPing) ID() int32 { return 0x01 }

func (p StatusPing) Encode(w *codec.Writer) error { return w.WriteU64(p.Payload) }

// DecodeStatusPing reads a serverbound Ping packet.
func DecodeStatusPing(r *codec.Reader) (StatusPing, error) {
	v, err := r.ReadU64()
	return StatusPing{Payload: v}, err
}

// StatusResponse carries the JSON-encoded server status document.
type StatusResponse struct {
	Body string
}

func (StatusResponse) ID() int32 { return 0x00 }

func (p StatusResponse) Encode(w *codec.Writer) error { return w.WriteString(p.Body) }

// DecodeStatusResponse reads a clientbound StatusResponse packet, used by
// protocol round-trip tests.
func DecodeStatusResponse(r *codec.Reader) (StatusResponse, error) {
	s, err := r.ReadString()
	return StatusResponse{Body: s}, err
}

// StatusPong echoes a StatusPing's payload back to the client.
type StatusPong struct {
	Payload uint64
}

func (StatusPong) ID() int32 { return 0x01 }

func (p StatusPong) Encode(w *codec.Writer) error { return w.WriteU64(p.Payload) }

// DecodeStatusPong reads a clientbound Pong packet.
func DecodeStatusPong(r *codec.Reader) (StatusPong, error) {
	v, err := r.ReadU64()
	return StatusPong{Payload: v}, err
}
