package packet

import (
	"github.com/scrayosnet/passage/pkg/codec"
	"github.com/scrayosnet/passage/pkg/protocol/state"
)

// Handshake is the single serverbound Handshake-phase packet that opens
// every connection.
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       state.NextState
}

func (Handshake) ID() int32 { return 0x00 }

func (p Handshake) Encode(w *codec.Writer) error {
	if err := w.WriteVarInt(p.ProtocolVersion); err != nil {
		return err
	}
	if err := w.WriteString(p.ServerAddress); err != nil {
		return err
	}
	if err := w.WriteU16(p.ServerPort); err != nil {
		return err
	}
	return w.WriteVarInt(int32(p.NextState))
}

// DecodeHandshake reads a Handshake packet body. The server port is always
// a fixed big-endian u16 here; only the clientbound Transfer packet uses a
// VarInt for its port.
func DecodeHandshake(r *codec.Reader) (Handshake, error) {
	var p Handshake
	protocolVersion, err := r.ReadVarInt()
	if err != nil {
		return p, err
	}
	address, err := r.ReadString()
	if err != nil {
		return p, err
	}
	port, err := r.ReadU16()
	if err != nil {
		return p, err
	}
	next, err := r.ReadVarInt()
	if err != nil {
		return p, err
	}
	if next < int32(state.NextStatus) || next > int32(state.NextTransfer) {
		return p, &codec.IllegalEnumValueError{Kind: "next_state", Value: next}
	}
	p.ProtocolVersion = protocolVersion
	p.ServerAddress = address
	p.ServerPort = port
	p.NextState = state.NextState(next)
	return p, nil
}
