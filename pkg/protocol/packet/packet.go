// Package packet implements the typed packet catalog for the Handshake,
// Status, Login and Configuration phases: one Go type per packet, each
// knowing its own numeric id and how to encode/decode itself through
// pkg/codec.
package packet

import (
	"github.com/scrayosnet/passage/pkg/codec"
)

// Packet is any wire packet this catalog knows how to encode.
type Packet interface {
	// ID returns the packet's numeric identifier within its phase and
	// direction.
	ID() int32
	// Encode writes the packet's body (not the frame) to w.
	Encode(w *codec.Writer) error
}

// ChatMode is the client's chat visibility preference, sent in
// ClientInformation.
type ChatMode int32

const (
	ChatModeEnabled      ChatMode = 0
	ChatModeCommandsOnly ChatMode = 1
	ChatModeHidden       ChatMode = 2
)

func chatModeInRange(v int32) bool { return v >= 0 && v <= 2 }

// MainHand is the client's configured main hand.
type MainHand int32

const (
	MainHandLeft  MainHand = 0
	MainHandRight MainHand = 1
)

func mainHandInRange(v int32) bool { return v >= 0 && v <= 1 }

// ParticleStatus is the client's configured particle density.
type ParticleStatus int32

const (
	ParticleStatusAll       ParticleStatus = 0
	ParticleStatusDecreased ParticleStatus = 1
	ParticleStatusMinimal   ParticleStatus = 2
)

func particleStatusInRange(v int32) bool { return v >= 0 && v <= 2 }

// ResourcePackResult is the client's reported outcome of a resource pack
// push, spanning the eight values the protocol defines.
type ResourcePackResult int32

func resourcePackResultInRange(v int32) bool { return v >= 0 && v <= 7 }
