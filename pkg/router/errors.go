// Package router implements the per-connection protocol state machine
// and the TCP listener that drives it.
package router

import (
	"errors"
	"fmt"

	"github.com/scrayosnet/passage/pkg/codec"
)

// Kind names one of the fatal error kinds the state machine or listener
// can surface. String() is the short label used as the
// request_duration{result} metric dimension.
type Kind int

const (
	KindProtocolError Kind = iota
	KindInvalidVerifyToken
	KindMissedKeepAlive
	KindNoTargetFound
	KindConnectionClosed
	KindInternalError
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindProtocolError:
		return "protocol-error"
	case KindInvalidVerifyToken:
		return "internal-error"
	case KindMissedKeepAlive:
		return "missed-keep-alive"
	case KindNoTargetFound:
		return "no-target-found"
	case KindConnectionClosed:
		return "connection-closed"
	case KindInternalError:
		return "internal-error"
	case KindTimeout:
		return "timeout"
	default:
		return "internal-error"
	}
}

// Error is the typed error every fatal connection fault is wrapped in, so
// the listener can label its request_duration metric without inspecting
// the underlying cause.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind.String(), e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Label returns the short result label used for metrics.
func (e *Error) Label() string { return e.Kind.String() }

// Wrap builds an *Error of the given kind around cause.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// ErrUnexpectedPacketID reports a protocol error for a packet id that is
// valid on the wire but unexpected for the current phase/step.
func ErrUnexpectedPacketID(id int32) *Error {
	return Wrap(KindProtocolError, fmt.Errorf("router: unexpected packet id 0x%02X", id))
}

// classify inspects err and returns the Error kind it should be surfaced
// as, unwrapping codec.ErrConnectionClosed and any *Error already present.
func classify(err error) *Error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return re
	}
	if errors.Is(err, codec.ErrConnectionClosed) {
		return Wrap(KindConnectionClosed, err)
	}
	var illegalLen *codec.IllegalPacketLengthError
	var illegalEnum *codec.IllegalEnumValueError
	var illegalID *codec.IllegalPacketIDError
	var invalidEncoding *codec.InvalidEncodingError
	var arrayConv *codec.ArrayConversionFailedError
	switch {
	case errors.As(err, &illegalLen), errors.As(err, &illegalEnum),
		errors.As(err, &illegalID), errors.As(err, &invalidEncoding),
		errors.As(err, &arrayConv):
		return Wrap(KindProtocolError, err)
	}
	wrapped := codec.WrapIOErr(err)
	if errors.Is(wrapped, codec.ErrConnectionClosed) {
		return Wrap(KindConnectionClosed, wrapped)
	}
	return Wrap(KindInternalError, err)
}
