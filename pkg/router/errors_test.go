package router

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scrayosnet/passage/pkg/codec"
)

func TestKindStringLabels(t *testing.T) {
	cases := map[Kind]string{
		KindProtocolError:      "protocol-error",
		KindInvalidVerifyToken: "internal-error",
		KindMissedKeepAlive:    "missed-keep-alive",
		KindNoTargetFound:      "no-target-found",
		KindConnectionClosed:   "connection-closed",
		KindInternalError:      "internal-error",
		KindTimeout:            "timeout",
	}
	for kind, label := range cases {
		assert.Equal(t, label, kind.String())
	}
}

func TestErrorUnwrapAndLabel(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(KindProtocolError, cause)
	assert.Equal(t, "protocol-error", err.Label())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}

func TestClassifyPassesThroughExistingError(t *testing.T) {
	orig := Wrap(KindNoTargetFound, errors.New("no target"))
	assert.Same(t, orig, classify(orig))
}

func TestClassifyMapsConnectionClosed(t *testing.T) {
	got := classify(io.EOF)
	assert.Equal(t, KindConnectionClosed, got.Kind)
}

func TestClassifyMapsProtocolErrors(t *testing.T) {
	got := classify(&codec.IllegalPacketIDError{Expected: 0x01, Actual: 0x99})
	assert.Equal(t, KindProtocolError, got.Kind)
}

func TestClassifyDefaultsToInternalError(t *testing.T) {
	got := classify(errors.New("mystery failure"))
	assert.Equal(t, KindInternalError, got.Kind)
}

func TestErrUnexpectedPacketIDIsProtocolError(t *testing.T) {
	err := ErrUnexpectedPacketID(0x42)
	assert.Equal(t, KindProtocolError, err.Kind)
	assert.Contains(t, err.Error(), "0x42")
}
