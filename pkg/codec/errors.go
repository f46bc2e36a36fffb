package codec

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
)

// IllegalPacketLengthError is returned when a frame's advertised length is
// non-positive or exceeds the configured maximum.
type IllegalPacketLengthError struct {
	Length int32
	Max    int32
}

func (e *IllegalPacketLengthError) Error() string {
	return fmt.Sprintf("codec: illegal packet length %d (max %d)", e.Length, e.Max)
}

// InvalidEncodingError is returned when a string field contains non-UTF-8
// bytes.
type InvalidEncodingError struct{}

func (e *InvalidEncodingError) Error() string { return "codec: invalid utf-8 encoding" }

// IllegalEnumValueError is returned when a VarInt enum field is outside its
// declared domain.
type IllegalEnumValueError struct {
	Kind  string
	Value int32
}

func (e *IllegalEnumValueError) Error() string {
	return fmt.Sprintf("codec: illegal value %d for enum %s", e.Value, e.Kind)
}

// IllegalPacketIDError is returned when a packet id doesn't match what the
// reader expected for the current phase/step.
type IllegalPacketIDError struct {
	Expected int32
	Actual   int32
}

func (e *IllegalPacketIDError) Error() string {
	return fmt.Sprintf("codec: expected packet id 0x%02X, got 0x%02X", e.Expected, e.Actual)
}

// ArrayConversionFailedError is returned when a fixed-size field (such as a
// UUID or a verify token) was read with the wrong length.
type ArrayConversionFailedError struct {
	Expected int
	Actual   int
}

func (e *ArrayConversionFailedError) Error() string {
	return fmt.Sprintf("codec: expected array of length %d, got %d", e.Expected, e.Actual)
}

// ErrConnectionClosed is surfaced in place of the underlying I/O error
// whenever that error's kind denotes a peer that has gone away, so callers
// can downgrade it from a warning to debug logging.
var ErrConnectionClosed = errors.New("codec: connection closed")

// WrapIOErr classifies err and, if it denotes a closed peer, returns
// ErrConnectionClosed wrapping it. Otherwise err is returned unchanged.
func WrapIOErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("%w: %v", ErrConnectionClosed, err)
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.ENOTCONN) || errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ETIMEDOUT) {
		return fmt.Errorf("%w: %v", ErrConnectionClosed, err)
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrConnectionClosed, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "write zero") {
		return fmt.Errorf("%w: %v", ErrConnectionClosed, err)
	}
	return err
}
