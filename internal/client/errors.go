package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownObject is reported for events addressed to an id the table
	// does not know. Such events are dropped, not fatal.
	ErrUnknownObject = errors.New("unknown object")
	ErrProtocol      = errors.New("compositor reported a protocol error")
	ErrIDExhausted   = errors.New("client object ids exhausted")
	ErrVersion       = errors.New("request not supported by bound version")
	ErrClosed        = errors.New("connection closed")
)

// ProtocolError is a wl_display.error event. The compositor closes the
// connection right after sending it.
type ProtocolError struct {
	ObjectID  uint32
	Interface string
	Code      uint32
	Message   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on %s@%d (code %d): %s", e.Interface, e.ObjectID, e.Code, e.Message)
}

func (e *ProtocolError) Unwrap() error {
	return ErrProtocol
}
