// Package wire implements the Wayland wire format: the 8-byte frame header,
// request encoding against a message signature, and signature-driven
// decoding of event payloads into typed argument values.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
)

// HeaderSize is the size of the object-id + size/opcode header.
const HeaderSize = 8

// MaxMessageSize is the largest frame either side is allowed to send.
const MaxMessageSize = 4096

var (
	// ErrDecode reports a payload that does not match its signature. The
	// frame boundary is still known, so the frame can be dropped.
	ErrDecode = errors.New("protocol decode error")
	// ErrDesync reports a header that makes the frame boundary unknowable.
	ErrDesync = errors.New("wire stream desynchronized")
	// ErrSignature reports request arguments that do not match the signature.
	ErrSignature = errors.New("argument does not match signature")
)

// The wire protocol uses the host byte order.
var order = binary.NativeEndian

// Pre-allocated buffer pool for request encoding
var bufferPool = sync.Pool{
	New: func() interface{} {
		return &bytes.Buffer{}
	},
}

// Fixed represents a signed 24.8 fixed-point number
type Fixed int32

// Float64 converts Fixed to float64
func (f Fixed) Float64() float64 {
	return float64(f) / 256.0
}

// NewFixed creates a Fixed from float64
func NewFixed(v float64) Fixed {
	return Fixed(v * 256.0)
}

// ObjectID is an object reference on the wire. Zero is the null object.
type ObjectID uint32

// UntypedNewID is the value of a new_id argument whose interface is chosen
// by the caller at runtime (wl_registry.bind).
type UntypedNewID struct {
	Interface string
	Version   uint32
	ID        ObjectID
}

// Header is a decoded frame header.
type Header struct {
	ObjectID uint32
	Opcode   uint16
	Size     uint16 // total frame size, header included
}

// PayloadLen returns the number of payload bytes following the header.
func (h Header) PayloadLen() int {
	return int(h.Size) - HeaderSize
}

// DecodeHeader decodes and validates a frame header. A header whose size is
// shorter than the header itself, not 32-bit aligned or larger than
// MaxMessageSize leaves the stream without a recoverable frame boundary.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: short header (%d bytes)", ErrDesync, len(b))
	}
	sizeOpcode := order.Uint32(b[4:8])
	h := Header{
		ObjectID: order.Uint32(b[0:4]),
		Opcode:   uint16(sizeOpcode & 0xffff),
		Size:     uint16(sizeOpcode >> 16),
	}
	if h.Size < HeaderSize || h.Size%4 != 0 || h.Size > MaxMessageSize {
		return h, fmt.Errorf("%w: object %d opcode %d has frame size %d", ErrDesync, h.ObjectID, h.Opcode, h.Size)
	}
	return h, nil
}

// PutHeader writes h into the first HeaderSize bytes of b.
func PutHeader(b []byte, h Header) {
	order.PutUint32(b[0:4], h.ObjectID)
	order.PutUint32(b[4:8], uint32(h.Size)<<16|uint32(h.Opcode))
}

// Encode marshals a request or event frame for objectID/opcode after checking args
// against msg. The returned slice is owned by the caller.
func Encode(objectID uint32, opcode uint16, msg Message, args ...interface{}) ([]byte, error) {
	if len(args) != len(msg.Args) {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrSignature, msg.Name, len(msg.Args), len(args))
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	// Header placeholder
	var header [HeaderSize]byte
	_, _ = buf.Write(header[:])

	for i, arg := range args {
		if err := marshalArg(buf, msg.Args[i], arg); err != nil {
			return nil, fmt.Errorf("%s argument %d (%s): %w", msg.Name, i, msg.Args[i].Name, err)
		}
	}

	if buf.Len() > MaxMessageSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrSignature, msg.Name, buf.Len())
	}

	frame := make([]byte, buf.Len())
	copy(frame, buf.Bytes())
	PutHeader(frame, Header{ObjectID: objectID, Opcode: opcode, Size: uint16(len(frame))})
	return frame, nil
}

// marshalArg marshals a single argument after checking it against sig
func marshalArg(buf *bytes.Buffer, sig Arg, arg interface{}) error {
	switch sig.Type {
	case Int:
		v, ok := arg.(int32)
		if !ok {
			return typeMismatch(sig, arg)
		}
		return binary.Write(buf, order, v)
	case Uint:
		v, ok := arg.(uint32)
		if !ok {
			return typeMismatch(sig, arg)
		}
		return binary.Write(buf, order, v)
	case FixedPoint:
		v, ok := arg.(Fixed)
		if !ok {
			return typeMismatch(sig, arg)
		}
		return binary.Write(buf, order, int32(v))
	case String:
		v, ok := arg.(string)
		if !ok {
			return typeMismatch(sig, arg)
		}
		if v == "" && sig.Nullable {
			return binary.Write(buf, order, uint32(0))
		}
		writeString(buf, v)
	case Array:
		v, ok := arg.([]byte)
		if !ok {
			return typeMismatch(sig, arg)
		}
		writeArray(buf, v)
	case Object:
		v, ok := arg.(ObjectID)
		if !ok {
			return typeMismatch(sig, arg)
		}
		if v == 0 && !sig.Nullable {
			return fmt.Errorf("%w: null object for non-nullable argument", ErrSignature)
		}
		return binary.Write(buf, order, uint32(v))
	case NewID:
		if sig.Interface == "" {
			v, ok := arg.(UntypedNewID)
			if !ok {
				return typeMismatch(sig, arg)
			}
			if v.ID == 0 {
				return fmt.Errorf("%w: new_id must not be null", ErrSignature)
			}
			writeString(buf, v.Interface)
			_ = binary.Write(buf, order, v.Version)
			return binary.Write(buf, order, uint32(v.ID))
		}
		v, ok := arg.(ObjectID)
		if !ok {
			return typeMismatch(sig, arg)
		}
		if v == 0 {
			return fmt.Errorf("%w: new_id must not be null", ErrSignature)
		}
		return binary.Write(buf, order, uint32(v))
	case FD:
		// The shim never passes descriptors to the compositor.
		return fmt.Errorf("%w: fd arguments are not supported", ErrSignature)
	default:
		return fmt.Errorf("%w: unknown argument type %d", ErrSignature, sig.Type)
	}
	return nil
}

func typeMismatch(sig Arg, arg interface{}) error {
	return fmt.Errorf("%w: want %s, got %T", ErrSignature, sig.Type, arg)
}

// writeString writes length (including NUL) + bytes + NUL + padding
func writeString(buf *bytes.Buffer, s string) {
	strlen := len(s) + 1
	_ = binary.Write(buf, order, uint32(strlen))
	_, _ = buf.WriteString(s)
	_ = buf.WriteByte(0)
	pad(buf, strlen)
}

// writeArray writes length + data + padding
func writeArray(buf *bytes.Buffer, b []byte) {
	_ = binary.Write(buf, order, uint32(len(b)))
	_, _ = buf.Write(b)
	pad(buf, len(b))
}

func pad(buf *bytes.Buffer, n int) {
	for i := 0; i < padding(n); i++ {
		_ = buf.WriteByte(0)
	}
}

// padding returns the bytes needed to bring n to a 32-bit boundary
func padding(n int) int {
	return (4 - n%4) % 4
}
