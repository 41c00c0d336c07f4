package wire

import (
	"fmt"
)

// Args holds decoded argument values in signature order. Each element has
// the Go type marshalArg accepts for the same ArgType: int32, uint32, Fixed,
// string, []byte, ObjectID or UntypedNewID. FD arguments are not decoded.
type Args []interface{}

// Int returns argument i as an int32.
func (a Args) Int(i int) int32 {
	v, _ := a[i].(int32)
	return v
}

// Uint returns argument i as a uint32.
func (a Args) Uint(i int) uint32 {
	v, _ := a[i].(uint32)
	return v
}

// Fixed returns argument i as a Fixed.
func (a Args) Fixed(i int) Fixed {
	v, _ := a[i].(Fixed)
	return v
}

// String returns argument i as a string.
func (a Args) String(i int) string {
	v, _ := a[i].(string)
	return v
}

// Array returns argument i as a byte slice.
func (a Args) Array(i int) []byte {
	v, _ := a[i].([]byte)
	return v
}

// Object returns argument i as an object reference.
func (a Args) Object(i int) ObjectID {
	v, _ := a[i].(ObjectID)
	return v
}

// DecodeArgs decodes payload against msg. The payload must hold exactly the
// arguments of msg: short payloads, overruns and trailing bytes are ErrDecode.
func DecodeArgs(msg Message, payload []byte) (Args, error) {
	if len(payload) < msg.MinSize() {
		return nil, fmt.Errorf("%w: %s needs at least %d payload bytes, got %d", ErrDecode, msg.Name, msg.MinSize(), len(payload))
	}

	d := decoder{data: payload}
	args := make(Args, 0, len(msg.Args))
	for _, sig := range msg.Args {
		v, err := d.arg(sig)
		if err != nil {
			return nil, fmt.Errorf("%s argument %s: %w", msg.Name, sig.Name, err)
		}
		args = append(args, v)
	}
	if d.offset != len(d.data) {
		return nil, fmt.Errorf("%w: %s has %d trailing bytes", ErrDecode, msg.Name, len(d.data)-d.offset)
	}
	return args, nil
}

// decoder reads values out of a payload, tracking the read offset
type decoder struct {
	data   []byte
	offset int
}

func (d *decoder) arg(sig Arg) (interface{}, error) {
	switch sig.Type {
	case Int:
		v, err := d.readUint32()
		return int32(v), err
	case Uint:
		return d.readUint32()
	case FixedPoint:
		v, err := d.readUint32()
		return Fixed(int32(v)), err
	case String:
		s, null, err := d.readString()
		if err == nil && null && !sig.Nullable {
			err = fmt.Errorf("%w: null string for non-nullable argument", ErrDecode)
		}
		return s, err
	case Array:
		return d.readArray()
	case Object:
		v, err := d.readUint32()
		if err == nil && v == 0 && !sig.Nullable {
			err = fmt.Errorf("%w: null object for non-nullable argument", ErrDecode)
		}
		return ObjectID(v), err
	case NewID:
		if sig.Interface == "" {
			iface, _, err := d.readString()
			if err != nil {
				return nil, err
			}
			version, err := d.readUint32()
			if err != nil {
				return nil, err
			}
			id, err := d.readUint32()
			return UntypedNewID{Interface: iface, Version: version, ID: ObjectID(id)}, err
		}
		v, err := d.readUint32()
		return ObjectID(v), err
	case FD:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown argument type %d", ErrDecode, sig.Type)
	}
}

func (d *decoder) readUint32() (uint32, error) {
	if d.offset+4 > len(d.data) {
		return 0, fmt.Errorf("%w: payload overrun at offset %d", ErrDecode, d.offset)
	}
	v := order.Uint32(d.data[d.offset:])
	d.offset += 4
	return v, nil
}

// readString reads a length-prefixed, NUL-terminated, padded string. A zero
// length is the null string.
func (d *decoder) readString() (string, bool, error) {
	strlen, err := d.readUint32()
	if err != nil {
		return "", false, err
	}
	if strlen == 0 {
		return "", true, nil
	}
	end := d.offset + int(strlen)
	if int(strlen) > len(d.data) || end+padding(int(strlen)) > len(d.data) {
		return "", false, fmt.Errorf("%w: string of %d bytes overruns payload", ErrDecode, strlen)
	}
	if d.data[end-1] != 0 {
		return "", false, fmt.Errorf("%w: string is not NUL-terminated", ErrDecode)
	}
	// String includes null terminator in length
	s := string(d.data[d.offset : end-1])
	d.offset = end + padding(int(strlen))
	return s, false, nil
}

func (d *decoder) readArray() ([]byte, error) {
	arrlen, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	end := d.offset + int(arrlen)
	if int(arrlen) > len(d.data) || end+padding(int(arrlen)) > len(d.data) {
		return nil, fmt.Errorf("%w: array of %d bytes overruns payload", ErrDecode, arrlen)
	}
	arr := make([]byte, arrlen)
	copy(arr, d.data[d.offset:end])
	d.offset = end + padding(int(arrlen))
	return arr, nil
}

// Uint32s splits a packed array of host-order 32-bit values.
func Uint32s(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: array length %d is not a multiple of 4", ErrDecode, len(b))
	}
	out := make([]uint32, 0, len(b)/4)
	for i := 0; i < len(b); i += 4 {
		out = append(out, order.Uint32(b[i:]))
	}
	return out, nil
}

// PutUint32s packs values into a host-order array argument.
func PutUint32s(values ...uint32) []byte {
	b := make([]byte, 4*len(values))
	for i, v := range values {
		order.PutUint32(b[4*i:], v)
	}
	return b
}
