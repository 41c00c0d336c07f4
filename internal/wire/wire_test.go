package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Unit tests that don't require a compositor

func TestFixed(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{1.0, 1.0},
		{0.5, 0.5},
		{123.456, 123.456},
		{-1.5, -1.5},
		{0.0, 0.0},
		{256.0, 256.0},
	}

	for _, test := range tests {
		result := NewFixed(test.input).Float64()
		assert.InDelta(t, test.expected, result, 0.01, "input=%f", test.input)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		h    Header
	}{
		{"minimal", Header{ObjectID: 1, Opcode: 0, Size: 8}},
		{"with payload", Header{ObjectID: 5, Opcode: 2, Size: 12}},
		{"large values", Header{ObjectID: 0xff000000, Opcode: 255, Size: MaxMessageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b [HeaderSize]byte
			PutHeader(b[:], tt.h)
			got, err := DecodeHeader(b[:])
			require.NoError(t, err)
			assert.Equal(t, tt.h, got)
			assert.Equal(t, int(tt.h.Size)-HeaderSize, got.PayloadLen())
		})
	}
}

func TestDecodeHeaderDesync(t *testing.T) {
	tests := []struct {
		name string
		size uint16
	}{
		{"smaller than header", 4},
		{"unaligned", 13},
		{"too large", MaxMessageSize + 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b [HeaderSize]byte
			PutHeader(b[:], Header{ObjectID: 3, Opcode: 1, Size: tt.size})
			_, err := DecodeHeader(b[:])
			assert.ErrorIs(t, err, ErrDesync)
		})
	}

	_, err := DecodeHeader([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrDesync)
}

func TestMarshalArgs(t *testing.T) {
	tests := []struct {
		name string
		sig  Arg
		arg  interface{}
		want []byte
	}{
		{"uint32", Arg{Type: Uint}, uint32(0x12345678), PutUint32s(0x12345678)},
		{"int32", Arg{Type: Int}, int32(-1), []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"fixed", Arg{Type: FixedPoint}, NewFixed(1.0), PutUint32s(256)},
		{"string", Arg{Type: String}, "test", append(PutUint32s(5), 't', 'e', 's', 't', 0, 0, 0, 0)},
		{"aligned string", Arg{Type: String}, "abc", append(PutUint32s(4), 'a', 'b', 'c', 0)},
		{"null string", Arg{Type: String, Nullable: true}, "", PutUint32s(0)},
		{"array", Arg{Type: Array}, []byte{1, 2}, append(PutUint32s(2), 1, 2, 0, 0)},
		{"object", Arg{Type: Object, Interface: "wl_output"}, ObjectID(7), PutUint32s(7)},
		{"null object", Arg{Type: Object, Nullable: true}, ObjectID(0), PutUint32s(0)},
		{"typed new_id", Arg{Type: NewID, Interface: "wl_surface"}, ObjectID(9), PutUint32s(9)},
		{
			"untyped new_id",
			Arg{Type: NewID},
			UntypedNewID{Interface: "wl_output", Version: 4, ID: 12},
			append(append(PutUint32s(10), "wl_output\x00\x00\x00"...), PutUint32s(4, 12)...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Message{Name: "test", Args: []Arg{tt.sig}}
			frame, err := Encode(3, 1, msg, tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, frame[HeaderSize:])
			assert.Zero(t, len(frame)%4, "frames are 32-bit aligned")
		})
	}
}

func TestEncodeRejectsMismatches(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		args []interface{}
	}{
		{"too few args", Message{Name: "m", Args: []Arg{{Type: Uint}}}, nil},
		{"too many args", Message{Name: "m"}, []interface{}{uint32(1)}},
		{"wrong type", Message{Name: "m", Args: []Arg{{Type: Uint}}}, []interface{}{int32(1)}},
		{"null non-nullable object", Message{Name: "m", Args: []Arg{{Type: Object}}}, []interface{}{ObjectID(0)}},
		{"null new_id", Message{Name: "m", Args: []Arg{{Type: NewID, Interface: "wl_surface"}}}, []interface{}{ObjectID(0)}},
		{"fd", Message{Name: "m", Args: []Arg{{Type: FD}}}, []interface{}{uintptr(3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(2, 0, tt.msg, tt.args...)
			assert.ErrorIs(t, err, ErrSignature)
		})
	}
}

func TestDecodeArgsRoundTrip(t *testing.T) {
	msg := Message{
		Name: "geometry",
		Args: []Arg{
			{Name: "x", Type: Int},
			{Name: "serial", Type: Uint},
			{Name: "scale", Type: FixedPoint},
			{Name: "make", Type: String},
			{Name: "states", Type: Array},
			{Name: "output", Type: Object, Nullable: true},
		},
	}
	frame, err := Encode(4, 0, msg, int32(-20), uint32(7), NewFixed(1.5), "ACME", PutUint32s(2, 4), ObjectID(0))
	require.NoError(t, err)

	h, err := DecodeHeader(frame)
	require.NoError(t, err)
	assert.Equal(t, len(frame), int(h.Size))

	args, err := DecodeArgs(msg, frame[HeaderSize:])
	require.NoError(t, err)
	assert.Equal(t, int32(-20), args.Int(0))
	assert.Equal(t, uint32(7), args.Uint(1))
	assert.Equal(t, 1.5, args.Fixed(2).Float64())
	assert.Equal(t, "ACME", args.String(3))
	states, err := Uint32s(args.Array(4))
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 4}, states)
	assert.Equal(t, ObjectID(0), args.Object(5))
}

func TestDecodeArgsErrors(t *testing.T) {
	serial := Message{Name: "configure", Args: []Arg{{Name: "serial", Type: Uint}}}
	str := Message{Name: "name", Args: []Arg{{Name: "name", Type: String}}}
	obj := Message{Name: "enter", Args: []Arg{{Name: "output", Type: Object}}}

	tests := []struct {
		name    string
		msg     Message
		payload []byte
	}{
		{"short payload", serial, []byte{1, 2}},
		{"trailing bytes", serial, PutUint32s(1, 2)},
		{"string overrun", str, append(PutUint32s(32), 'a', 'b', 'c', 0)},
		{"string without NUL", str, append(PutUint32s(4), 'a', 'b', 'c', 'd')},
		{"null non-nullable string", str, PutUint32s(0, 0)},
		{"null non-nullable object", obj, PutUint32s(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeArgs(tt.msg, tt.payload)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestMinSize(t *testing.T) {
	msg := Message{Args: []Arg{
		{Type: Int},
		{Type: String},
		{Type: String, Nullable: true},
		{Type: NewID},
		{Type: FD},
	}}
	assert.Equal(t, 4+8+4+16, msg.MinSize())
}

func TestUint32sRejectsPartialWords(t *testing.T) {
	_, err := Uint32s([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrDecode)
}
