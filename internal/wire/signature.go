package wire

// ArgType is the wire type of one message argument.
type ArgType uint8

const (
	Int ArgType = iota
	Uint
	FixedPoint
	String
	Object
	NewID
	Array
	FD
)

func (t ArgType) String() string {
	switch t {
	case Int:
		return "int"
	case Uint:
		return "uint"
	case FixedPoint:
		return "fixed"
	case String:
		return "string"
	case Object:
		return "object"
	case NewID:
		return "new_id"
	case Array:
		return "array"
	case FD:
		return "fd"
	default:
		return "unknown"
	}
}

// Arg describes one argument of a request or event.
type Arg struct {
	Name     string
	Type     ArgType
	Nullable bool
	// Interface names the interface of an object or new_id argument. An
	// empty Interface on a new_id means the interface is chosen at runtime
	// and travels on the wire as (string interface, uint version, uint id).
	Interface string
}

// Message is the signature of one request or event. Its opcode is its
// position in the owning interface's request or event table.
type Message struct {
	Name       string
	Since      uint32
	Destructor bool
	Args       []Arg
}

// MinSize returns the smallest payload that can hold the message's
// arguments. File descriptors travel out of band and take no payload.
func (m Message) MinSize() int {
	size := 0
	for _, a := range m.Args {
		switch a.Type {
		case FD:
		case String:
			if a.Nullable {
				size += 4
			} else {
				size += 8 // length word + NUL padded to 4
			}
		case NewID:
			if a.Interface == "" {
				size += 16 // interface string (min 8) + version + id
			} else {
				size += 4
			}
		default:
			size += 4
		}
	}
	return size
}
