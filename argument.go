package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Argument is an OSC value: one type tag character plus a wire
// representation. Every concrete type (Int32, Float32, String, ...)
// implements it.
type Argument interface {
	// TypeTag returns the single character identifying this argument's
	// OSC type.
	TypeTag() rune
	// Append encodes the argument's host-endian-free wire form and
	// appends it to b.
	Append(b []byte) []byte
	// Consume fills the argument in from b, returning the remainder.
	Consume(b []byte) ([]byte, error)
}

// newByTypeTag constructs a zero-valued Argument for a given type code,
// used while parsing a message's typespec.
var newByTypeTag = map[rune]func() Argument{
	Int32(0).TypeTag():   func() Argument { return new(Int32) },
	Float32(0).TypeTag(): func() Argument { return new(Float32) },
	String("").TypeTag(): func() Argument { return new(String) },
	Blob(nil).TypeTag():  func() Argument { return new(Blob) },
	Int64(0).TypeTag():   func() Argument { return new(Int64) },
	Timetag{}.TypeTag():  func() Argument { return new(Timetag) },
	Float64(0).TypeTag(): func() Argument { return new(Float64) },
	Symbol("").TypeTag(): func() Argument { return new(Symbol) },
	Char(0).TypeTag():    func() Argument { return new(Char) },
	MIDI{}.TypeTag():     func() Argument { return new(MIDI) },
	True{}.TypeTag():     func() Argument { return True{} },
	False{}.TypeTag():    func() Argument { return False{} },
	Null{}.TypeTag():     func() Argument { return Null{} },
	Impulse{}.TypeTag():  func() Argument { return Impulse{} },
}

// Int32 is the OSC int32: a 32-bit big-endian two's complement integer.
type Int32 int32

func (Int32) TypeTag() rune { return 'i' }

func (i Int32) Append(b []byte) []byte { return binary.BigEndian.AppendUint32(b, uint32(i)) }

func (i *Int32) Consume(b []byte) ([]byte, error) {
	if l := len(b); l < 4 {
		return nil, newErrorf(ESize, "", "expect int32, only %d bytes", l)
	}
	*i = Int32(binary.BigEndian.Uint32(b))
	return b[4:], nil
}

func (i Int32) String() string { return fmt.Sprintf("Int32(%d)", i) }

// Float32 is a 32-bit big-endian IEEE 754 float.
type Float32 float32

func (Float32) TypeTag() rune { return 'f' }

func (f Float32) Append(b []byte) []byte {
	return binary.BigEndian.AppendUint32(b, math.Float32bits(float32(f)))
}

func (f *Float32) Consume(b []byte) ([]byte, error) {
	if l := len(b); l < 4 {
		return nil, newErrorf(ESize, "", "expect float32, only %d bytes", l)
	}
	*f = Float32(math.Float32frombits(binary.BigEndian.Uint32(b)))
	return b[4:], nil
}

func (f Float32) String() string { return fmt.Sprintf("Float32(%f)", f) }

// Int64 is a 64-bit big-endian two's complement integer.
type Int64 int64

func (Int64) TypeTag() rune { return 'h' }

func (i Int64) Append(b []byte) []byte { return binary.BigEndian.AppendUint64(b, uint64(i)) }

func (i *Int64) Consume(b []byte) ([]byte, error) {
	if l := len(b); l < 8 {
		return nil, newErrorf(ESize, "", "expect int64, only %d bytes", l)
	}
	*i = Int64(binary.BigEndian.Uint64(b))
	return b[8:], nil
}

func (i Int64) String() string { return fmt.Sprintf("Int64(%d)", i) }

// Float64 is a 64-bit big-endian IEEE 754 double.
type Float64 float64

func (Float64) TypeTag() rune { return 'd' }

func (f Float64) Append(b []byte) []byte {
	return binary.BigEndian.AppendUint64(b, math.Float64bits(float64(f)))
}

func (f *Float64) Consume(b []byte) ([]byte, error) {
	if l := len(b); l < 8 {
		return nil, newErrorf(ESize, "", "expect float64, only %d bytes", l)
	}
	*f = Float64(math.Float64frombits(binary.BigEndian.Uint64(b)))
	return b[8:], nil
}

func (f Float64) String() string { return fmt.Sprintf("Float64(%f)", f) }

// String is an ASCII string; on the wire it's null-terminated and
// zero-padded to a 4-byte boundary.
type String string

func (String) TypeTag() rune { return 's' }

func (s String) Append(b []byte) []byte { return appendOSCString(b, string(s)) }

func (s *String) Consume(b []byte) ([]byte, error) {
	str, rest, err := consumeOSCString(b)
	if err != nil {
		return nil, err
	}
	*s = String(str)
	return rest, nil
}

func (s String) String() string { return fmt.Sprintf("String(%q)", string(s)) }

// Symbol is a second string type used to distinguish OSC-level symbols
// (e.g. atoms) from ordinary strings; its wire encoding is identical to
// String.
type Symbol string

func (Symbol) TypeTag() rune { return 'S' }

func (s Symbol) Append(b []byte) []byte { return appendOSCString(b, string(s)) }

func (s *Symbol) Consume(b []byte) ([]byte, error) {
	str, rest, err := consumeOSCString(b)
	if err != nil {
		return nil, err
	}
	*s = Symbol(str)
	return rest, nil
}

func (s Symbol) String() string { return fmt.Sprintf("Symbol(%q)", string(s)) }

// Char is an ASCII character, carried on the wire as a 32-bit word with
// the character in the low byte.
type Char byte

func (Char) TypeTag() rune { return 'c' }

func (c Char) Append(b []byte) []byte { return binary.BigEndian.AppendUint32(b, uint32(c)) }

func (c *Char) Consume(b []byte) ([]byte, error) {
	if l := len(b); l < 4 {
		return nil, newErrorf(ESize, "", "expect char, only %d bytes", l)
	}
	*c = Char(binary.BigEndian.Uint32(b))
	return b[4:], nil
}

func (c Char) String() string { return fmt.Sprintf("Char(%q)", byte(c)) }

// MIDI is four raw MIDI message bytes; unlike the other 4-byte types
// it is never endian-swapped.
type MIDI [4]byte

func (MIDI) TypeTag() rune { return 'm' }

func (m MIDI) Append(b []byte) []byte { return append(b, m[:]...) }

func (m *MIDI) Consume(b []byte) ([]byte, error) {
	if l := len(b); l < 4 {
		return nil, newErrorf(ESize, "", "expect midi, only %d bytes", l)
	}
	copy(m[:], b[:4])
	return b[4:], nil
}

func (m MIDI) String() string { return fmt.Sprintf("MIDI(% x)", [4]byte(m)) }

// True is a boolean true, it carries no payload.
type True struct{}

func (True) TypeTag() rune                    { return 'T' }
func (True) Append(b []byte) []byte           { return b }
func (True) Consume(b []byte) ([]byte, error) { return b, nil }
func (True) String() string                   { return "True" }

// False is a boolean false, it carries no payload.
type False struct{}

func (False) TypeTag() rune                    { return 'F' }
func (False) Append(b []byte) []byte           { return b }
func (False) Consume(b []byte) ([]byte, error) { return b, nil }
func (False) String() string                   { return "False" }

// Null is the OSC nil value, it carries no payload.
type Null struct{}

func (Null) TypeTag() rune                    { return 'N' }
func (Null) Append(b []byte) []byte           { return b }
func (Null) Consume(b []byte) ([]byte, error) { return b, nil }
func (Null) String() string                   { return "Null" }

// Impulse (aka "bang", or Infinitum) carries no payload.
type Impulse struct{}

func (Impulse) TypeTag() rune                    { return 'I' }
func (Impulse) Append(b []byte) []byte           { return b }
func (Impulse) Consume(b []byte) ([]byte, error) { return b, nil }
func (Impulse) String() string                   { return "Impulse" }

// appendOSCString appends s null-terminated and zero-padded to a
// 4-byte boundary.
func appendOSCString(b []byte, s string) []byte {
	b = append(b, s...)
	b = append(b, 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

// consumeOSCString validates and extracts a null-terminated, 4-byte
// padded string from the head of buf.
func consumeOSCString(buf []byte) (string, []byte, error) {
	n, err := validateString(buf, len(buf))
	if err != nil {
		return "", nil, err
	}
	end := bytes.IndexByte(buf, 0)
	return string(buf[:end]), buf[n:], nil
}

// validateString scans buf (of which `remain` bytes are usable) for a
// terminated, correctly zero-padded OSC string and returns its total
// padded length on the wire.
func validateString(buf []byte, remain int) (int, error) {
	if remain < 0 || remain > len(buf) {
		return 0, newError(ESize, "", fmt.Errorf("invalid remaining size %d", remain))
	}
	i := bytes.IndexByte(buf[:remain], 0)
	if i < 0 {
		return 0, newErrorf(ETerm, "", "no null terminator within %d bytes", remain)
	}
	total := pad4(i + 1)
	if total > remain {
		return 0, newErrorf(ESize, "", "string of padded length %d overflows %d remaining", total, remain)
	}
	for j := i; j < total; j++ {
		if buf[j] != 0 {
			return 0, newError(EPad, "", fmt.Errorf("non-zero padding byte in string"))
		}
	}
	return total, nil
}

// argSize returns the wire size in bytes of a single argument, given
// its type code and a pointer to its (already-validated) encoded data.
func argSize(t rune, data []byte) int {
	switch t {
	case 'T', 'F', 'N', 'I':
		return 0
	case 'i', 'f', 'c', 'm':
		return 4
	case 'h', 't', 'd':
		return 8
	case 's', 'S':
		n, _ := validateString(data, len(data))
		return n
	case 'b':
		n, _ := validateBlob(data, len(data))
		return n
	default:
		return 0
	}
}

// validateArg checks that a single argument of type t is well-formed
// within the first `remain` bytes of data, returning its wire size.
func validateArg(t rune, data []byte, remain int) (int, error) {
	switch t {
	case 'T', 'F', 'N', 'I':
		return 0, nil
	case 'i', 'f', 'c', 'm':
		if remain < 4 {
			return 0, newError(ESize, "", fmt.Errorf("argument truncated, need 4 bytes"))
		}
		return 4, nil
	case 'h', 't', 'd':
		if remain < 8 {
			return 0, newError(ESize, "", fmt.Errorf("argument truncated, need 8 bytes"))
		}
		return 8, nil
	case 's', 'S':
		return validateString(data, remain)
	case 'b':
		return validateBlob(data, remain)
	default:
		return 0, newErrorf(EInvalidType, "", "unknown type tag %q", t)
	}
}
