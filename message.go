package osc

import "fmt"

// Message is a single OSC message: a path and its typed arguments.
//
// Unlike the wire form, a Message does not retain a packed byte
// buffer between appends: Arguments holds live Argument values, so
// there is no cached pointer vector to invalidate the way liblo's
// lop_message does — the "argv" a handler sees is simply this slice,
// recomputed fresh by ArgTypes/Append every time it's needed.
type Message struct {
	// Pattern is the address pattern, a string beginning with "/".
	Pattern string
	// Arguments holds the message's typed argument values, in order.
	Arguments []Argument

	// Timetag is metadata attached by the dispatcher when this
	// message arrived inside a bundle; ParseMessage sets it to
	// Immediate (the zero value is {0, 0}), and it is never present on
	// the wire for a bare message.
	Timetag Timetag
	// Source identifies where the message came from, if known. It is
	// observed by handlers but carries no wire representation.
	Source string
}

// ArgTypes returns the message's typespec, including the leading
// comma, e.g. ",if".
func (m Message) ArgTypes() string {
	tt := make([]byte, 0, len(m.Arguments)+1)
	tt = append(tt, ',')
	for _, a := range m.Arguments {
		tt = append(tt, byte(a.TypeTag()))
	}
	return string(tt)
}

// ParseMessage parses a single OSC message from buf, which must
// contain exactly one message (any transport framing has already been
// stripped).
func ParseMessage(buf []byte) (*Message, error) {
	var addr String
	rest, err := addr.Consume(buf)
	if err != nil {
		return nil, newError(EInvalidPath, "", fmt.Errorf("reading address pattern: %w", err))
	}

	var tt String
	rest, err = tt.Consume(rest)
	if err != nil {
		return nil, newError(EInvalidType, string(addr), fmt.Errorf("reading type tag: %w", err))
	}
	if len(tt) == 0 || tt[0] != ',' {
		return nil, newErrorf(EBadType, string(addr), "invalid type tag string: %q", string(tt))
	}

	args := make([]Argument, len(tt)-1)
	for i, tc := range tt[1:] {
		ctor, ok := newByTypeTag[rune(tc)]
		if !ok {
			return nil, newErrorf(EInvalidType, string(addr), "unknown type tag %q", string(tc))
		}
		a := ctor()
		rest, err = a.Consume(rest)
		if err != nil {
			return nil, newError(EInvalidArg, string(addr), fmt.Errorf("reading argument %d (%c): %w", i, tc, err))
		}
		args[i] = a
	}
	if len(rest) != 0 {
		return nil, newErrorf(ESize, string(addr), "%d trailing bytes after last argument", len(rest))
	}

	return &Message{
		Pattern:   string(addr),
		Arguments: args,
		Timetag:   Immediate,
	}, nil
}

// Append encodes the message and appends it to b.
func (m Message) Append(b []byte) []byte {
	return m.AppendAt(m.Pattern, b)
}

// AppendAt encodes the message as if addressed to path, regardless of
// m.Pattern. A Bundle uses this to serialise the same *Message at
// whatever path it was added under.
func (m Message) AppendAt(path string, b []byte) []byte {
	b = appendOSCString(b, path)
	b = appendOSCString(b, m.ArgTypes())
	for _, a := range m.Arguments {
		b = a.Append(b)
	}
	return b
}

// Length returns the serialised wire size of the message sent at the
// given path, which may differ from m.Pattern when a bundle element was
// added under a different path.
func (m Message) Length(path string) int {
	n := pad4(len(path)+1) + pad4(len(m.ArgTypes())+1)
	for _, a := range m.Arguments {
		n += len(a.Append(nil))
	}
	return n
}

// --- typed builder API: one method per type code, no variadic footgun ---

func (m *Message) AddInt32(v int32) *Message     { a := Int32(v); return m.add(&a) }
func (m *Message) AddFloat32(v float32) *Message { a := Float32(v); return m.add(&a) }
func (m *Message) AddInt64(v int64) *Message     { a := Int64(v); return m.add(&a) }
func (m *Message) AddFloat64(v float64) *Message { a := Float64(v); return m.add(&a) }
func (m *Message) AddString(v string) *Message   { a := String(v); return m.add(&a) }
func (m *Message) AddSymbol(v string) *Message   { a := Symbol(v); return m.add(&a) }
func (m *Message) AddBlob(v []byte) *Message {
	a := Blob(append([]byte(nil), v...))
	return m.add(&a)
}
func (m *Message) AddChar(v byte) *Message       { a := Char(v); return m.add(&a) }
func (m *Message) AddMIDI(v [4]byte) *Message    { a := MIDI(v); return m.add(&a) }
func (m *Message) AddTimetag(v Timetag) *Message { return m.add(&v) }
func (m *Message) AddTrue() *Message             { return m.add(True{}) }
func (m *Message) AddFalse() *Message            { return m.add(False{}) }
func (m *Message) AddNull() *Message             { return m.add(Null{}) }
func (m *Message) AddImpulse() *Message          { return m.add(Impulse{}) }

func (m *Message) add(a Argument) *Message {
	m.Arguments = append(m.Arguments, a)
	return m
}

// typedValue pairs an expected type code with an Argument, for use
// with AddFromIter.
type typedValue struct {
	Type  rune
	Value Argument
}

// AddFromIter appends one argument per (type, value) pair, per
// spec.md's "no variadic footgun" builder guidance: value must already
// be an Argument whose TypeTag matches Type, or the whole call fails
// without modifying m.
func (m *Message) AddFromIter(pairs ...typedValue) error {
	staged := make([]Argument, 0, len(pairs))
	for _, p := range pairs {
		if p.Value.TypeTag() != p.Type {
			return fmt.Errorf("add: type %c does not match value of type %c", p.Type, p.Value.TypeTag())
		}
		staged = append(staged, p.Value)
	}
	m.Arguments = append(m.Arguments, staged...)
	return nil
}

func (m Message) String() string {
	return fmt.Sprintf("%s %s %v", m.Pattern, m.ArgTypes(), m.Arguments)
}
