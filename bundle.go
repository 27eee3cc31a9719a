package osc

import (
	"encoding/binary"
	"fmt"
)

const bundleTag = "#bundle"

// Element is one entry of a Bundle: the path a message was (or will
// be) sent to, and the message itself.
type Element struct {
	Path    string
	Message *Message
}

// Bundle is a time-tagged collection of messages, serialised as the
// literal "#bundle\0", a Timetag, then a 32-bit length-prefixed
// message per element.
//
// A Bundle holds its elements by reference: the same *Message may
// legally appear at more than one path (liblo's lop_bundle_add_message
// allows this, and lop_bundle_free_messages de-duplicates before
// freeing). Go's garbage collector makes that de-duplication
// unnecessary; Bundle simply stores *Message pointers.
type Bundle struct {
	Timetag  Timetag
	Elements []Element
}

// NewBundle creates an empty bundle due at tt.
func NewBundle(tt Timetag) *Bundle {
	return &Bundle{Timetag: tt}
}

// Add appends a message to the bundle at the given path.
func (b *Bundle) Add(path string, m *Message) {
	b.Elements = append(b.Elements, Element{Path: path, Message: m})
}

// Length returns the bundle's total serialised size: 16 bytes for the
// "#bundle" tag and timetag, plus a 4-byte length prefix and the
// message length for each element.
func (b *Bundle) Length() int {
	size := 16
	for _, e := range b.Elements {
		size += 4 + e.Message.Length(e.Path)
	}
	return size
}

// Append encodes the bundle and appends it to buf.
func (b *Bundle) Append(buf []byte) []byte {
	start := len(buf)
	buf = append(buf, bundleTag...)
	buf = append(buf, 0)
	buf = b.Timetag.Append(buf)
	for _, e := range b.Elements {
		elemStart := len(buf)
		buf = binary.BigEndian.AppendUint32(buf, 0) // placeholder length
		before := len(buf)
		buf = e.Message.AppendAt(e.Path, buf)
		n := len(buf) - before
		binary.BigEndian.PutUint32(buf[elemStart:elemStart+4], uint32(n))
	}
	if got, want := len(buf)-start, b.Length(); got != want {
		panic(fmt.Sprintf("osc: bundle serialise produced %d bytes, want %d (data integrity error)", got, want))
	}
	return buf
}

// RawBundle is the parsed form of an incoming "#bundle" packet: its
// timetag plus the raw bytes of each element, still unparsed. Elements
// are kept raw (rather than eagerly deserialised as messages) because
// an element may itself be a nested bundle — a well-formed OSC packet
// in its own right, recursively parsed by calling ParsePacket again.
type RawBundle struct {
	Timetag     Timetag
	RawElements [][]byte
}

// Packet is the result of parsing a single raw OSC packet: exactly one
// of Message or Bundle is non-nil.
type Packet struct {
	Message *Message
	Bundle  *RawBundle
}

// ParsePacket parses a raw OSC packet, dispatching between a bare
// message and a bundle based on its leading string. Bundles are
// validated recursively (every nested element's length must fit
// within its parent) but their elements are returned unparsed; callers
// that need to walk into a bundle call ParsePacket again on each of
// its RawElements.
func ParsePacket(buf []byte) (*Packet, error) {
	n, err := validateString(buf, len(buf))
	if err != nil {
		return nil, newError(EInvalidPath, "", fmt.Errorf("reading packet header: %w", err))
	}
	if string(buf[:indexZero(buf)]) != bundleTag {
		msg, err := ParseMessage(buf)
		if err != nil {
			return nil, err
		}
		return &Packet{Message: msg}, nil
	}

	if err := validateBundle(buf); err != nil {
		return nil, err
	}

	pos := buf[n:]
	var tt Timetag
	pos, err = tt.Consume(pos)
	if err != nil {
		return nil, newError(EInvalidTime, "", err)
	}

	rb := &RawBundle{Timetag: tt}
	for len(pos) > 0 {
		elemLen := binary.BigEndian.Uint32(pos)
		pos = pos[4:]
		rb.RawElements = append(rb.RawElements, pos[:elemLen:elemLen])
		pos = pos[elemLen:]
	}
	return &Packet{Bundle: rb}, nil
}

// indexZero returns the offset of the first zero byte in buf, or
// len(buf) if there is none (callers only use this after
// validateString has already guaranteed one exists).
func indexZero(buf []byte) int {
	for i, c := range buf {
		if c == 0 {
			return i
		}
	}
	return len(buf)
}

// validateBundle checks that buf is a well-formed bundle: a valid
// "#bundle" header, an 8-byte timetag, and a chain of length-prefixed
// elements that exactly exhausts buf.
func validateBundle(buf []byte) error {
	n, err := validateString(buf, len(buf))
	if err != nil {
		return newError(EInvalidBundle, "", err)
	}
	if string(buf[:indexZero(buf)]) != bundleTag {
		return newError(EInvalidBundle, "", fmt.Errorf("missing #bundle tag"))
	}
	remain := buf[n:]
	if len(remain) < 8 {
		return newError(ESize, "", fmt.Errorf("bundle timetag truncated"))
	}
	remain = remain[8:]
	for len(remain) > 0 {
		if len(remain) < 4 {
			return newError(ESize, "", fmt.Errorf("bundle element length truncated"))
		}
		elemLen := binary.BigEndian.Uint32(remain)
		remain = remain[4:]
		if uint64(elemLen) > uint64(len(remain)) {
			return newError(ESize, "", fmt.Errorf("bundle element of %d bytes overflows buffer", elemLen))
		}
		if elem := remain[:elemLen]; string(elem[:indexZero(elem)]) == bundleTag {
			if err := validateBundle(elem); err != nil {
				return err
			}
		}
		remain = remain[elemLen:]
	}
	return nil
}
