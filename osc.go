// package osc sends and receives Open Sound Control messages, per the
// OSC 1.0 spec (https://ccrma.stanford.edu/groups/osc/spec-1_0.html)
package osc

import (
	"net"
	"sync"

	"golang.org/x/exp/constraints"
)

// Send builds and sends a message using the provided arguments, to the
// given pattern at the provided UDP address.
func Send(conn net.PacketConn, addr, pattern string, args ...Argument) error {
	nAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	msg := Message{
		Pattern:   pattern,
		Arguments: args,
		Timetag:   Immediate,
	}
	b := getBuf()
	b = msg.Append(b)
	defer putBuf(b)
	_, err = conn.WriteTo(b, nAddr)
	return err
}

// SendConn builds and sends a message over a connection-oriented
// transport (TCP or Unix-domain), for callers that have already dialed
// their peer. The core does not dial or listen itself: connection
// acquisition is the transport's concern, out of scope here.
func SendConn(conn net.Conn, pattern string, args ...Argument) error {
	msg := Message{
		Pattern:   pattern,
		Arguments: args,
		Timetag:   Immediate,
	}
	b := getBuf()
	b = msg.Append(b)
	defer putBuf(b)
	_, err := conn.Write(b)
	return err
}

// SendBundle serialises and sends a bundle to the given UDP address.
func SendBundle(conn net.PacketConn, addr string, bundle *Bundle) error {
	nAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	b := getBuf()
	b = bundle.Append(b)
	defer putBuf(b)
	_, err = conn.WriteTo(b, nAddr)
	return err
}

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 1024)
		return &b
	},
}

func getBuf() []byte {
	b := bufPool.Get().(*[]byte)
	return (*b)[:0]
}

func putBuf(b []byte) {
	bufPool.Put(&b)
}

func AsString(s string) *String {
	os := String(s)
	return &os
}

func AsSymbol(s string) *Symbol {
	os := Symbol(s)
	return &os
}

func AsInt32[T constraints.Integer](i T) *Int32 {
	ii := Int32(i)
	return &ii
}

func AsInt64[T constraints.Integer](i T) *Int64 {
	ii := Int64(i)
	return &ii
}

func AsFloat32[T constraints.Float](f T) *Float32 {
	ff := Float32(f)
	return &ff
}

func AsFloat64[T constraints.Float](f T) *Float64 {
	ff := Float64(f)
	return &ff
}
