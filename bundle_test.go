package osc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleSerialiseLength(t *testing.T) {
	b := NewBundle(Timetag{Sec: 1, Frac: 0})
	msg := (&Message{Pattern: "/x"}).AddInt32(42)
	b.Add("/x", msg)

	enc := b.Append(nil)
	require.Equal(t, 32, len(enc))
	assert.Equal(t, b.Length(), len(enc))

	assert.Equal(t, "#bundle\x00", string(enc[0:8]))
	assert.Equal(t, []byte{0, 0, 0, 1}, enc[8:12])
	assert.Equal(t, []byte{0, 0, 0, 0}, enc[12:16])
	assert.Equal(t, []byte{0, 0, 0, 0x0c}, enc[16:20])
	assert.Equal(t, "/x\x00\x00", string(enc[20:24]))
	assert.Equal(t, ",i\x00\x00", string(enc[24:28]))
	assert.Equal(t, []byte{0, 0, 0, 0x2a}, enc[28:32])
}

func TestParsePacketRoundTripsBundle(t *testing.T) {
	b := NewBundle(Immediate)
	b.Add("/a", (&Message{}).AddInt32(1))
	b.Add("/b", (&Message{}).AddString("hi"))

	enc := b.Append(nil)
	pkt, err := ParsePacket(enc)
	require.NoError(t, err)
	require.NotNil(t, pkt.Bundle)
	assert.Equal(t, Immediate, pkt.Bundle.Timetag)
	require.Len(t, pkt.Bundle.RawElements, 2)

	var paths []string
	for _, raw := range pkt.Bundle.RawElements {
		elem, err := ParsePacket(raw)
		require.NoError(t, err)
		require.NotNil(t, elem.Message)
		paths = append(paths, elem.Message.Pattern)
	}
	assert.Equal(t, []string{"/a", "/b"}, paths)
}

func TestParsePacketNestedBundle(t *testing.T) {
	inner := NewBundle(Timetag{Sec: 5})
	inner.Add("/inner", (&Message{}).AddTrue())

	outer := NewBundle(Immediate)
	outer.Add("/outer", (&Message{}).AddFalse())

	innerEnc := inner.Append(nil)
	outerEnc := outer.Append(nil)
	// splice the inner bundle in as a second raw element of outer by
	// re-encoding outer by hand, since Bundle.Add only accepts messages.
	combined := append([]byte(nil), outerEnc...)
	var lenBuf [4]byte
	putUint32(lenBuf[:], uint32(len(innerEnc)))
	combined = append(combined, lenBuf[:]...)
	combined = append(combined, innerEnc...)

	pkt, err := ParsePacket(combined)
	require.NoError(t, err)
	require.NotNil(t, pkt.Bundle)
	require.Len(t, pkt.Bundle.RawElements, 2)

	nested, err := ParsePacket(pkt.Bundle.RawElements[1])
	require.NoError(t, err)
	require.NotNil(t, nested.Bundle)
	assert.Equal(t, Timetag{Sec: 5}, nested.Bundle.Timetag)
}

func TestParsePacketRejectsTruncatedBundle(t *testing.T) {
	b := NewBundle(Immediate)
	b.Add("/a", (&Message{}).AddInt32(1))
	enc := b.Append(nil)
	_, err := ParsePacket(enc[:len(enc)-8])
	assert.Error(t, err)
}

func TestParsePacketMessage(t *testing.T) {
	msg := (&Message{Pattern: "/foo"}).AddInt32(1).AddFloat32(0.5)
	enc := msg.Append(nil)
	pkt, err := ParsePacket(enc)
	require.NoError(t, err)
	require.NotNil(t, pkt.Message)
	assert.Nil(t, pkt.Bundle)
	assert.True(t, bytes.Equal(enc, pkt.Message.Append(nil)))
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
