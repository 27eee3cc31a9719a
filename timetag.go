package osc

import (
	"encoding/binary"
	"fmt"
	"time"
)

// secondsFrom1900To1970 is the offset between the NTP epoch
// (1900-01-01) and the Unix epoch, in seconds.
const secondsFrom1900To1970 = 2208988800

// Timetag is an NTP-style 64-bit time: whole seconds since 1900-01-01
// UTC and a fractional part in units of 2^-32 seconds.
type Timetag struct {
	Sec  uint32
	Frac uint32
}

// Immediate is the sentinel meaning "dispatch as soon as possible".
var Immediate = Timetag{Sec: 0, Frac: 1}

func (t Timetag) TypeTag() rune { return 't' }

func (t Timetag) Append(b []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, t.Sec)
	b = binary.BigEndian.AppendUint32(b, t.Frac)
	return b
}

func (t *Timetag) Consume(b []byte) ([]byte, error) {
	if l := len(b); l < 8 {
		return nil, fmt.Errorf("expected timetag (8 bytes), only %d bytes", l)
	}
	t.Sec = binary.BigEndian.Uint32(b)
	t.Frac = binary.BigEndian.Uint32(b[4:])
	return b[8:], nil
}

func (t Timetag) String() string {
	if t == Immediate {
		return "Timetag(immediate)"
	}
	return fmt.Sprintf("Timetag(%d.%d)", t.Sec, t.Frac)
}

// Now returns the current wall-clock time as a Timetag.
func Now() Timetag {
	return FromTime(time.Now())
}

// FromTime converts a wall-clock instant to a Timetag.
func FromTime(t time.Time) Timetag {
	u := t.UTC()
	sec := uint32(u.Unix() + secondsFrom1900To1970)
	frac := uint32((uint64(u.Nanosecond()) / 1000) * (uint64(1) << 32) / 1000000)
	return Timetag{Sec: sec, Frac: frac}
}

// Time converts the Timetag back to a wall-clock instant.
func (t Timetag) Time() time.Time {
	secs := int64(t.Sec) - secondsFrom1900To1970
	nsec := int64(t.Frac) * 1e9 / (int64(1) << 32)
	return time.Unix(secs, nsec).UTC()
}

// Diff returns a-b in seconds.
func Diff(a, b Timetag) float64 {
	return float64(int64(a.Sec)-int64(b.Sec)) +
		float64(int64(a.Frac)-int64(b.Frac))*0x1p-32
}

// Before reports whether t is at or before now, or equal to Immediate.
func (t Timetag) Before(now Timetag) bool {
	if t == Immediate {
		return true
	}
	return Diff(t, now) <= 0
}
