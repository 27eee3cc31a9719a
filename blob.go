package osc

import (
	"encoding/binary"
	"fmt"
)

// MaxMsgSize bounds a single blob's length prefix (its payload size
// before padding), and guards that prefix against integer overflow
// while validating incoming wire data.
const MaxMsgSize = 32768

// Blob is an opaque, length-prefixed byte payload.
type Blob []byte

func (Blob) TypeTag() rune { return 'b' }

// pad4 rounds n up to the next multiple of 4.
func pad4(n int) int { return 4 * ((n + 3) / 4) }

// blobSize returns the padded wire size of a blob of n data bytes: a
// 4-byte length prefix plus the payload, padded to a 4-byte boundary.
func blobSize(n int) int { return 4 + pad4(n) }

func (b Blob) Append(buf []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(b)))
	buf = append(buf, b...)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

func (b *Blob) Consume(buf []byte) ([]byte, error) {
	n, err := validateBlob(buf, len(buf))
	if err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(buf)
	*b = append(Blob(nil), buf[4:4+size]...)
	return buf[n:], nil
}

func (b Blob) String() string {
	if len(b) > 12 {
		return fmt.Sprintf("Blob(%d bytes)", len(b))
	}
	return fmt.Sprintf("Blob(% x)", []byte(b))
}

// validateBlob checks that buf begins with a well-formed blob within
// the first `remain` bytes and returns the blob's total padded size on
// the wire.
func validateBlob(buf []byte, remain int) (int, error) {
	if remain < 4 {
		return 0, newError(ESize, "", fmt.Errorf("blob length prefix truncated"))
	}
	size := binary.BigEndian.Uint32(buf)
	if size > MaxMsgSize {
		return 0, newErrorf(ESize, "", "blob size %d exceeds MaxMsgSize", size)
	}
	end := 4 + int(size)
	total := pad4(end)
	if total > remain {
		return 0, newErrorf(ESize, "", "blob of %d bytes overflows %d remaining", total, remain)
	}
	for i := end; i < total; i++ {
		if buf[i] != 0 {
			return 0, newError(EPad, "", fmt.Errorf("non-zero padding byte in blob"))
		}
	}
	return total, nil
}
