package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	version      byte = 1
	kindSnapshot byte = 1
)

var (
	ErrCorrupt = errors.New("cacheseq: corrupt snapshot")
	magic4     = [...]byte{'C', 'S', 'E', 'Q'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Snapshot:
//
//	magic(4) | ver(1) | kind(1=snapshot) | gen(u64 be) | n(u32 be)
//	vlen(u32 be) | payload(vlen) * n
const snapshotHdr = 4 + 1 + 1 + 8 + 4

// EncodeSnapshot frames the encoded items of a completed sequence.
func EncodeSnapshot(gen uint64, payloads [][]byte) ([]byte, error) {
	if uint64(len(payloads)) > math.MaxUint32 {
		return nil, fmt.Errorf("cacheseq: too many items in snapshot: %d", len(payloads))
	}
	total := snapshotHdr
	for _, p := range payloads {
		if uint64(len(p)) > math.MaxUint32 {
			return nil, fmt.Errorf("cacheseq: item payload too large: %d", len(p))
		}
		total += 4 + len(p)
	}

	var buf bytes.Buffer
	buf.Grow(total)

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindSnapshot)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], gen)
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payloads)))
	buf.Write(u4[:])

	for _, p := range payloads {
		binary.BigEndian.PutUint32(u4[:], uint32(len(p)))
		buf.Write(u4[:])
		buf.Write(p)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot parses a snapshot frame. Payloads alias b.
// Trailing bytes after the last item are rejected.
func DecodeSnapshot(b []byte) (gen uint64, payloads [][]byte, err error) {
	if len(b) < snapshotHdr || !hasMagic(b) || b[4] != version || b[5] != kindSnapshot {
		return 0, nil, ErrCorrupt
	}

	off := 6

	gen = binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4

	// every item needs at least its 4-byte length; never trust n for capacity
	if n > (len(b)-off)/4 {
		return 0, nil, ErrCorrupt
	}

	payloads = make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		if off+4 > len(b) {
			return 0, nil, ErrCorrupt
		}
		vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
		off += 4
		if vlen < 0 || vlen > len(b)-off { // overflow-safe bound check
			return 0, nil, ErrCorrupt
		}
		payloads = append(payloads, b[off:off+vlen:off+vlen])
		off += vlen
	}

	if off != len(b) {
		return 0, nil, ErrCorrupt
	}
	return gen, payloads, nil
}
