package rhmap

import (
	"encoding/binary"
	"fmt"
	"io"
	"unsafe"
)

// WriteTo writes the raw allocation (keys, values, hash words, and the
// scratch regions) to w, preceded by a 9-byte header: one byte holding
// log2_capacity, then len as a little-endian uint64. This mirrors the teacher's
// FixedBlockMap.WriteTo, which dumps its backing slice's memory directly;
// here the dump covers the same layout the probing engine operates on.
func (m *RawMap) WriteTo(info *MapInfo, w io.Writer) (int64, error) {
	if m.data == 0 {
		return 0, nil
	}

	var header [9]byte
	header[0] = byte(log2OfData(m.data))
	binary.LittleEndian.PutUint64(header[1:], uint64(m.len))
	n, err := w.Write(header[:])
	written := int64(n)
	if err != nil {
		return written, err
	}

	l := computeLayout(info, m.Cap())
	raw := unsafe.Slice((*byte)(m.base()), l.total)
	n2, err := w.Write(raw)
	written += int64(n2)
	return written, err
}

// ReadFrom populates m from r, which must have been produced by WriteTo for
// the same descriptor. m must already be allocated at the capacity encoded
// in the stream's header; it is the caller's responsibility to Reserve/Grow
// it there first, mirroring the teacher's ReadFrom contract ("the map must
// already be initialized with the correct capacity before reading").
func (m *RawMap) ReadFrom(info *MapInfo, r io.Reader) (int64, error) {
	if m.data == 0 {
		return 0, fmt.Errorf("rhmap: map must be allocated with the correct capacity before reading")
	}

	var header [9]byte
	n, err := io.ReadFull(r, header[:])
	read := int64(n)
	if err != nil {
		return read, err
	}

	streamLog2 := uintptr(header[0])
	if streamLog2 != log2OfData(m.data) {
		return read, fmt.Errorf("rhmap: stream capacity 1<<%d does not match map capacity 1<<%d", streamLog2, log2OfData(m.data))
	}

	l := computeLayout(info, m.Cap())
	raw := unsafe.Slice((*byte)(m.base()), l.total)
	n2, err := io.ReadFull(r, raw)
	read += int64(n2)
	if err != nil {
		return read, err
	}

	m.len = int(binary.LittleEndian.Uint64(header[1:]))
	return read, nil
}
