package rhmap

import (
	"encoding/binary"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// FastHashBytes and FastHashString form an alternate hasher family backed
// by xxHash, adapted from
// the teacher's FixedBlockKey.FromString. It is not the default byte-wise
// hasher but can be plugged into a MapInfo wherever a caller wants xxHash's
// throughput instead, as long as every key comparison still goes through
// an Equals that agrees with it.

// FastHashBytes hashes an arbitrary byte sequence with xxHash, then applies
// the same top-bit-mask/zero-coerce post-processing every hasher composed
// into a MapInfo must apply.
func FastHashBytes(data []byte, seed uint64) Hash {
	d := xxhash.New()
	if seed != 0 {
		var seedBytes [8]byte
		binary.LittleEndian.PutUint64(seedBytes[:], seed)
		_, _ = d.Write(seedBytes[:])
	}
	_, _ = d.Write(data)
	return finishHash(d.Sum64())
}

// FastHashString is FastHashBytes over a Go string's bytes.
func FastHashString(s string, seed uint64) Hash {
	return FastHashBytes(unsafe.Slice(unsafe.StringData(s), len(s)), seed)
}

// WideKey is a 16-byte composite key derived from a string via xxHash plus
// a golden-ratio mixer. Both halves come from one 64-bit hash, so it
// carries no more distinguishing information than that hash. Ported from
// the teacher's FixedBlockKey.FromString.
type WideKey [16]byte

// DeriveWideKey populates a WideKey from text: the first 8 bytes are the
// primary xxHash, and the second 8 bytes are a golden-ratio mix of it.
// The second half is a function of the first, so two inputs whose xxHash
// collides get identical WideKeys.
func DeriveWideKey(text string) WideKey {
	var k WideKey
	h := xxhash.Sum64String(text)
	binary.LittleEndian.PutUint64(k[0:8], h)

	h2 := h ^ (h >> 33)
	h2 *= 0x9e3779b97f4a7c15
	h2 ^= h2 >> 33
	binary.LittleEndian.PutUint64(k[8:16], h2)

	return k
}

// HashWideKey is the default-contract hasher for WideKey: since a WideKey
// already IS a hash, this simply folds it down to 64 bits and reapplies the
// empty/tombstone-tag contract, rather than re-hashing its bytes.
func HashWideKey(ptr unsafe.Pointer, seed uint64) Hash {
	k := (*WideKey)(ptr)
	lo := binary.LittleEndian.Uint64(k[0:8])
	hi := binary.LittleEndian.Uint64(k[8:16])
	return finishHash(lo ^ hi ^ seed)
}
