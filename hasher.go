package rhmap

import "unsafe"

// FNV-1a 64-bit constants.
const (
	fnvOffsetBasis uint64 = 0xcbf29ce484222325
	fnvPrime       uint64 = 0x100000001b3
)

// finishHash masks off the top bit (reserved for the tombstone tag) and
// coerces a zero result to 1 (zero is reserved for the empty tag). Every
// hasher composed into a MapInfo must apply this before returning.
func finishHash(h uint64) Hash {
	h &^= uint64(tombstoneBit)
	if h == 0 {
		h = 1
	}
	return Hash(h)
}

func fnvMix(state uint64, b byte) uint64 {
	state ^= uint64(b)
	state *= fnvPrime
	return state
}

// HashBytes computes the default hasher over an arbitrary-length byte
// sequence, seeded by seed (added to the offset basis before mixing).
func HashBytes(data []byte, seed uint64) Hash {
	state := fnvOffsetBasis + seed
	for _, b := range data {
		state = fnvMix(state, b)
	}
	return finishHash(state)
}

// HashString computes the default hasher over a length-prefixed Go string.
// The length itself is not mixed in (only the bytes are), matching the
// byte-stream hasher's contract.
func HashString(s string, seed uint64) Hash {
	return HashBytes(unsafe.Slice(unsafe.StringData(s), len(s)), seed)
}

// HashCString computes the default hasher by walking bytes from ptr until
// a NUL terminator, not including it.
func HashCString(ptr unsafe.Pointer, seed uint64) Hash {
	state := fnvOffsetBasis + seed
	p := (*byte)(ptr)
	for {
		b := *p
		if b == 0 {
			break
		}
		state = fnvMix(state, b)
		p = (*byte)(unsafe.Add(unsafe.Pointer(p), 1))
	}
	return finishHash(state)
}

// hashFixed hashes exactly n bytes starting at ptr. The cases for n in 1..7
// are written out byte by byte; the cases for n in 8..16 are loops with a
// constant bound, and any other n falls through to a plain loop.
func hashFixed(ptr unsafe.Pointer, n int, seed uint64) Hash {
	b := unsafe.Slice((*byte)(ptr), n)
	state := fnvOffsetBasis + seed
	switch n {
	case 1:
		state = fnvMix(state, b[0])
	case 2:
		state = fnvMix(state, b[0])
		state = fnvMix(state, b[1])
	case 3:
		state = fnvMix(state, b[0])
		state = fnvMix(state, b[1])
		state = fnvMix(state, b[2])
	case 4:
		state = fnvMix(state, b[0])
		state = fnvMix(state, b[1])
		state = fnvMix(state, b[2])
		state = fnvMix(state, b[3])
	case 5:
		state = fnvMix(state, b[0])
		state = fnvMix(state, b[1])
		state = fnvMix(state, b[2])
		state = fnvMix(state, b[3])
		state = fnvMix(state, b[4])
	case 6:
		state = fnvMix(state, b[0])
		state = fnvMix(state, b[1])
		state = fnvMix(state, b[2])
		state = fnvMix(state, b[3])
		state = fnvMix(state, b[4])
		state = fnvMix(state, b[5])
	case 7:
		state = fnvMix(state, b[0])
		state = fnvMix(state, b[1])
		state = fnvMix(state, b[2])
		state = fnvMix(state, b[3])
		state = fnvMix(state, b[4])
		state = fnvMix(state, b[5])
		state = fnvMix(state, b[6])
	case 8:
		for i := 0; i < 8; i++ {
			state = fnvMix(state, b[i])
		}
	case 9:
		for i := 0; i < 9; i++ {
			state = fnvMix(state, b[i])
		}
	case 10:
		for i := 0; i < 10; i++ {
			state = fnvMix(state, b[i])
		}
	case 11:
		for i := 0; i < 11; i++ {
			state = fnvMix(state, b[i])
		}
	case 12:
		for i := 0; i < 12; i++ {
			state = fnvMix(state, b[i])
		}
	case 13:
		for i := 0; i < 13; i++ {
			state = fnvMix(state, b[i])
		}
	case 14:
		for i := 0; i < 14; i++ {
			state = fnvMix(state, b[i])
		}
	case 15:
		for i := 0; i < 15; i++ {
			state = fnvMix(state, b[i])
		}
	case 16:
		for i := 0; i < 16; i++ {
			state = fnvMix(state, b[i])
		}
	default:
		for i := 0; i < n; i++ {
			state = fnvMix(state, b[i])
		}
	}
	return finishHash(state)
}

// Hash1 .. Hash16 are the fixed-length specializations of the default
// hasher, one per input size from 1 to 16 bytes; only Hash1 .. Hash7 run
// unrolled code (see hashFixed).
func Hash1(ptr unsafe.Pointer, seed uint64) Hash  { return hashFixed(ptr, 1, seed) }
func Hash2(ptr unsafe.Pointer, seed uint64) Hash  { return hashFixed(ptr, 2, seed) }
func Hash3(ptr unsafe.Pointer, seed uint64) Hash  { return hashFixed(ptr, 3, seed) }
func Hash4(ptr unsafe.Pointer, seed uint64) Hash  { return hashFixed(ptr, 4, seed) }
func Hash5(ptr unsafe.Pointer, seed uint64) Hash  { return hashFixed(ptr, 5, seed) }
func Hash6(ptr unsafe.Pointer, seed uint64) Hash  { return hashFixed(ptr, 6, seed) }
func Hash7(ptr unsafe.Pointer, seed uint64) Hash  { return hashFixed(ptr, 7, seed) }
func Hash8(ptr unsafe.Pointer, seed uint64) Hash  { return hashFixed(ptr, 8, seed) }
func Hash9(ptr unsafe.Pointer, seed uint64) Hash  { return hashFixed(ptr, 9, seed) }
func Hash10(ptr unsafe.Pointer, seed uint64) Hash { return hashFixed(ptr, 10, seed) }
func Hash11(ptr unsafe.Pointer, seed uint64) Hash { return hashFixed(ptr, 11, seed) }
func Hash12(ptr unsafe.Pointer, seed uint64) Hash { return hashFixed(ptr, 12, seed) }
func Hash13(ptr unsafe.Pointer, seed uint64) Hash { return hashFixed(ptr, 13, seed) }
func Hash14(ptr unsafe.Pointer, seed uint64) Hash { return hashFixed(ptr, 14, seed) }
func Hash15(ptr unsafe.Pointer, seed uint64) Hash { return hashFixed(ptr, 15, seed) }
func Hash16(ptr unsafe.Pointer, seed uint64) Hash { return hashFixed(ptr, 16, seed) }

// fixedHashers indexes Hash1..Hash16 by byte length for defaultHasherFor.
var fixedHashers = [17]func(unsafe.Pointer, uint64) Hash{
	nil,
	Hash1, Hash2, Hash3, Hash4, Hash5, Hash6, Hash7, Hash8,
	Hash9, Hash10, Hash11, Hash12, Hash13, Hash14, Hash15, Hash16,
}

// defaultHasherFor returns the default byte-wise hasher specialized for a
// fixed-size key of n bytes, falling back to the variable-length hasher for
// n outside 1..16 or n == 0.
func defaultHasherFor(n uintptr) func(unsafe.Pointer, uint64) Hash {
	if n >= 1 && n <= 16 {
		if f := fixedHashers[n]; f != nil {
			return f
		}
	}
	return func(ptr unsafe.Pointer, seed uint64) Hash {
		return hashFixed(ptr, int(n), seed)
	}
}
