package rhmap

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestFastHashBytes_DeterministicAndSeedSensitive(t *testing.T) {
	a := FastHashBytes([]byte("payload"), 0)
	b := FastHashBytes([]byte("payload"), 0)
	assert.Equal(t, a, b)

	c := FastHashBytes([]byte("payload"), 1)
	assert.NotEqual(t, a, c)
}

func TestFastHashString_MatchesFastHashBytes(t *testing.T) {
	assert.Equal(t, FastHashBytes([]byte("xyz"), 3), FastHashString("xyz", 3))
}

func TestFastHash_NeverTombstoneNeverZero(t *testing.T) {
	for _, s := range []string{"", "a", "longer input string", "\x00\x01\x02"} {
		h := FastHashString(s, 0)
		assert.False(t, h.tombstone())
		assert.NotZero(t, uint64(h))
	}
}

// TestFixedBlockKey_FromString-style determinism/uniqueness check, adapted
// for WideKey: same text always derives the same key, and distinct texts
// derive (overwhelmingly likely) distinct keys.
func TestDeriveWideKey_DeterministicAndDistinct(t *testing.T) {
	k1 := DeriveWideKey("hello")
	k2 := DeriveWideKey("hello")
	assert.Equal(t, k1, k2)

	k3 := DeriveWideKey("world")
	assert.NotEqual(t, k1, k3)
}

func TestDeriveWideKey_HalvesAreNotTriviallyRelated(t *testing.T) {
	k := DeriveWideKey("some reasonably long input text")
	lo := k[0:8]
	hi := k[8:16]
	assert.NotEqual(t, lo, hi)
}

func TestHashWideKey_FoldsBothHalves(t *testing.T) {
	k := DeriveWideKey("composite key input")
	h1 := HashWideKey(unsafe.Pointer(&k), 0)
	h2 := HashWideKey(unsafe.Pointer(&k), 0)
	assert.Equal(t, h1, h2)
	assert.False(t, h1.tombstone())

	hSeeded := HashWideKey(unsafe.Pointer(&k), 12345)
	assert.NotEqual(t, h1, hSeeded)
}

func TestWideKey_UsableAsRawMapKey(t *testing.T) {
	info := NewMapInfo(NewCellInfo(16, 1), CellInfoOf[int](), HashWideKey, func(a, b unsafe.Pointer) bool {
		return *(*WideKey)(a) == *(*WideKey)(b)
	})
	m := NewRawMap(NewSlabAllocator())

	k1 := DeriveWideKey("first")
	k2 := DeriveWideKey("second")
	v1, v2 := 1, 2

	_, err := rawInsert(m, &info, unsafe.Pointer(&k1), unsafe.Pointer(&v1))
	assert.NoError(t, err)
	_, err = rawInsert(m, &info, unsafe.Pointer(&k2), unsafe.Pointer(&v2))
	assert.NoError(t, err)

	addr, ok := rawLookup(m, &info, unsafe.Pointer(&k1))
	assert.True(t, ok)
	assert.Equal(t, 1, *(*int)(addr))
}
