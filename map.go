package rhmap

import (
	"iter"
	"unsafe"
)

// Map is the typed generic sugar over RawMap/MapInfo. It calls the same
// probing engine as the type-erased API in erased.go with a MapInfo built
// by NewMapInfoFor, so hashing, key comparison and slot offsets go through
// the descriptor's function pointers and offsetOf; none of them is
// specialized or inlined for K and V. It operates on the exact same
// in-memory layout the type-erased API does;
// a *RawMap constructed via one API can be driven through the other
// interchangeably, demonstrated by the interop tests in map_test.go.
type Map[K comparable, V any] struct {
	raw  RawMap
	info MapInfo
}

// NewMap returns an empty Map using a fresh SlabAllocator and the default
// byte-wise hasher for K.
func NewMap[K comparable, V any]() *Map[K, V] {
	return NewMapWithAllocator[K, V](NewSlabAllocator())
}

// NewMapWithAllocator is like NewMap but with a caller-supplied allocator
// capability.
func NewMapWithAllocator[K comparable, V any](allocator Allocator) *Map[K, V] {
	return &Map[K, V]{
		raw:  RawMap{allocator: allocator},
		info: NewMapInfoFor[K, V](),
	}
}

// Insert stores key/value, returning a pointer to the stored value. If key
// was already present, its value is overwritten in place.
func (m *Map[K, V]) Insert(key K, value V) (*V, error) {
	addr, err := rawInsert(&m.raw, &m.info, unsafe.Pointer(&key), unsafe.Pointer(&value))
	if err != nil {
		return nil, err
	}
	return (*V)(addr), nil
}

// Add is the no-return-value sibling of Insert.
func (m *Map[K, V]) Add(key K, value V) error {
	return rawAdd(&m.raw, &m.info, unsafe.Pointer(&key), unsafe.Pointer(&value))
}

// Get returns the value stored for key, or (nil, false) on a miss.
func (m *Map[K, V]) Get(key K) (*V, bool) {
	addr, ok := rawLookup(&m.raw, &m.info, unsafe.Pointer(&key))
	if !ok {
		return nil, false
	}
	return (*V)(addr), true
}

// Exists reports whether key is present.
func (m *Map[K, V]) Exists(key K) bool {
	return rawExists(&m.raw, &m.info, unsafe.Pointer(&key))
}

// Erase removes key if present, returning whether it was present.
func (m *Map[K, V]) Erase(key K) bool {
	return rawErase(&m.raw, &m.info, unsafe.Pointer(&key))
}

// Clear removes every entry without releasing the allocation.
func (m *Map[K, V]) Clear() {
	rawClear(&m.raw, &m.info)
}

// Reserve raises the capacity to at least max(n, 1<<MinLog2), rounded up to
// a power of two. On a never-allocated map it only allocates at MinLog2,
// whatever n is.
func (m *Map[K, V]) Reserve(n uintptr) error {
	return rawReserve(&m.raw, &m.info, n)
}

// Grow doubles the map's capacity and reprobes every live entry.
func (m *Map[K, V]) Grow() error {
	return rawGrow(&m.raw, &m.info)
}

// Shrink halves the map's capacity if doing so would stay within the load
// factor bound; otherwise it is a no-op.
func (m *Map[K, V]) Shrink() error {
	return rawShrink(&m.raw, &m.info)
}

// Close releases the map's current allocation. The map may be reused
// afterward; it will lazily reallocate on the next Insert/Add/Reserve.
func (m *Map[K, V]) Close() error {
	return rawFree(&m.raw, &m.info)
}

// Len returns the number of live entries.
func (m *Map[K, V]) Len() int { return m.raw.Len() }

// Cap returns the current capacity (0 if never allocated).
func (m *Map[K, V]) Cap() uintptr { return m.raw.Cap() }

// Stats reports the instantaneous load/tombstone ratios.
func (m *Map[K, V]) Stats() Stats {
	return rawStats(&m.raw, &m.info)
}

// Raw exposes the underlying RawMap/MapInfo pair so a caller can switch to
// the type-erased API (erased.go) against the exact same storage.
func (m *Map[K, V]) Raw() (*RawMap, *MapInfo) {
	return &m.raw, &m.info
}

// All iterates every live key/value pair in unspecified order, skipping
// tombstoned and empty slots.
func (m *Map[K, V]) All() iter.Seq2[K, *V] {
	return func(yield func(K, *V) bool) {
		if m.raw.data == 0 {
			return
		}
		v := makeView(&m.raw, &m.info)
		cap := m.raw.Cap()
		for i := uintptr(0); i < cap; i++ {
			if !v.hashAt(i).valid() {
				continue
			}
			key := *(*K)(v.keyAt(i))
			val := (*V)(v.valAt(i))
			if !yield(key, val) {
				return
			}
		}
	}
}
