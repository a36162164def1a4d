package rhmap

import "unsafe"

// This file is the type-erased operation table. Every function takes an
// explicit *MapInfo descriptor and raw key/value pointers, dispatching
// hasher/equals through the descriptor's function pointers rather than
// inlining them, so that a caller who doesn't know K and V at compile time
// can still drive a map. This file and the typed API in map.go are both thin
// wrappers over the probing engine in rawmap.go; a single RawMap may be
// driven through either file interchangeably.

// Allocate constructs a new container with the given initial log2 capacity.
func Allocate(info *MapInfo, log2Capacity uintptr, allocator Allocator) (*RawMap, error) {
	return rawAllocateAt(info, log2Capacity, allocator)
}

// Insert stores key/value, returning the address of the stored value. If
// key was already present its value is overwritten in place and len is
// unchanged; otherwise len increases by one. May allocate if the load
// factor would be exceeded.
func Insert(m *RawMap, info *MapInfo, keyPtr, valPtr unsafe.Pointer) (unsafe.Pointer, error) {
	return rawInsert(m, info, keyPtr, valPtr)
}

// Add is the no-return-value sibling of Insert.
func Add(m *RawMap, info *MapInfo, keyPtr, valPtr unsafe.Pointer) error {
	return rawAdd(m, info, keyPtr, valPtr)
}

// Lookup returns the address of the stored value for key, or (nil, false)
// on a miss.
func Lookup(m *RawMap, info *MapInfo, keyPtr unsafe.Pointer) (unsafe.Pointer, bool) {
	return rawLookup(m, info, keyPtr)
}

// Exists reports whether key is present.
func Exists(m *RawMap, info *MapInfo, keyPtr unsafe.Pointer) bool {
	return rawExists(m, info, keyPtr)
}

// Erase removes key if present, returning whether it was present.
func Erase(m *RawMap, info *MapInfo, keyPtr unsafe.Pointer) bool {
	return rawErase(m, info, keyPtr)
}

// Clear removes every entry without releasing the allocation.
func Clear(m *RawMap, info *MapInfo) {
	rawClear(m, info)
}

// Reserve raises the capacity to at least max(n, 1<<MinLog2), rounded up to
// a power of two. On a never-allocated map it only allocates at MinLog2,
// whatever n is.
func Reserve(m *RawMap, info *MapInfo, n uintptr) error {
	return rawReserve(m, info, n)
}

// Grow doubles the map's capacity and reprobes every live entry.
func Grow(m *RawMap, info *MapInfo) error {
	return rawGrow(m, info)
}

// Shrink halves the map's capacity if the load factor after halving would
// stay within bounds; otherwise it is a no-op.
func Shrink(m *RawMap, info *MapInfo) error {
	return rawShrink(m, info)
}

// Free releases the map's current allocation, if any.
func Free(m *RawMap, info *MapInfo) error {
	return rawFree(m, info)
}

// Len returns the number of live entries.
func Len(m *RawMap) int { return m.Len() }

// Cap returns the current capacity (0 if never allocated).
func Cap(m *RawMap) uintptr { return m.Cap() }

// CollectStats reports the instantaneous load/tombstone ratios.
func CollectStats(m *RawMap, info *MapInfo) Stats {
	return rawStats(m, info)
}
