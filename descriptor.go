package rhmap

import "unsafe"

// MapInfo is the runtime descriptor that drives the type-erased path: it
// pairs the key and value CellInfo with function-pointer hasher/equals
// implementations, so a single probing engine (rawmap.go) can serve both the
// compile-time-specialized typed API and a fully dynamic caller.
type MapInfo struct {
	Key   CellInfo
	Value CellInfo

	// Hasher computes the slot tag for the key at keyPtr with the given
	// seed. It MUST mask the top bit and coerce a zero result to 1 (see
	// finishHash); the probing engine assumes every hasher honors that
	// contract.
	Hasher func(keyPtr unsafe.Pointer, seed uint64) Hash

	// Equals reports whether the keys at a and b are identical.
	Equals func(a, b unsafe.Pointer) bool
}

// NewMapInfo builds a descriptor from explicit key/value sizes and
// comparison/hash functions, for the fully type-erased path.
func NewMapInfo(key, value CellInfo, hasher func(unsafe.Pointer, uint64) Hash, equals func(unsafe.Pointer, unsafe.Pointer) bool) MapInfo {
	return MapInfo{Key: key, Value: value, Hasher: hasher, Equals: equals}
}

// NewMapInfoFor derives a descriptor for statically known K, V using the
// default byte-wise hasher and Go's == on K as the equality check. This is what the
// typed API (map.go) uses to bootstrap a MapInfo for comparable, non-pointer
// key types.
func NewMapInfoFor[K comparable, V any]() MapInfo {
	keyInfo := CellInfoOf[K]()
	valInfo := CellInfoOf[V]()
	hasher := defaultHasherFor(keyInfo.sizeOfType)
	equals := func(a, b unsafe.Pointer) bool {
		return *(*K)(a) == *(*K)(b)
	}
	return MapInfo{Key: keyInfo, Value: valInfo, Hasher: hasher, Equals: equals}
}
