package rhmap

import (
	"testing"
	"unsafe"
)

// ptrOf returns an unsafe.Pointer to a heap-escaped copy of v, for driving
// the type-erased API (erased.go/rawmap.go) with ordinary Go values in
// tests without hand-rolling unsafe plumbing at every call site.
func ptrOf[T any](v T) unsafe.Pointer {
	return unsafe.Pointer(&v)
}

// addOK inserts k/v via rawAdd and reports whether it succeeded, failing
// the test immediately on an allocator error (which should never happen
// against a SlabAllocator in these tests).
func addOK[K, V any](t *testing.T, m *RawMap, info *MapInfo, k K, v V) bool {
	t.Helper()
	if err := rawAdd(m, info, ptrOf(k), ptrOf(v)); err != nil {
		t.Fatalf("rawAdd failed: %v", err)
		return false
	}
	return true
}
