package rhmap

import (
	"container/list"
	"errors"
	"sync"
	"unsafe"
)

// Allocator is the abstract allocator capability a RawMap is constructed
// with. It receives both pointer and size on Free so that size-tracking
// allocators can reuse their bookkeeping. Implementations are not assumed
// reentrant with themselves from within a single operation.
type Allocator interface {
	// Alloc returns a zero-initialized region of at least size bytes,
	// aligned to align (always a power of two, always >= CacheLineSize for
	// this package's calls). It returns ErrOutOfMemory if the request
	// cannot be satisfied.
	Alloc(size, align uintptr) (unsafe.Pointer, error)

	// Free releases a region previously returned by Alloc, given the same
	// size that was requested for it. It returns an allocator-specific
	// error if the region cannot be released.
	Free(ptr unsafe.Pointer, size uintptr) error
}

// ErrBadFree is the allocator-specific failure SlabAllocator.Free returns
// when handed a pointer it did not produce.
var ErrBadFree = errors.New("rhmap: free of untracked pointer")

// slabBlock is one tracked allocation: raw is the over-allocation that
// guarantees room for alignment, ptr is the aligned address handed to
// callers.
type slabBlock struct {
	raw []byte
	ptr unsafe.Pointer
}

// SlabAllocator is the default Allocator: a segregated free-list allocator
// keyed by exact byte size, adapted from the size-classed free-list design
// documented by joshuapare/hivekit's alloc package (FastAllocator) and its
// bump-on-miss growth strategy (BumpAllocator.grow). Unlike hivekit's
// HBIN-bounded cell allocator, a RawMap only ever asks for a handful of
// distinct sizes over its lifetime (one per log2_capacity it has visited),
// so a single free list per exact size, rather than 10 coarse classes, is
// enough to make repeated grow/shrink cycles reuse prior allocations
// instead of round-tripping through the Go allocator every time.
type SlabAllocator struct {
	mu      sync.Mutex
	classes map[uintptr]*list.List // size -> free list of *slabBlock
	active  map[unsafe.Pointer]*slabBlock
}

// NewSlabAllocator returns a ready-to-use SlabAllocator.
func NewSlabAllocator() *SlabAllocator {
	return &SlabAllocator{
		classes: make(map[uintptr]*list.List),
		active:  make(map[unsafe.Pointer]*slabBlock),
	}
}

func (a *SlabAllocator) Alloc(size, align uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if free := a.classes[size]; free != nil && free.Len() > 0 {
		elem := free.Front()
		free.Remove(elem)
		block := elem.Value.(*slabBlock)
		clear(block.raw)
		a.active[block.ptr] = block
		return block.ptr, nil
	}

	raw := make([]byte, size+align)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	aligned := roundUp(base, align)
	offset := aligned - base
	ptr := unsafe.Add(unsafe.Pointer(unsafe.SliceData(raw)), offset)

	block := &slabBlock{raw: raw, ptr: ptr}
	a.active[ptr] = block
	return ptr, nil
}

func (a *SlabAllocator) Free(ptr unsafe.Pointer, size uintptr) error {
	if ptr == nil || size == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	block, ok := a.active[ptr]
	if !ok {
		return ErrBadFree
	}
	delete(a.active, ptr)

	free := a.classes[size]
	if free == nil {
		free = list.New()
		a.classes[size] = free
	}
	free.PushBack(block)
	return nil
}

// checkAligned panics if ptr is not aligned to align: a misaligned
// allocation means the allocator itself is broken, not something a caller
// can recover from.
func checkAligned(ptr unsafe.Pointer, align uintptr) {
	if uintptr(ptr)&(align-1) != 0 {
		panic("rhmap: allocator returned misaligned memory")
	}
}
