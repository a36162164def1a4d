package rhmap

import (
	"errors"
	"fmt"
)

// ErrOutOfMemory is returned when the allocator refuses a request, or when
// a requested capacity's log2 would exceed the 63 bits the tagged base
// pointer can encode.
var ErrOutOfMemory = errors.New("rhmap: out of memory")

// errCapacityOverflow wraps ErrOutOfMemory for the specific case of a
// log2_capacity that would not fit in the tagged pointer's six low bits.
func errCapacityOverflow(log2Capacity uintptr) error {
	return fmt.Errorf("rhmap: requested log2 capacity %d exceeds maximum of 63: %w", log2Capacity, ErrOutOfMemory)
}

// errAllocFailed wraps an allocator-specific failure returned from Alloc or
// Free.
func errAllocFailed(op string, cause error) error {
	return fmt.Errorf("rhmap: allocator failed during %s: %w", op, cause)
}
