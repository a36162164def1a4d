package rhmap

import (
	"math/bits"
	"unsafe"
)

// offsetOf returns the byte offset of logical slot i within a cell-packed
// array of the given descriptor, measured from the array's base address.
// It specializes on elements-per-cell: epc==1 collapses to a flat
// multiply, epc==2 uses a shift/mask split, and the general case falls
// back to division/modulo (the divisor is a per-descriptor constant, so
// real compilers fold it into a multiply-by-reciprocal).
func offsetOf(c CellInfo, i uintptr) uintptr {
	switch c.elementsPerCell {
	case 1:
		return i * c.sizeOfCell
	case 2:
		cell := i >> 1
		slot := i & 1
		return cell*c.sizeOfCell + slot*c.sizeOfType
	default:
		cell := i / c.elementsPerCell
		slot := i % c.elementsPerCell
		return cell*c.sizeOfCell + slot*c.sizeOfType
	}
}

// ptrAt returns a pointer to logical slot i within a cell-packed array
// starting at base.
func ptrAt(base unsafe.Pointer, c CellInfo, i uintptr) unsafe.Pointer {
	return unsafe.Add(base, offsetOf(c, i))
}

// staticOffsetOf is a specialized sibling of offsetOf that returns the same
// offsets: when no internal padding exists between cell and element
// (size_of_cell == epc*size_of_type) it collapses to a flat B[i] index, and
// a power-of-two epc collapses to shift+mask. The probing engine and Map
// use offsetOf; staticOffsetOf is not called by them.
func staticOffsetOf(c CellInfo, i uintptr) uintptr {
	if c.sizeOfCell == c.elementsPerCell*c.sizeOfType {
		return i * c.sizeOfType
	}
	if isPow2(c.elementsPerCell) {
		shift := trailingZeros(c.elementsPerCell)
		cell := i >> shift
		slot := i & (c.elementsPerCell - 1)
		return cell*c.sizeOfCell + slot*c.sizeOfType
	}
	return offsetOf(c, i)
}

func isPow2(v uintptr) bool {
	return v != 0 && v&(v-1) == 0
}

func trailingZeros(v uintptr) uintptr {
	return uintptr(bits.TrailingZeros(uint(v)))
}
