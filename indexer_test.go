package rhmap

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestOffsetOf_EpcOne(t *testing.T) {
	c := NewCellInfo(65, 1) // epc forced to 1
	require := c.ElementsPerCell()
	assert.Equal(t, uintptr(1), require)
	assert.Equal(t, uintptr(0), offsetOf(c, 0))
	assert.Equal(t, c.SizeOfCell(), offsetOf(c, 1))
	assert.Equal(t, 3*c.SizeOfCell(), offsetOf(c, 3))
}

func TestOffsetOf_EpcTwo(t *testing.T) {
	c := NewCellInfo(32, 8) // 64/32 == 2 elements per cache line
	assert.Equal(t, uintptr(2), c.ElementsPerCell())
	assert.Equal(t, uintptr(0), offsetOf(c, 0))
	assert.Equal(t, uintptr(32), offsetOf(c, 1))
	assert.Equal(t, c.SizeOfCell(), offsetOf(c, 2))
	assert.Equal(t, c.SizeOfCell()+32, offsetOf(c, 3))
}

func TestOffsetOf_GeneralCase(t *testing.T) {
	c := NewCellInfo(20, 4) // 64/20 == 3 elements per cell, non-pow2 epc
	assert.Equal(t, uintptr(3), c.ElementsPerCell())
	assert.Equal(t, uintptr(0), offsetOf(c, 0))
	assert.Equal(t, uintptr(20), offsetOf(c, 1))
	assert.Equal(t, uintptr(40), offsetOf(c, 2))
	assert.Equal(t, c.SizeOfCell(), offsetOf(c, 3))
	assert.Equal(t, c.SizeOfCell()+20, offsetOf(c, 4))
}

func TestStaticOffsetOf_AgreesWithOffsetOf(t *testing.T) {
	for _, size := range []uintptr{1, 2, 4, 8, 16, 20, 32, 65} {
		c := NewCellInfo(size, 1)
		for i := uintptr(0); i < 20; i++ {
			assert.Equal(t, offsetOf(c, i), staticOffsetOf(c, i), "size=%d i=%d", size, i)
		}
	}
}

func TestPtrAt_AddressesExpectedOffset(t *testing.T) {
	c := NewCellInfo(8, 8)
	var buf [64 * 4]byte
	base := unsafe.Pointer(&buf[0])
	p := ptrAt(base, c, 5)
	assert.Equal(t, uintptr(base)+offsetOf(c, 5), uintptr(p))
}

func TestIsPow2(t *testing.T) {
	assert.True(t, isPow2(1))
	assert.True(t, isPow2(2))
	assert.True(t, isPow2(8))
	assert.False(t, isPow2(0))
	assert.False(t, isPow2(3))
	assert.False(t, isPow2(6))
}

func TestTrailingZeros(t *testing.T) {
	assert.Equal(t, uintptr(0), trailingZeros(1))
	assert.Equal(t, uintptr(1), trailingZeros(2))
	assert.Equal(t, uintptr(3), trailingZeros(8))
}
