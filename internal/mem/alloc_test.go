package mem

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestAllocAligned(t *testing.T) {
	sizes := []int{1, 10, 63, 64, 65, 100, 1024}

	for _, size := range sizes {
		buf := AllocAligned(size)
		assert.Len(t, buf, size)

		addr := uintptr(unsafe.Pointer(&buf[0]))
		assert.Equal(t, uintptr(0), addr%Alignment, "Address %d should be aligned to %d for size %d", addr, Alignment, size)
	}

	assert.Nil(t, AllocAligned(0))
	assert.Nil(t, AllocAligned(-1))
}

func TestAllocAlignedUint32(t *testing.T) {
	sizes := []int{1, 2, 16, 17, 128, 4096}

	for _, n := range sizes {
		buf := AllocAlignedUint32(n)
		assert.Len(t, buf, n)

		addr := uintptr(unsafe.Pointer(&buf[0]))
		assert.Equal(t, uintptr(0), addr%Alignment, "Address %d should be aligned to %d for n %d", addr, Alignment, n)

		for i, v := range buf {
			if v != 0 {
				t.Fatalf("slot %d not zeroed: %d", i, v)
			}
		}
		buf[n-1] = 0xFFFFFFFF // last element is writable
	}

	assert.Nil(t, AllocAlignedUint32(0))
	assert.Nil(t, AllocAlignedUint32(-3))
}
