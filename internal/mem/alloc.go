package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of every buffer returned by this package.
const Alignment = 64

// AllocAligned allocates a byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size)]
}

// AllocAlignedUint32 allocates a zeroed uint32 slice of n elements with 64-byte alignment.
func AllocAlignedUint32(n int) []uint32 {
	if n <= 0 {
		return nil
	}
	b := AllocAligned(n * 4)
	ptr := unsafe.Pointer(&b[0])          //nolint:gosec // unsafe is required for memory alignment
	return unsafe.Slice((*uint32)(ptr), n) //nolint:gosec // unsafe is required for memory alignment
}
