package quantity

import "unsafe"

// Is32ByteAligned reports whether ptr's address is a multiple of 32 bytes.
func Is32ByteAligned(ptr unsafe.Pointer) bool {
	return uintptr(ptr)&31 == 0
}

// Is64ByteAligned reports whether ptr's address is a multiple of 64 bytes.
// Chunk buffers are required to satisfy this so that AVX-512-width loads
// never straddle a cache-line boundary.
func Is64ByteAligned(ptr unsafe.Pointer) bool {
	return uintptr(ptr)&63 == 0
}
