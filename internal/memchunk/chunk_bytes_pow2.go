//go:build power_of_two_chunks

package memchunk

// ChunkBytes is the size, in bytes, of one fixed-stride memory chunk. Built
// with the power_of_two_chunks tag, chunks round up to the next power of
// two (32 MiB) instead of the dimension-LCM default, trading some packing
// efficiency for address-math simplicity on allocators that prefer
// power-of-two regions.
const ChunkBytes = 33_554_432
