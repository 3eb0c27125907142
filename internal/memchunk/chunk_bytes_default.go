//go:build !power_of_two_chunks

package memchunk

// ChunkBytes is the size, in bytes, of one fixed-stride memory chunk. This
// default is a multiple (2716x) of the least common multiple of a handful
// of common embedding dimensionalities (128, 384, 768, 1024, 1536) times 4
// bytes, and therefore of 64 bytes too, so that those widths pack a chunk
// without wasting a partial row at the tail.
const ChunkBytes = 33_374_208
