package vecdb

import "encoding/binary"

// HeaderSize is the fixed byte length of a VecDb file header, preceding
// the raw row-major float32 matrix.
const HeaderSize = 16

// headerPadding is written into the header's reserved word. It has no
// semantic meaning; it exists purely so the on-disk layout stays 16 bytes
// even if a future version needs to widen one of the other fields.
const headerPadding = 0xFFFFFFFF

// header is the exact 16-byte, little-endian on-disk header:
// u32 version, u32 padding, u32 num_vectors, u32 num_dimensions.
type header struct {
	version       uint32
	padding       uint32
	numVectors    uint32
	numDimensions uint32
}

func (h header) marshal() [HeaderSize]byte {
	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], h.version)
	binary.LittleEndian.PutUint32(buf[4:8], h.padding)
	binary.LittleEndian.PutUint32(buf[8:12], h.numVectors)
	binary.LittleEndian.PutUint32(buf[12:16], h.numDimensions)
	return buf
}

func unmarshalHeader(buf []byte) header {
	return header{
		version:       binary.LittleEndian.Uint32(buf[0:4]),
		padding:       binary.LittleEndian.Uint32(buf[4:8]),
		numVectors:    binary.LittleEndian.Uint32(buf[8:12]),
		numDimensions: binary.LittleEndian.Uint32(buf[12:16]),
	}
}
