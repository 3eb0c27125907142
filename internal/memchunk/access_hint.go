package memchunk

// AccessHint tells a newly allocated chunk how it expects to be read
// after it's filled, so the right madvise(2) hint can be applied. It has
// no effect on writes, which always go through the insert path.
type AccessHint int

const (
	// AccessHintNormal applies no special hint (MADV_WILLNEED, matching
	// the chunk's existing "warm it up, it's about to be written" advice).
	AccessHintNormal AccessHint = iota
	// AccessHintSequential hints that reads will scan the chunk start to
	// end, as a brute-force kernel scanning every row does.
	AccessHintSequential
	// AccessHintRandom hints that reads will hit scattered rows, as an
	// ID-keyed lookup does.
	AccessHintRandom
)
