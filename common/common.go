package common

// Bnum is a disk block number.
type Bnum = uint64

const NULLBNUM Bnum = 0

const (
	// MAXOPBLOCKS is the most blocks any single operation may write.
	// Admission control reserves this much log space for every
	// in-flight operation.
	MAXOPBLOCKS uint64 = 10

	// LOGBLOCKS is the default length of the on-disk log region in
	// blocks: one checksum block, one header block, and the data slots.
	LOGBLOCKS uint64 = 30

	// NBUF is the default number of buffers the block cache holds.
	NBUF uint64 = MAXOPBLOCKS * 3
)
