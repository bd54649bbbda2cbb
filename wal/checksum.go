package wal

import (
	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"
)

// checksumBlocks digests a sequence of log data slots: every byte b at
// position j within its slot contributes (j+1)*b, positions restarting
// at each slot, and the sum is reduced modulo the block size.
//
// This is a weak additive checksum. It catches many accidental bit
// flips and truncations in the transfer of log data to disk, but it is
// not collision-resistant and offers nothing against an adversary; it
// is a transfer-integrity check only, never a security mechanism.
func checksumBlocks(blks []disk.Block) uint32 {
	var sum uint32
	for _, blk := range blks {
		for j, b := range blk {
			sum += uint32(j+1) * uint32(b)
		}
	}
	return sum % uint32(disk.BlockSize)
}

// checksumLog digests the first count data slots as they currently are
// on disk.
func (l *Walog) checksumLog(count uint64) uint32 {
	blks := make([]disk.Block, 0, count)
	for i := uint64(0); i < count; i++ {
		blks = append(blks, l.d.Read(uint64(l.start)+LOGDATA+i))
	}
	return checksumBlocks(blks)
}

// readChecksum reads the digest persisted in the checksum block: the
// first 4 bytes, least-significant first. The rest of the block is
// unused.
func (l *Walog) readChecksum() uint32 {
	dec := marshal.NewDec(l.d.Read(uint64(l.start) + LOGCHECKSUM))
	return dec.GetInt32()
}

// writeChecksum digests the first count data slots, persists the digest
// to the checksum block, and retains it in memory for verification.
func (l *Walog) writeChecksum(count uint64) {
	sum := l.checksumLog(count)
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt32(sum)
	l.d.Write(uint64(l.start)+LOGCHECKSUM, enc.Finish())
	l.checksum = sum
}

// checkChecksum re-reads the data slots and reports whether their
// digest still matches the one writeChecksum retained.
func (l *Walog) checkChecksum(count uint64) bool {
	return l.checksumLog(count) == l.checksum
}
