package wal

import (
	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-fslog/common"
)

// The header block describes the open or committed transaction: a
// 4-byte count followed by count 4-byte target block numbers, one per
// occupied data slot (slot i holds the new content of targets[i]),
// little-endian, padded to the block size. targets never contains a
// duplicate block number.

func encHdr(targets []common.Bnum) disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt32(uint32(len(targets)))
	for _, bn := range targets {
		enc.PutInt32(uint32(bn))
	}
	return enc.Finish()
}

func decHdr(blk disk.Block) []common.Bnum {
	dec := marshal.NewDec(blk)
	count := uint64(dec.GetInt32())
	targets := make([]common.Bnum, 0, count)
	for i := uint64(0); i < count; i++ {
		targets = append(targets, common.Bnum(dec.GetInt32()))
	}
	return targets
}

// readHdr loads the on-disk header.
func (l *Walog) readHdr() []common.Bnum {
	return decHdr(l.d.Read(uint64(l.start) + LOGHDR))
}

// writeHdr persists targets as the header block. Writing a non-empty
// header is the commit point of a transaction; writing an empty one
// truncates the log.
func (l *Walog) writeHdr(targets []common.Bnum) {
	l.d.Write(uint64(l.start)+LOGHDR, encHdr(targets))
}
