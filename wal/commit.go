package wal

import (
	"math"

	"github.com/mit-pdos/go-fslog/common"
	"github.com/mit-pdos/go-fslog/util"
)

// Write registers bn in the current transaction. The caller must hold
// an admission from Begin and have already written the new content into
// bn's cache buffer; the content is not copied into the log until
// commit, so only the block's final state is ever logged. The block is
// pinned in the cache until the transaction installs.
//
// A typical use is:
//	b := bc.Bread(...)
//	modify b.Data
//	l.Write(b.Blkno)
//	bc.Brelse(b)
func (l *Walog) Write(bn common.Bnum) {
	l.mu.Lock()
	if uint64(len(l.targets)) >= l.capacity() {
		halt(CapacityExceeded, "transaction of %d blocks overflows %d slots",
			len(l.targets)+1, l.capacity())
	}
	if l.outstanding < 1 {
		halt(ProtocolViolation, "Write outside of an operation")
	}
	if bn > math.MaxUint32 {
		// header entries are 32-bit on disk
		halt(ProtocolViolation, "block number %d does not fit a header entry", bn)
	}
	var absorbed = false
	for _, tgt := range l.targets {
		if tgt == bn {
			// absorption: the slot is re-populated from the cache at
			// commit, so the existing entry already covers this write
			absorbed = true
			break
		}
	}
	if !absorbed {
		l.targets = append(l.targets, bn)
		l.bc.Pin(bn)
	}
	util.DPrintf(5, "Write: %d (count %d)\n", bn, len(l.targets))
	l.mu.Unlock()
}

// writeLog copies the current cache content of every registered block
// into its data slot.
func (l *Walog) writeLog(targets []common.Bnum) {
	for i, bn := range targets {
		b := l.bc.Bread(bn)
		blk := util.CloneByteSlice(b.Data)
		l.bc.Brelse(b)
		util.DPrintf(5, "writeLog: %d to slot %d\n", bn, i)
		l.d.Write(uint64(l.start)+LOGDATA+uint64(i), blk)
	}
}

// installTransaction copies every logged block from its data slot to
// its home location. It is driven by the on-disk header rather than the
// in-memory one so that crash recovery can run the same redo, and it is
// idempotent: re-running it with the same header and slots leaves the
// same home content.
func (l *Walog) installTransaction() {
	targets := l.readHdr()
	for i, bn := range targets {
		blk := l.d.Read(uint64(l.start) + LOGDATA + uint64(i))
		b := l.bc.Bread(bn)
		copy(b.Data, blk)
		l.bc.Bwrite(b)
		l.bc.Brelse(b)
		util.DPrintf(5, "installTransaction: slot %d to %d\n", i, bn)
	}
}

// commit persists and installs the current transaction. It runs without
// mu: committing=true keeps every admission (and therefore every
// mutation of targets) out until it finishes.
func (l *Walog) commit() {
	targets := l.targets
	if len(targets) == 0 {
		return
	}
	count := uint64(len(targets))
	util.DPrintf(1, "commit: %d blocks\n", count)

	l.writeLog(targets)
	l.writeChecksum(count)
	l.d.Barrier()
	if !l.checkChecksum(count) {
		halt(TransferIntegrityMismatch,
			"log data read back with digest != %#x", l.checksum)
	}
	l.writeHdr(targets) // the commit point
	l.d.Barrier()
	l.installTransaction()
	for _, bn := range targets {
		l.bc.Unpin(bn)
	}
	l.writeHdr(nil) // frees the log for the next transaction
	l.d.Barrier()
}
