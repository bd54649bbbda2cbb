// Package jrnl is the operation-level API over the write-ahead log.
//
// A filesystem operation begins an Op, reads and mutates block buffers
// through it, and commits. All writes between the log becoming empty
// and the next commit form one transaction: an Op's writes are not
// durable when Commit returns unless it was the last operation in the
// group, but they become durable atomically with the rest of its
// transaction. There is no abort: once a buffer is written through an
// Op it will be committed.
//
// A typical operation:
//
//	op := jrnl.Begin(log, bc)
//	b := op.Read(bn)
//	modify b.Data
//	op.Write(b)
//	op.Release(b)
//	op.Commit()
//
// The caller must release every buffer it holds before Commit.
package jrnl

import (
	"github.com/mit-pdos/go-fslog/buf"
	"github.com/mit-pdos/go-fslog/common"
	"github.com/mit-pdos/go-fslog/util"
	"github.com/mit-pdos/go-fslog/wal"
)

// MaxOpBlocks is the most blocks one Op may write.
const MaxOpBlocks uint64 = common.MAXOPBLOCKS

// Op is one admitted filesystem operation.
type Op struct {
	log *wal.Walog
	bc  *buf.Cache
}

// Begin admits a new operation, blocking while the log lacks space for
// it or a commit is running.
func Begin(log *wal.Walog, bc *buf.Cache) *Op {
	log.Begin()
	util.DPrintf(3, "Begin op\n")
	return &Op{
		log: log,
		bc:  bc,
	}
}

// Read acquires bn's buffer. The caller may mutate its Data and must
// either Write or Release it (Write does not release).
func (op *Op) Read(bn common.Bnum) *buf.Buf {
	return op.bc.Bread(bn)
}

// Write registers the buffer's block in the operation's transaction.
// The buffer's current content at commit time is what gets logged, so
// repeated writes to one block cost one log slot.
func (op *Op) Write(b *buf.Buf) {
	b.SetDirty()
	op.log.Write(b.Blkno)
}

// Release drops the buffer's lock.
func (op *Op) Release(b *buf.Buf) {
	op.bc.Brelse(b)
}

// Commit retires the operation. If it is the last one in the group this
// call performs the transaction's synchronous commit before returning.
func (op *Op) Commit() {
	util.DPrintf(3, "Commit op\n")
	op.log.End()
}
