package wal

import (
	"sync"

	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-fslog/buf"
	"github.com/mit-pdos/go-fslog/common"
	"github.com/mit-pdos/go-fslog/super"
	"github.com/mit-pdos/go-fslog/util"
)

// Walog is the state of the log: the region geometry, admission
// bookkeeping, and the in-memory header of the open transaction. There
// is one Walog per mounted disk and it lives for the whole mount; it is
// owned by whoever mounted the filesystem and passed explicitly to
// every log operation.
//
// mu guards outstanding, committing, targets, and checksum. The commit
// sequence itself runs with mu released (it does blocking I/O);
// committing=true keeps admissions out for its duration.
type Walog struct {
	mu   *sync.Mutex
	cond *sync.Cond

	d     disk.Disk
	bc    *buf.Cache
	start common.Bnum // first block of the log region
	size  uint64      // blocks in the region, including checksum and header

	outstanding uint64 // operations admitted but not yet ended
	committing  bool
	targets     []common.Bnum // header of the open transaction
	checksum    uint32        // digest retained by the last writeChecksum
}

// capacity returns the number of data slots.
func (l *Walog) capacity() uint64 {
	return l.size - 2
}

// MkLog initializes logging for the region sb describes and runs
// recovery. It must complete before any operation begins.
func MkLog(d disk.Disk, bc *buf.Cache, sb *super.FsSuper) *Walog {
	if sb.LogLen < 3 || sb.LogLen-2 > HDRTARGETS {
		panic("MkLog: bad log size")
	}
	mu := new(sync.Mutex)
	l := &Walog{
		mu:    mu,
		cond:  sync.NewCond(mu),
		d:     d,
		bc:    bc,
		start: sb.LogStart,
		size:  sb.LogLen,
	}
	util.DPrintf(1, "MkLog: log [%d, %d)\n", l.start, uint64(l.start)+l.size)
	l.recoverLog()
	return l
}

// Begin admits one operation into the current transaction. It blocks
// while a commit is running, or while admitting the caller could leave
// an in-flight operation without log space (each admitted operation
// reserves MAXOPBLOCKS slots in the worst case). There is no timeout:
// waiting here is the log's backpressure.
func (l *Walog) Begin() {
	l.mu.Lock()
	for {
		if l.committing {
			l.cond.Wait()
		} else if uint64(len(l.targets))+(l.outstanding+1)*common.MAXOPBLOCKS > l.capacity() {
			// this operation might exhaust the log; wait for a commit
			l.cond.Wait()
		} else {
			l.outstanding += 1
			break
		}
	}
	l.mu.Unlock()
}

// End retires one operation. The last operation to end becomes the sole
// committer of everything registered since the log was last empty; it
// runs the commit without holding mu and wakes every waiter afterward.
// Wakeups are broadcast: each waiter re-checks its own condition.
func (l *Walog) End() {
	l.mu.Lock()
	if l.outstanding == 0 {
		halt(ProtocolViolation, "End with no operation outstanding")
	}
	if l.committing {
		halt(ProtocolViolation, "End while commit in progress")
	}
	l.outstanding -= 1
	var doCommit = false
	if l.outstanding == 0 {
		doCommit = true
		l.committing = true
	} else {
		// a blocked Begin may fit now that this operation's
		// reservation is gone
		l.cond.Broadcast()
	}
	l.mu.Unlock()

	if doCommit {
		l.commit()
		l.mu.Lock()
		l.targets = nil
		l.committing = false
		l.cond.Broadcast()
		l.mu.Unlock()
	}
}
