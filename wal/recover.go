package wal

import (
	"github.com/mit-pdos/go-fslog/util"
)

// recoverLog completes an interrupted commit, if the log holds one. It
// runs once from MkLog, before any operation is admitted.
//
// The persisted digest is verified over exactly the data slots the
// on-disk header names. On a match the transaction was durably
// committed but possibly not installed, so it is installed (install is
// idempotent, so re-running a completed install is harmless) and the
// header is cleared. On a mismatch nothing is touched: leaving a stale
// log in place is safe, replaying unverified data is not.
func (l *Walog) recoverLog() {
	targets := l.readHdr()
	if len(targets) == 0 {
		util.DPrintf(2, "recover: log empty\n")
		return
	}
	stored := l.readChecksum()
	computed := l.checksumLog(uint64(len(targets)))
	if stored != computed {
		util.DPrintf(1, "recover: log checksum mismatch (disk %#x, computed %#x); leaving log in place\n",
			stored, computed)
		return
	}
	util.DPrintf(1, "recover: log checksum match; installing %d blocks\n",
		len(targets))
	l.installTransaction()
	l.writeHdr(nil)
	l.d.Barrier()
}
