// Package fs ties the filesystem's storage layers together: it owns
// the superblock, the block cache, and the log for one mounted disk.
package fs

import (
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-fslog/buf"
	"github.com/mit-pdos/go-fslog/common"
	"github.com/mit-pdos/go-fslog/jrnl"
	"github.com/mit-pdos/go-fslog/super"
	"github.com/mit-pdos/go-fslog/wal"
)

type Fs struct {
	Super *super.FsSuper
	Cache *buf.Cache
	Log   *wal.Walog
}

// Mkfs initializes a fresh filesystem on d with the default log length
// and mounts it.
func Mkfs(d disk.Disk) *Fs {
	sb := super.Init(d, common.LOGBLOCKS)
	return mount(d, sb)
}

// Mount loads the superblock and brings the log up, running recovery
// before any operation is admitted.
func Mount(d disk.Disk) (*Fs, error) {
	sb, err := super.Load(d)
	if err != nil {
		return nil, err
	}
	return mount(d, sb), nil
}

func mount(d disk.Disk, sb *super.FsSuper) *Fs {
	bc := buf.MkCache(d, common.NBUF)
	return &Fs{
		Super: sb,
		Cache: bc,
		Log:   wal.MkLog(d, bc, sb),
	}
}

// Begin starts a filesystem operation.
func (fs *Fs) Begin() *jrnl.Op {
	return jrnl.Begin(fs.Log, fs.Cache)
}
