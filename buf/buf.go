// buf manages block-sized buffers cached from the disk.
package buf

import (
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-fslog/common"
)

// A Buf is a cached copy of one disk block. The cache hands out at most
// one Buf per block number; the holder has the block's lock and may
// mutate Data in place.
type Buf struct {
	Blkno common.Bnum
	Data  disk.Block

	dirty bool   // modified but not yet on disk
	refs  uint64 // holders that acquired the buf and have not released it
	pins  uint64 // transaction pins: logged but not yet installed
}

func (b *Buf) IsDirty() bool {
	return b.dirty
}

// SetDirty marks the buffer as modified so the cache will not evict it
// before it reaches the disk.
func (b *Buf) SetDirty() {
	b.dirty = true
}
