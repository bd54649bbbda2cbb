// Package super reads and writes the filesystem superblock, which
// records the disk size and the location of the log region.
package super

import (
	"fmt"

	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-fslog/common"
)

// SUPERBLOCK is the block number holding the superblock (block 0 is
// reserved for the boot block).
const SUPERBLOCK common.Bnum = 1

const magic uint64 = 0x6673676f // "ogsf"

// FsSuper is the decoded superblock. The log region geometry is fixed
// at mkfs time and immutable afterwards.
type FsSuper struct {
	Size     uint64      // total blocks on the disk
	LogStart common.Bnum // first block of the log region
	LogLen   uint64      // blocks in the log region
}

func (sb *FsSuper) encode() disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt(magic)
	enc.PutInt(sb.Size)
	enc.PutInt(uint64(sb.LogStart))
	enc.PutInt(sb.LogLen)
	return enc.Finish()
}

// Init writes a fresh superblock describing a log of logLen blocks
// placed immediately after the superblock.
func Init(d disk.Disk, logLen uint64) *FsSuper {
	sb := &FsSuper{
		Size:     d.Size(),
		LogStart: SUPERBLOCK + 1,
		LogLen:   logLen,
	}
	d.Write(uint64(SUPERBLOCK), sb.encode())
	d.Barrier()
	return sb
}

// Load reads and validates the superblock from d.
func Load(d disk.Disk) (*FsSuper, error) {
	dec := marshal.NewDec(d.Read(uint64(SUPERBLOCK)))
	if dec.GetInt() != magic {
		return nil, fmt.Errorf("super: bad magic")
	}
	sb := &FsSuper{
		Size:     dec.GetInt(),
		LogStart: dec.GetInt(),
		LogLen:   dec.GetInt(),
	}
	if sb.LogLen < 3 {
		return nil, fmt.Errorf("super: log too small (%d blocks)", sb.LogLen)
	}
	if uint64(sb.LogStart)+sb.LogLen > sb.Size {
		return nil, fmt.Errorf("super: log region [%d, %d) outside disk of %d blocks",
			sb.LogStart, uint64(sb.LogStart)+sb.LogLen, sb.Size)
	}
	return sb, nil
}

// DataStart returns the first block past the log region, where ordinary
// filesystem blocks begin.
func (sb *FsSuper) DataStart() common.Bnum {
	return sb.LogStart + common.Bnum(sb.LogLen)
}
