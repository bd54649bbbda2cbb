package jrnl_test

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-fslog/buf"
	"github.com/mit-pdos/go-fslog/common"
	"github.com/mit-pdos/go-fslog/jrnl"
	"github.com/mit-pdos/go-fslog/super"
	"github.com/mit-pdos/go-fslog/wal"
)

func TestSizeConstants(t *testing.T) {
	assert.Equal(t, common.MAXOPBLOCKS, jrnl.MaxOpBlocks)
	assert.LessOrEqual(t, 2+jrnl.MaxOpBlocks, common.LOGBLOCKS,
		"one operation must fit the log")
}

type testFs struct {
	d  disk.Disk
	sb *super.FsSuper
	bc *buf.Cache
	l  *wal.Walog
}

func mkTestFs(d disk.Disk) *testFs {
	sb, err := super.Load(d)
	if err != nil {
		sb = super.Init(d, common.LOGBLOCKS)
	}
	bc := buf.MkCache(d, common.NBUF)
	return &testFs{d: d, sb: sb, bc: bc, l: wal.MkLog(d, bc, sb)}
}

func (tfs *testFs) begin() *jrnl.Op {
	return jrnl.Begin(tfs.l, tfs.bc)
}

func fill(data disk.Block, val byte) {
	for i := range data {
		data[i] = val
	}
}

func TestOpWriteRead(t *testing.T) {
	tfs := mkTestFs(disk.NewMemDisk(1000))
	bn := tfs.sb.DataStart() + 3

	op := tfs.begin()
	b := op.Read(bn)
	fill(b.Data, 0x41)
	op.Write(b)
	op.Release(b)
	op.Commit()

	op = tfs.begin()
	b = op.Read(bn)
	assert.Equal(t, byte(0x41), b.Data[0])
	assert.Equal(t, byte(0x41), b.Data[disk.BlockSize-1])
	op.Release(b)
	op.Commit()
}

func TestOpSurvivesRemount(t *testing.T) {
	d := disk.NewMemDisk(1000)
	tfs := mkTestFs(d)
	bn := tfs.sb.DataStart() + 7

	op := tfs.begin()
	b := op.Read(bn)
	fill(b.Data, 0x55)
	op.Write(b)
	op.Release(b)
	op.Commit()

	// remount: a fresh cache and log over the same disk
	tfs = mkTestFs(d)
	op = tfs.begin()
	b = op.Read(bn)
	want := make(disk.Block, disk.BlockSize)
	fill(want, 0x55)
	if diff := cmp.Diff(want, b.Data); diff != "" {
		t.Errorf("block %d content mismatch (-want +got):\n%s", bn, diff)
	}
	op.Release(b)
	op.Commit()
}

func TestConcurrentOps(t *testing.T) {
	d := disk.NewMemDisk(1000)
	tfs := mkTestFs(d)

	const nthread = 6
	blocks := make([]disk.Block, nthread)

	var wg sync.WaitGroup
	wg.Add(nthread)
	for i := 0; i < nthread; i++ {
		i := i
		go func() {
			op := tfs.begin()
			bn := tfs.sb.DataStart() + common.Bnum(i)
			b := op.Read(bn)
			fill(b.Data, byte(i+1))
			op.Write(b)
			op.Release(b)
			op.Commit()
			blocks[i] = make(disk.Block, disk.BlockSize)
			fill(blocks[i], byte(i+1))
			wg.Done()
		}()
	}
	wg.Wait()

	// remount and check every operation's block
	tfs = mkTestFs(d)
	op := tfs.begin()
	for i := 0; i < nthread; i++ {
		bn := tfs.sb.DataStart() + common.Bnum(i)
		b := op.Read(bn)
		if diff := cmp.Diff(blocks[i], b.Data); diff != "" {
			t.Errorf("block %d content mismatch (-want +got):\n%s", bn, diff)
		}
		op.Release(b)
	}
	op.Commit()
}

func TestMultiBlockOp(t *testing.T) {
	tfs := mkTestFs(disk.NewMemDisk(1000))

	op := tfs.begin()
	for i := uint64(0); i < jrnl.MaxOpBlocks; i++ {
		b := op.Read(tfs.sb.DataStart() + i)
		fill(b.Data, byte(i))
		op.Write(b)
		op.Release(b)
	}
	op.Commit()

	for i := uint64(0); i < jrnl.MaxOpBlocks; i++ {
		blk := tfs.d.Read(uint64(tfs.sb.DataStart() + i))
		assert.Equal(t, byte(i), blk[0], "block %d", i)
	}
}
