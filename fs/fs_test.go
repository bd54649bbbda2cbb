package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tchajed/goose/machine/disk"
)

func TestMountFreshDiskFails(t *testing.T) {
	_, err := Mount(disk.NewMemDisk(100))
	assert.Error(t, err, "an unformatted disk has no superblock")
}

func TestMkfsMountRoundTrip(t *testing.T) {
	d := disk.NewMemDisk(1000)
	fs := Mkfs(d)
	bn := fs.Super.DataStart()

	op := fs.Begin()
	b := op.Read(bn)
	b.Data[0] = 0x42
	op.Write(b)
	op.Release(b)
	op.Commit()

	fs2, err := Mount(d)
	assert.NoError(t, err)
	assert.Equal(t, fs.Super, fs2.Super)

	op = fs2.Begin()
	b = op.Read(bn)
	assert.Equal(t, byte(0x42), b.Data[0])
	op.Release(b)
	op.Commit()
}
