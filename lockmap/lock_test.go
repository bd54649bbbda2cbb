package lockmap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-fslog/common"
)

func TestAcquireRelease(t *testing.T) {
	lmap := MkLockMap()
	lmap.Acquire(7)
	lmap.Release(7)
	lmap.Acquire(7)
	lmap.Release(7)
}

func TestIndependentBlocks(t *testing.T) {
	lmap := MkLockMap()
	// same shard (43 apart), different blocks: no interference
	lmap.Acquire(1)
	lmap.Acquire(1 + NSHARD)
	lmap.Release(1 + NSHARD)
	lmap.Release(1)
}

func TestMutualExclusion(t *testing.T) {
	lmap := MkLockMap()
	const nthread = 20
	const nincrement = 100
	var counts [4]uint64

	var wg sync.WaitGroup
	wg.Add(nthread)
	for i := 0; i < nthread; i++ {
		bn := common.Bnum(i % 4)
		go func() {
			for j := 0; j < nincrement; j++ {
				lmap.Acquire(bn)
				counts[bn] += 1
				lmap.Release(bn)
			}
			wg.Done()
		}()
	}
	wg.Wait()

	var total uint64
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, uint64(nthread*nincrement), total)
}
