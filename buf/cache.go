package buf

import (
	"sync"

	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-fslog/common"
	"github.com/mit-pdos/go-fslog/lockmap"
	"github.com/mit-pdos/go-fslog/util"
)

const NSHARD uint64 = 13

type cshard struct {
	mu   *sync.Mutex
	bufs map[common.Bnum]*Buf
	max  uint64 // soft cap on this shard's buffers
}

func mkCshard(max uint64) *cshard {
	return &cshard{
		mu:   new(sync.Mutex),
		bufs: make(map[common.Bnum]*Buf),
		max:  max,
	}
}

// Cache is the block buffer cache: a sharded map from block number to
// buffer, with a sleeping lock per block. Bread returns the block
// locked; the caller must Brelse it. A block stays cached while it is
// held, dirty, or pinned; Pin is used by the log to keep a block
// resident from the moment it is registered in a transaction until it
// has been installed to its home location.
type Cache struct {
	d      disk.Disk
	locks  *lockmap.LockMap
	shards []*cshard
}

func MkCache(d disk.Disk, max uint64) *Cache {
	var shards []*cshard
	for i := uint64(0); i < NSHARD; i++ {
		shards = append(shards, mkCshard(util.RoundUp(max, NSHARD)))
	}
	return &Cache{
		d:      d,
		locks:  lockmap.MkLockMap(),
		shards: shards,
	}
}

func (c *Cache) shard(bn common.Bnum) *cshard {
	return c.shards[bn%NSHARD]
}

// evict drops clean, unheld, unpinned buffers until the shard is under
// its cap or no victim remains. Caller holds the shard lock.
func (shard *cshard) evict() {
	for uint64(len(shard.bufs)) >= shard.max {
		victim := common.NULLBNUM
		found := false
		for bn, b := range shard.bufs {
			if b.refs == 0 && b.pins == 0 && !b.dirty {
				victim = bn
				found = true
				break
			}
		}
		if !found {
			return
		}
		util.DPrintf(5, "cache: evict %d\n", victim)
		delete(shard.bufs, victim)
	}
}

// Bread returns the buffer for bn with its contents and the block's
// lock. Reads the disk on a cache miss.
func (c *Cache) Bread(bn common.Bnum) *Buf {
	c.locks.Acquire(bn)
	shard := c.shard(bn)
	shard.mu.Lock()
	b, ok := shard.bufs[bn]
	if !ok {
		shard.evict()
		b = &Buf{
			Blkno: bn,
			Data:  c.d.Read(uint64(bn)),
		}
		shard.bufs[bn] = b
	}
	b.refs += 1
	shard.mu.Unlock()
	return b
}

// Bwrite writes the buffer's contents through to the disk. The caller
// must hold the block (from Bread). Durability is up to the caller: the
// write reaches the disk's queue synchronously but is only guaranteed
// durable after a barrier.
func (c *Cache) Bwrite(b *Buf) {
	c.d.Write(uint64(b.Blkno), b.Data)
	shard := c.shard(b.Blkno)
	shard.mu.Lock()
	b.dirty = false
	shard.mu.Unlock()
}

// Brelse releases the block's lock.
func (c *Cache) Brelse(b *Buf) {
	shard := c.shard(b.Blkno)
	shard.mu.Lock()
	b.refs -= 1
	shard.mu.Unlock()
	c.locks.Release(b.Blkno)
}

// Pin keeps bn resident in the cache until the matching Unpin. The
// block must currently be cached (the pinner has read or written it).
func (c *Cache) Pin(bn common.Bnum) {
	shard := c.shard(bn)
	shard.mu.Lock()
	b, ok := shard.bufs[bn]
	if !ok {
		panic("Pin: block not cached")
	}
	b.pins += 1
	shard.mu.Unlock()
}

func (c *Cache) Unpin(bn common.Bnum) {
	shard := c.shard(bn)
	shard.mu.Lock()
	b, ok := shard.bufs[bn]
	if !ok || b.pins == 0 {
		panic("Unpin: block not pinned")
	}
	b.pins -= 1
	shard.mu.Unlock()
}

// lookup reports whether bn is resident, without touching the disk or
// the block's lock.
func (c *Cache) lookup(bn common.Bnum) *Buf {
	shard := c.shard(bn)
	shard.mu.Lock()
	b := shard.bufs[bn]
	shard.mu.Unlock()
	return b
}
