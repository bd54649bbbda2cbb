// lockmap is a sharded map of per-block sleeping locks.
//
// The API behaves as if there were one lock per block number:
// LockMap.Acquire(bn) takes the lock for bn and LockMap.Release(bn)
// drops it. Lock state is only materialized while a lock is held or
// contended; shard i tracks every bn with bn % NSHARD == i, so
// acquiring a lock only synchronizes with threads touching the same
// shard.
package lockmap

import (
	"sync"

	"github.com/mit-pdos/go-fslog/common"
)

type lockState struct {
	held    bool
	cond    *sync.Cond
	waiters uint64
}

type lockShard struct {
	mu    *sync.Mutex
	state map[common.Bnum]*lockState
}

func mkLockShard() *lockShard {
	mu := new(sync.Mutex)
	a := &lockShard{
		mu:    mu,
		state: make(map[common.Bnum]*lockState),
	}
	return a
}

func (shard *lockShard) acquire(bn common.Bnum) {
	shard.mu.Lock()
	for {
		state, ok := shard.state[bn]
		if !ok {
			state = &lockState{
				held: false,
				cond: sync.NewCond(shard.mu),
			}
			shard.state[bn] = state
		}
		if !state.held {
			state.held = true
			break
		}
		state.waiters += 1
		state.cond.Wait()
		// the lock may have been stolen while we were waking up;
		// re-check from scratch
		if state2, ok := shard.state[bn]; ok {
			state2.waiters -= 1
		}
	}
	shard.mu.Unlock()
}

func (shard *lockShard) release(bn common.Bnum) {
	shard.mu.Lock()
	state := shard.state[bn]
	state.held = false
	if state.waiters > 0 {
		state.cond.Signal()
	} else {
		delete(shard.state, bn)
	}
	shard.mu.Unlock()
}

const NSHARD uint64 = 43

// LockMap gives every block number its own lock.
type LockMap struct {
	shards []*lockShard
}

func MkLockMap() *LockMap {
	var shards []*lockShard
	for i := uint64(0); i < NSHARD; i++ {
		shards = append(shards, mkLockShard())
	}
	a := &LockMap{
		shards: shards,
	}
	return a
}

func (lmap *LockMap) Acquire(bn common.Bnum) {
	lmap.shards[bn%NSHARD].acquire(bn)
}

func (lmap *LockMap) Release(bn common.Bnum) {
	lmap.shards[bn%NSHARD].release(bn)
}
