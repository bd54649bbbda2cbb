//  wal implements write-ahead logging with group commit
//
//  The layout of the log region:
//  [ checksum | header | data slots ............ ]
//    ^          ^        ^
//    start+0    start+1   start+2
//
//  An operation brackets its block writes with Begin and End. The last
//  operation to End while the log is quiescent commits everything
//  registered since the log was last empty: the registered blocks are
//  copied from the cache into the data slots, a digest of the slots is
//  persisted and verified, the header is written (the commit point),
//  the slots are copied to their home locations, and the header is
//  cleared. Recovery at mount time re-runs the install half of that
//  sequence for a committed-but-uninstalled transaction.
package wal

import (
	"github.com/tchajed/goose/machine/disk"
)

// Offsets of the log's blocks within the region, relative to its start.
const (
	LOGCHECKSUM uint64 = 0
	LOGHDR      uint64 = 1
	LOGDATA     uint64 = 2
)

// HDRTARGETS is the most target block numbers the header block can
// describe: a 4-byte count followed by 4-byte entries.
const HDRTARGETS uint64 = disk.BlockSize/4 - 1
