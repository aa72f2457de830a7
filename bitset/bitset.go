// Package bitset implements the in-memory free-block bitmap spec.md
// describes: a vector of nblocks booleans, built fresh at mount by scanning
// every valid inode, never persisted. It's a thin wrapper around
// github.com/boljen/go-bitmap, following the same AllocateBlock/FreeBlock
// split as drivers/common/blockmanager.go's BlockManager.
package bitset

import (
	bitmap "github.com/boljen/go-bitmap"

	"github.com/invfs/invfs/ferrors"
)

// Map is the mounted session's free-block bitmap. bitmap[b] == true means
// block b is used.
type Map struct {
	bits  bitmap.Bitmap
	count int
}

// New allocates a bitmap of the given size with every bit clear.
func New(count int) *Map {
	return &Map{bits: bitmap.New(count), count: count}
}

// Len returns the number of blocks this bitmap tracks.
func (m *Map) Len() int {
	return m.count
}

// Get reports whether block b is marked used.
func (m *Map) Get(b int) bool {
	return m.bits.Get(b)
}

// Set marks block b used or free directly, bypassing the allocator. Mount
// uses this to seed reserved blocks and blocks reachable from live inodes;
// delete uses it to release blocks back to the pool.
func (m *Map) Set(b int, used bool) {
	m.bits.Set(b, used)
}

// Allocate performs the allocator's contract from spec.md §4.8: a linear
// scan from index 0 for the first free block, flipped to used and returned.
// Because the scan always starts at zero, blocks freed by delete anywhere on
// disk are reused before the bitmap grows past blocks that have never been
// touched.
func (m *Map) Allocate() (int, error) {
	for i := 0; i < m.count; i++ {
		if !m.bits.Get(i) {
			m.bits.Set(i, true)
			return i, nil
		}
	}
	return 0, ferrors.OutOfSpace
}

// Free clears bit b. Deallocation is always an in-place clear performed by
// delete, never by the allocator itself.
func (m *Map) Free(b int) {
	m.bits.Set(b, false)
}
