package invfs

import (
	"github.com/invfs/invfs/bitset"
	"github.com/invfs/invfs/onwire"
)

// Mount reads the superblock, verifies its magic number, and rebuilds the
// free-block bitmap by walking every valid inode. It is not idempotent with
// leakage: a second Mount call discards any bitmap from a prior mount before
// rebuilding, per spec.md §4.2.
func (fs *Filesystem) Mount() bool {
	block0, err := fs.dev.ReadBlock(0)
	if err != nil {
		fs.logger.Error("mount: failed to read superblock", "error", err)
		return false
	}
	sb, err := onwire.DecodeSuperblock(block0)
	if err != nil {
		fs.logger.Error("mount: failed to decode superblock", "error", err)
		return false
	}
	if sb.Magic != onwire.Magic {
		fs.logger.Error("mount: superblock magic mismatch", "got", sb.Magic, "want", onwire.Magic)
		return false
	}

	fs.Unmount()

	nblocks := int(sb.NBlocks)
	ninodeblocks := int(sb.NInodeBlocks)
	ninodes := int(sb.NInodes)
	blockSize := fs.dev.BlockSize()
	inodesPerBlock := onwire.InodesPerBlock(blockSize)
	pointersPerBlock := onwire.PointersPerBlock(blockSize)

	bitmap := bitset.New(nblocks)
	bitmap.Set(0, true)
	for i := 1; i <= ninodeblocks; i++ {
		bitmap.Set(i, true)
	}

	for i := 1; i <= ninodeblocks; i++ {
		block, err := fs.dev.ReadBlock(i)
		if err != nil {
			fs.logger.Error("mount: failed to read inode block", "block", i, "error", err)
			return false
		}
		inodes, err := onwire.DecodeInodeBlock(block)
		if err != nil {
			fs.logger.Error("mount: failed to decode inode block", "block", i, "error", err)
			return false
		}

		for _, inode := range inodes {
			if inode.IsValid == 0 {
				continue
			}

			_, directCount, indirectCount, oversize := reachableBlockCounts(
				int(inode.Size), blockSize, DirectPointers, pointersPerBlock)
			if oversize {
				fs.logger.Error("mount: inode exceeds direct+indirect capacity, aborting mount",
					"size", inode.Size)
				return false
			}

			for k := 0; k < directCount; k++ {
				b := int(inode.Direct[k])
				if !inDataRegion(b, ninodeblocks, nblocks) {
					fs.logger.Error("mount: invalid direct block pointer, aborting mount",
						"block", b)
					return false
				}
				bitmap.Set(b, true)
			}

			if indirectCount > 0 {
				ind := int(inode.Indirect)
				if !inDataRegion(ind, ninodeblocks, nblocks) {
					fs.logger.Error("mount: invalid indirect block pointer, aborting mount",
						"block", ind)
					return false
				}
				bitmap.Set(ind, true)

				indirectBlock, err := fs.dev.ReadBlock(ind)
				if err != nil {
					fs.logger.Error("mount: failed to read indirect block", "block", ind, "error", err)
					return false
				}
				pointers, err := onwire.DecodeIndirectBlock(indirectBlock)
				if err != nil {
					fs.logger.Error("mount: failed to decode indirect block", "block", ind, "error", err)
					return false
				}

				for k := 0; k < indirectCount; k++ {
					b := int(pointers[k])
					if !inDataRegion(b, ninodeblocks, nblocks) {
						fs.logger.Error("mount: invalid indirect-referenced block pointer, aborting mount",
							"block", b)
						return false
					}
					bitmap.Set(b, true)
				}
			}
		}
	}

	fs.bitmap = bitmap
	fs.nblocks = nblocks
	fs.ninodeblocks = ninodeblocks
	fs.ninodes = ninodes
	fs.mounted = true
	return true
}

// Unmount discards the mounted flag and releases the in-memory bitmap. It's
// always safe to call, even if no filesystem is mounted.
func (fs *Filesystem) Unmount() {
	fs.mounted = false
	fs.bitmap = nil
	fs.nblocks = 0
	fs.ninodeblocks = 0
	fs.ninodes = 0
}

// inDataRegion reports whether block b lies strictly within
// (ninodeblocks, nblocks), the data region per spec.md §3.
func inDataRegion(b, ninodeblocks, nblocks int) bool {
	return b > ninodeblocks && b < nblocks
}
