package invfs

import (
	"fmt"

	"github.com/invfs/invfs/ferrors"
	"github.com/invfs/invfs/onwire"
)

// Delete frees every block reachable from inum's inode (plus the indirect
// block, if any) and marks the inode invalid. Per spec.md §4.4 it's
// best-effort: an out-of-range block pointer is logged and skipped rather
// than aborting the whole operation, and Delete still returns true as long
// as inum was valid to begin with.
func (fs *Filesystem) Delete(inum int) bool {
	fs.resetDiagnostics()
	if !fs.mounted {
		fs.logger.Error("delete: no mounted filesystem")
		return false
	}
	if !fs.inumInRange(inum) {
		fs.logger.Error("delete: inum out of range", "inum", inum)
		return false
	}

	diskBlock, slot, inodes, err := fs.loadInodeBlock(inum)
	if err != nil {
		fs.logger.Error("delete: failed to load inode block", "inum", inum, "error", err)
		return false
	}
	inode := inodes[slot]
	if inode.IsValid == 0 {
		fs.logger.Error("delete: inode is not valid", "inum", inum)
		return false
	}

	blockSize := fs.dev.BlockSize()
	pointersPerBlock := onwire.PointersPerBlock(blockSize)
	_, directCount, indirectCount, oversize := reachableBlockCounts(
		int(inode.Size), blockSize, DirectPointers, pointersPerBlock)
	if oversize {
		msg := fmt.Sprintf("delete: inode %d reports a corrupt oversize, best-effort recovery", inum)
		fs.logger.Warn(msg)
		fs.warn(ferrors.CorruptOversize.WithMessage(msg))
	}

	for k := 0; k < directCount; k++ {
		b := int(inode.Direct[k])
		if !inDataRegion(b, fs.ninodeblocks, fs.nblocks) {
			msg := fmt.Sprintf("delete: skipping out-of-range direct block %d for inode %d", b, inum)
			fs.logger.Warn(msg)
			fs.warn(ferrors.InvalidBlockRef.WithMessage(msg))
			continue
		}
		fs.bitmap.Free(b)
	}

	if indirectCount > 0 {
		ind := int(inode.Indirect)
		if inDataRegion(ind, fs.ninodeblocks, fs.nblocks) {
			if indirectBlock, err := fs.dev.ReadBlock(ind); err == nil {
				if pointers, err := onwire.DecodeIndirectBlock(indirectBlock); err == nil {
					for k := 0; k < indirectCount; k++ {
						b := int(pointers[k])
						if !inDataRegion(b, fs.ninodeblocks, fs.nblocks) {
							msg := fmt.Sprintf(
								"delete: skipping out-of-range indirect-referenced block %d for inode %d", b, inum)
							fs.logger.Warn(msg)
							fs.warn(ferrors.InvalidBlockRef.WithMessage(msg))
							continue
						}
						fs.bitmap.Free(b)
					}
				}
			}
			fs.bitmap.Free(ind)
		} else {
			msg := fmt.Sprintf("delete: skipping out-of-range indirect block %d for inode %d", ind, inum)
			fs.logger.Warn(msg)
			fs.warn(ferrors.InvalidBlockRef.WithMessage(msg))
		}
	}

	inodes[slot] = onwire.Inode{IsValid: 0, Size: 0}
	if err := fs.writeInodeBlock(diskBlock, inodes); err != nil {
		fs.logger.Error("delete: failed to write inode block", "inum", inum, "error", err)
		return false
	}
	return true
}
