package invfs

import (
	"fmt"

	"github.com/invfs/invfs/ferrors"
	"github.com/invfs/invfs/onwire"
)

// Write writes up to length bytes from data into inum's file starting at
// offset, allocating new data blocks (and the indirect block, if needed) on
// demand. It returns the number of bytes durably written, which may be less
// than length if the device runs out of free blocks partway through
// (spec.md §4.7's OutOfSpace case). It returns 0 for an invalid inumber, an
// unmounted filesystem, or an invalid inode.
func (fs *Filesystem) Write(inum int, data []byte, length, offset int) int {
	fs.resetDiagnostics()
	if !fs.mounted {
		fs.logger.Error("write: no mounted filesystem")
		return 0
	}
	if !fs.inumInRange(inum) {
		fs.logger.Error("write: inum out of range", "inum", inum)
		return 0
	}

	diskBlock, slot, inodes, err := fs.loadInodeBlock(inum)
	if err != nil {
		fs.logger.Error("write: failed to load inode block", "inum", inum, "error", err)
		return 0
	}
	inode := inodes[slot]
	if inode.IsValid == 0 {
		fs.logger.Error("write: inode is not valid", "inum", inum)
		return 0
	}

	blockSize := fs.dev.BlockSize()
	pointersPerBlock := onwire.PointersPerBlock(blockSize)
	maxSize := MaxFileSizeFor(blockSize)

	oldSize := int(inode.Size)
	oldNBlocks := ceilDiv(oldSize, blockSize)

	// Offset clamping policy (spec.md §4.7): writes cannot create sparse
	// holes. An offset beyond the end of the last allocated block is pulled
	// back to that boundary; a logical append always happens at
	// oldNBlocks*blockSize, never further out.
	if offset > blockSize*oldNBlocks {
		offset = blockSize * oldNBlocks
	}

	if offset >= maxSize {
		fs.logger.Warn("write: offset at or past max file size, nothing written", "inum", inum)
		return 0
	}
	if offset+length > maxSize {
		length = maxSize - offset
	}
	if length <= 0 {
		return 0
	}

	newNBlocksWanted := ceilDiv(offset+length, blockSize)
	directBlocksUsedNew := minInt(newNBlocksWanted, DirectPointers)
	indirectBlocksUsedNew := 0
	if newNBlocksWanted > DirectPointers {
		indirectBlocksUsedNew = newNBlocksWanted - DirectPointers
	}

	allocateIndirect := oldNBlocks <= DirectPointers && newNBlocksWanted > DirectPointers

	startGlobalBlock := offset / blockSize
	startByte := offset % blockSize

	written := 0
	ranOutOfSpace := false
	changedDirect := false

	for k := startGlobalBlock; k < directBlocksUsedNew && written < length; k++ {
		var blockNum int
		isNewBlock := k >= oldNBlocks
		if isNewBlock {
			b, err := fs.bitmap.Allocate()
			if err != nil {
				msg := fmt.Sprintf("write: out of space allocating direct block for inode %d", inum)
				fs.logger.Warn(msg)
				fs.warn(ferrors.OutOfSpace.WithMessage(msg))
				ranOutOfSpace = true
				break
			}
			inode.Direct[k] = int32(b)
			changedDirect = true
			blockNum = b
		} else {
			blockNum = int(inode.Direct[k])
		}

		byteStart := 0
		if k == startGlobalBlock {
			byteStart = startByte
		}
		writeLen := minInt(length-written, blockSize-byteStart)

		blockBuf, err := fs.prepareBlockBuffer(blockNum, byteStart, writeLen, blockSize, isNewBlock)
		if err != nil {
			fs.logger.Warn("write: stopping at unreadable direct block", "inum", inum, "block", blockNum, "error", err)
			break
		}
		copy(blockBuf[byteStart:byteStart+writeLen], data[written:written+writeLen])
		if err := fs.dev.WriteBlock(blockNum, blockBuf); err != nil {
			fs.logger.Warn("write: failed to write direct block", "inum", inum, "block", blockNum, "error", err)
			break
		}
		written += writeLen
	}

	if changedDirect {
		inodes[slot] = inode
		if err := fs.writeInodeBlock(diskBlock, inodes); err != nil {
			fs.logger.Error("write: failed to persist updated direct pointers", "inum", inum, "error", err)
		}
	}

	changedIndirectPtr := false
	changedPointerSlots := false

	if indirectBlocksUsedNew > 0 && !ranOutOfSpace && written < length {
		var indirectBlockNum int
		var pointers []int32

		if allocateIndirect {
			b, err := fs.bitmap.Allocate()
			if err != nil {
				msg := fmt.Sprintf("write: out of space allocating indirect block for inode %d", inum)
				fs.logger.Warn(msg)
				fs.warn(ferrors.OutOfSpace.WithMessage(msg))
				ranOutOfSpace = true
			} else {
				indirectBlockNum = b
				inode.Indirect = int32(b)
				changedIndirectPtr = true
				pointers = make([]int32, pointersPerBlock)
			}
		} else {
			indirectBlockNum = int(inode.Indirect)
			raw, err := fs.dev.ReadBlock(indirectBlockNum)
			if err != nil {
				fs.logger.Warn("write: failed to read existing indirect block", "inum", inum, "block", indirectBlockNum, "error", err)
				ranOutOfSpace = true // treat as unrecoverable for this call; nothing more to allocate safely
			} else {
				pointers, err = onwire.DecodeIndirectBlock(raw)
				if err != nil {
					fs.logger.Warn("write: failed to decode existing indirect block", "inum", inum, "block", indirectBlockNum, "error", err)
					ranOutOfSpace = true
				}
			}
		}

		if !ranOutOfSpace {
			startIndirectIdx := maxInt(0, startGlobalBlock-DirectPointers)
			for k := startIndirectIdx; k < indirectBlocksUsedNew && written < length; k++ {
				kGlobal := k + DirectPointers
				var blockNum int
				isNewBlock := kGlobal >= oldNBlocks
				if isNewBlock {
					b, err := fs.bitmap.Allocate()
					if err != nil {
						msg := fmt.Sprintf("write: out of space allocating indirect-referenced block for inode %d", inum)
						fs.logger.Warn(msg)
						fs.warn(ferrors.OutOfSpace.WithMessage(msg))
						break
					}
					pointers[k] = int32(b)
					changedPointerSlots = true
					blockNum = b
				} else {
					blockNum = int(pointers[k])
				}

				byteStart := 0
				if kGlobal == startGlobalBlock {
					byteStart = startByte
				}
				writeLen := minInt(length-written, blockSize-byteStart)

				blockBuf, err := fs.prepareBlockBuffer(blockNum, byteStart, writeLen, blockSize, isNewBlock)
				if err != nil {
					fs.logger.Warn("write: stopping at unreadable indirect-referenced block",
						"inum", inum, "block", blockNum, "error", err)
					break
				}
				copy(blockBuf[byteStart:byteStart+writeLen], data[written:written+writeLen])
				if err := fs.dev.WriteBlock(blockNum, blockBuf); err != nil {
					fs.logger.Warn("write: failed to write indirect-referenced block",
						"inum", inum, "block", blockNum, "error", err)
					break
				}
				written += writeLen
			}

			if changedPointerSlots {
				encoded, err := onwire.EncodeIndirectBlock(pointers, blockSize)
				if err != nil {
					fs.logger.Error("write: failed to encode indirect block", "inum", inum, "error", err)
				} else if err := fs.dev.WriteBlock(indirectBlockNum, encoded); err != nil {
					fs.logger.Error("write: failed to write indirect block", "inum", inum, "error", err)
				}
			}
		}
	}

	newSize := oldSize
	if offset+written > newSize {
		newSize = offset + written
	}
	if newSize > maxSize {
		newSize = maxSize
	}

	if changedIndirectPtr || changedPointerSlots || newSize != oldSize {
		inode.Size = int32(newSize)
		inodes[slot] = inode
		if err := fs.writeInodeBlock(diskBlock, inodes); err != nil {
			fs.logger.Error("write: failed to persist final inode state", "inum", inum, "error", err)
		}
	}

	return written
}

// prepareBlockBuffer returns the block buffer to write blockNum's contents
// into. A freshly allocated block that's only partially filled leaves its
// remainder zeroed, per spec.md §4.7; overwriting an existing block with a
// partial write requires a read-modify-write so bytes outside [byteStart,
// byteStart+writeLen) survive.
func (fs *Filesystem) prepareBlockBuffer(blockNum, byteStart, writeLen, blockSize int, isNewBlock bool) ([]byte, error) {
	if !isNewBlock && (byteStart > 0 || writeLen < blockSize) {
		return fs.dev.ReadBlock(blockNum)
	}
	return make([]byte, blockSize), nil
}
