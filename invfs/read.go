package invfs

import (
	"fmt"

	"github.com/invfs/invfs/ferrors"
	"github.com/invfs/invfs/onwire"
)

// Read copies up to length bytes of inum's data, starting at offset, into
// buf. It never reads past end of file: if offset >= size it returns 0, and
// if offset+length > size it clamps length to size-offset first. Every block
// index it consults must lie in the data region; on the first invalid
// pointer it stops and returns the bytes already copied, per spec.md §4.6.
func (fs *Filesystem) Read(inum int, buf []byte, length, offset int) int {
	fs.resetDiagnostics()
	if !fs.mounted {
		fs.logger.Error("read: no mounted filesystem")
		return 0
	}
	if !fs.inumInRange(inum) {
		fs.logger.Error("read: inum out of range", "inum", inum)
		return 0
	}

	_, slot, inodes, err := fs.loadInodeBlock(inum)
	if err != nil {
		fs.logger.Error("read: failed to load inode block", "inum", inum, "error", err)
		return 0
	}
	inode := inodes[slot]
	if inode.IsValid == 0 {
		fs.logger.Error("read: inode is not valid", "inum", inum)
		return 0
	}

	size := int(inode.Size)
	if offset >= size {
		return 0
	}
	if offset+length > size {
		length = size - offset
	}
	if length <= 0 {
		return 0
	}

	blockSize := fs.dev.BlockSize()
	pointersPerBlock := onwire.PointersPerBlock(blockSize)
	_, directCount, indirectCount, oversize := reachableBlockCounts(
		size, blockSize, DirectPointers, pointersPerBlock)
	if oversize {
		msg := fmt.Sprintf("read: inode %d reports a corrupt oversize, best-effort read", inum)
		fs.logger.Warn(msg)
		fs.warn(ferrors.CorruptOversize.WithMessage(msg))
	}

	startGlobalBlock := offset / blockSize
	startByte := offset % blockSize

	bytesRead := 0

	for k := startGlobalBlock; k < directCount && bytesRead < length; k++ {
		b := int(inode.Direct[k])
		if !inDataRegion(b, fs.ninodeblocks, fs.nblocks) {
			fs.logger.Warn("read: stopping at out-of-range direct block", "inum", inum, "block", b)
			return bytesRead
		}

		blockData, err := fs.dev.ReadBlock(b)
		if err != nil {
			fs.logger.Warn("read: failed to read data block, stopping", "inum", inum, "block", b, "error", err)
			return bytesRead
		}

		byteStart := 0
		if k == startGlobalBlock {
			byteStart = startByte
		}
		toRead := minInt(length-bytesRead, blockSize-byteStart)
		copy(buf[bytesRead:bytesRead+toRead], blockData[byteStart:byteStart+toRead])
		bytesRead += toRead
	}

	if indirectCount > 0 && bytesRead < length {
		ind := int(inode.Indirect)
		if !inDataRegion(ind, fs.ninodeblocks, fs.nblocks) {
			fs.logger.Warn("read: stopping at out-of-range indirect block", "inum", inum, "block", ind)
			return bytesRead
		}

		indirectBlock, err := fs.dev.ReadBlock(ind)
		if err != nil {
			fs.logger.Warn("read: failed to read indirect block, stopping", "inum", inum, "block", ind, "error", err)
			return bytesRead
		}
		pointers, err := onwire.DecodeIndirectBlock(indirectBlock)
		if err != nil {
			fs.logger.Warn("read: failed to decode indirect block, stopping", "inum", inum, "block", ind, "error", err)
			return bytesRead
		}

		startIndirectIdx := maxInt(0, startGlobalBlock-DirectPointers)
		for k := startIndirectIdx; k < indirectCount && bytesRead < length; k++ {
			b := int(pointers[k])
			if !inDataRegion(b, fs.ninodeblocks, fs.nblocks) {
				fs.logger.Warn("read: stopping at out-of-range indirect-referenced block",
					"inum", inum, "block", b)
				return bytesRead
			}

			blockData, err := fs.dev.ReadBlock(b)
			if err != nil {
				fs.logger.Warn("read: failed to read data block, stopping", "inum", inum, "block", b, "error", err)
				return bytesRead
			}

			byteStart := 0
			if k+DirectPointers == startGlobalBlock {
				byteStart = startByte
			}
			toRead := minInt(length-bytesRead, blockSize-byteStart)
			copy(buf[bytesRead:bytesRead+toRead], blockData[byteStart:byteStart+toRead])
			bytesRead += toRead
		}
	}

	return bytesRead
}
