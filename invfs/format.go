package invfs

import "github.com/invfs/invfs/onwire"

// Format lays down a fresh superblock and inode table. It refuses to run
// against a mounted session. Per spec.md §4.1, ninodeblocks reserves roughly
// 10% of the device for the inode table, rounded up (ceil(n/10)), not the
// source's "round n up to a multiple of n/10" quirk.
func (fs *Filesystem) Format() bool {
	if fs.mounted {
		fs.logger.Error("format: filesystem is already mounted")
		return false
	}

	n := fs.dev.BlockCount()
	if n < 3 {
		fs.logger.Error("format: device too small to host a filesystem", "blocks", n)
		return false
	}

	blockSize := fs.dev.BlockSize()
	ninodeblocks := ceilDiv(n, 10)
	inodesPerBlock := onwire.InodesPerBlock(blockSize)
	ninodes := ninodeblocks * inodesPerBlock

	sb := onwire.Superblock{
		Magic:        onwire.Magic,
		NBlocks:      int32(n),
		NInodeBlocks: int32(ninodeblocks),
		NInodes:      int32(ninodes),
	}
	sbBlock, err := onwire.EncodeSuperblock(sb, blockSize)
	if err != nil {
		fs.logger.Error("format: failed to encode superblock", "error", err)
		return false
	}
	if err := fs.dev.WriteBlock(0, sbBlock); err != nil {
		fs.logger.Error("format: failed to write superblock", "error", err)
		return false
	}

	emptyInodes := make([]onwire.Inode, inodesPerBlock)
	inodeBlock, err := onwire.EncodeInodeBlock(emptyInodes, blockSize)
	if err != nil {
		fs.logger.Error("format: failed to encode empty inode block", "error", err)
		return false
	}
	for i := 1; i <= ninodeblocks; i++ {
		if err := fs.dev.WriteBlock(i, inodeBlock); err != nil {
			fs.logger.Error("format: failed to write inode block", "block", i, "error", err)
			return false
		}
	}

	return true
}
