package invfs

import "github.com/invfs/invfs/onwire"

// Create allocates the first free inode slot, skipping inode 0 (reserved),
// marks it valid with size 0, and returns its inum. It returns 0 if no
// filesystem is mounted or every inode slot is occupied.
func (fs *Filesystem) Create() int {
	if !fs.mounted {
		fs.logger.Error("create: no mounted filesystem")
		return 0
	}

	blockSize := fs.dev.BlockSize()
	inodesPerBlock := onwire.InodesPerBlock(blockSize)

	for blockIx := 0; blockIx < fs.ninodeblocks; blockIx++ {
		diskBlock := blockIx + 1
		block, err := fs.dev.ReadBlock(diskBlock)
		if err != nil {
			fs.logger.Error("create: failed to read inode block", "block", diskBlock, "error", err)
			return 0
		}
		inodes, err := onwire.DecodeInodeBlock(block)
		if err != nil {
			fs.logger.Error("create: failed to decode inode block", "block", diskBlock, "error", err)
			return 0
		}

		for slot := 0; slot < inodesPerBlock; slot++ {
			inum := blockIx*inodesPerBlock + slot
			if inum == 0 {
				continue
			}
			if inodes[slot].IsValid != 0 {
				continue
			}

			inodes[slot] = onwire.Inode{IsValid: 1, Size: 0}
			encoded, err := onwire.EncodeInodeBlock(inodes, blockSize)
			if err != nil {
				fs.logger.Error("create: failed to encode inode block", "block", diskBlock, "error", err)
				return 0
			}
			if err := fs.dev.WriteBlock(diskBlock, encoded); err != nil {
				fs.logger.Error("create: failed to write inode block", "block", diskBlock, "error", err)
				return 0
			}
			return inum
		}
	}

	fs.logger.Warn("create: no free inode slot")
	return 0
}
