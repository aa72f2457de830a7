package invfs

import "github.com/invfs/invfs/onwire"

// loadInodeBlock reads and decodes the inode block hosting inum, without
// validating inum's range or the target inode's validity — callers do that
// check themselves since the three range conditions (inum<1, inum>=ninodes,
// invalid) are reported differently by each public operation.
func (fs *Filesystem) loadInodeBlock(inum int) (diskBlock, slot int, inodes []onwire.Inode, err error) {
	blockSize := fs.dev.BlockSize()
	inodesPerBlock := onwire.InodesPerBlock(blockSize)
	diskBlock, slot = inodeLocation(inum, inodesPerBlock)

	raw, err := fs.dev.ReadBlock(diskBlock)
	if err != nil {
		return diskBlock, slot, nil, err
	}
	inodes, err = onwire.DecodeInodeBlock(raw)
	return diskBlock, slot, inodes, err
}

// inumInRange reports whether inum satisfies spec.md's "1 <= inum < ninodes"
// bound. It does not check validity.
func (fs *Filesystem) inumInRange(inum int) bool {
	return inum >= 1 && inum < fs.ninodes
}

func (fs *Filesystem) writeInodeBlock(diskBlock int, inodes []onwire.Inode) error {
	encoded, err := onwire.EncodeInodeBlock(inodes, fs.dev.BlockSize())
	if err != nil {
		return err
	}
	return fs.dev.WriteBlock(diskBlock, encoded)
}
