package invfs

// GetSize returns the byte size of a valid inode, or -1 if no filesystem is
// mounted, inum is out of range, or the target inode is invalid.
func (fs *Filesystem) GetSize(inum int) int {
	if !fs.mounted {
		fs.logger.Error("getsize: no mounted filesystem")
		return -1
	}
	if !fs.inumInRange(inum) {
		fs.logger.Error("getsize: inum out of range", "inum", inum)
		return -1
	}

	_, slot, inodes, err := fs.loadInodeBlock(inum)
	if err != nil {
		fs.logger.Error("getsize: failed to load inode block", "inum", inum, "error", err)
		return -1
	}
	if inodes[slot].IsValid == 0 {
		fs.logger.Error("getsize: inode is not valid", "inum", inum)
		return -1
	}
	return int(inodes[slot].Size)
}
