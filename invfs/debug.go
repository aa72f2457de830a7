package invfs

import (
	"fmt"
	"io"

	"github.com/invfs/invfs/onwire"
)

// Debug writes a human-readable dump of the superblock and every valid
// inode to w, mirroring the original fs_debug: block counts, then for each
// valid inode its size, direct block list, and (if present) indirect block
// index and the data blocks it points to.
func (fs *Filesystem) Debug(w io.Writer) {
	block0, err := fs.dev.ReadBlock(0)
	if err != nil {
		fmt.Fprintf(w, "debug: failed to read superblock: %s\n", err)
		return
	}
	sb, err := onwire.DecodeSuperblock(block0)
	if err != nil {
		fmt.Fprintf(w, "debug: failed to decode superblock: %s\n", err)
		return
	}

	fmt.Fprintln(w, "superblock:")
	fmt.Fprintf(w, "\t%d blocks\n", sb.NBlocks)
	fmt.Fprintf(w, "\t%d inode blocks\n", sb.NInodeBlocks)
	fmt.Fprintf(w, "\t%d inodes\n", sb.NInodes)

	blockSize := fs.dev.BlockSize()
	pointersPerBlock := onwire.PointersPerBlock(blockSize)
	inodesPerBlock := onwire.InodesPerBlock(blockSize)

	for i := 1; i <= int(sb.NInodeBlocks); i++ {
		block, err := fs.dev.ReadBlock(i)
		if err != nil {
			fmt.Fprintf(w, "debug: failed to read inode block %d: %s\n", i, err)
			continue
		}
		inodes, err := onwire.DecodeInodeBlock(block)
		if err != nil {
			fmt.Fprintf(w, "debug: failed to decode inode block %d: %s\n", i, err)
			continue
		}

		for j, inode := range inodes {
			if inode.IsValid == 0 {
				continue
			}
			inum := (i-1)*inodesPerBlock + j
			fmt.Fprintf(w, "inode %d:\n", inum)
			fmt.Fprintf(w, "\tsize: %d bytes\n", inode.Size)

			_, directCount, indirectCount, oversize := reachableBlockCounts(
				int(inode.Size), blockSize, DirectPointers, pointersPerBlock)
			if oversize {
				fmt.Fprintln(w, "\tsize exceeds filesystem capability")
				continue
			}

			fmt.Fprint(w, "\tdirect blocks:")
			for k := 0; k < directCount; k++ {
				fmt.Fprintf(w, " %d", inode.Direct[k])
			}
			fmt.Fprintln(w)

			if indirectCount > 0 {
				fmt.Fprintf(w, "\tindirect block: %d\n", inode.Indirect)
				fmt.Fprint(w, "\tindirect data blocks:")
				indirectBlock, err := fs.dev.ReadBlock(int(inode.Indirect))
				if err != nil {
					fmt.Fprintf(w, " <failed to read: %s>\n", err)
					continue
				}
				pointers, err := onwire.DecodeIndirectBlock(indirectBlock)
				if err != nil {
					fmt.Fprintf(w, " <failed to decode: %s>\n", err)
					continue
				}
				for k := 0; k < indirectCount; k++ {
					fmt.Fprintf(w, " %d", pointers[k])
				}
				fmt.Fprintln(w)
			}
		}
	}
}
