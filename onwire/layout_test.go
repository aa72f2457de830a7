package onwire_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/invfs/invfs/onwire"
)

func TestSuperblockRoundTrip(t *testing.T) {
	sb := onwire.Superblock{
		Magic:        onwire.Magic,
		NBlocks:      20,
		NInodeBlocks: 2,
		NInodes:      256,
	}

	block, err := onwire.EncodeSuperblock(sb, 4096)
	require.NoError(t, err)
	require.Len(t, block, 4096)

	got, err := onwire.DecodeSuperblock(block)
	require.NoError(t, err)
	require.Equal(t, sb, got)
}

func TestInodeBlockRoundTrip(t *testing.T) {
	count := onwire.InodesPerBlock(4096)
	require.Equal(t, 128, count)

	inodes := make([]onwire.Inode, count)
	inodes[5] = onwire.Inode{
		IsValid:  1,
		Size:     123,
		Direct:   [onwire.DirectPointers]int32{3, 4, 5, 0, 0},
		Indirect: 0,
	}

	block, err := onwire.EncodeInodeBlock(inodes, 4096)
	require.NoError(t, err)
	require.Len(t, block, 4096)

	got, err := onwire.DecodeInodeBlock(block)
	require.NoError(t, err)
	require.Equal(t, inodes, got)
}

func TestIndirectBlockRoundTrip(t *testing.T) {
	pointers := make([]int32, onwire.PointersPerBlock(4096))
	pointers[0] = 7
	pointers[1] = 8

	block, err := onwire.EncodeIndirectBlock(pointers, 4096)
	require.NoError(t, err)

	got, err := onwire.DecodeIndirectBlock(block)
	require.NoError(t, err)
	require.Equal(t, pointers, got)
}
