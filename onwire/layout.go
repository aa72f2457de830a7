// Package onwire packs and unpacks the filesystem's on-disk structures to and
// from raw block buffers. Per spec.md's design notes, the original C source
// overlays several typed views onto one union'd block buffer; here every
// typed view is an explicit encode/decode of a plain []byte, following the
// same encoding/binary + bytewriter approach file_systems/unixv1/format.go
// uses to lay out its superblock and inode list.
package onwire

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"
)

// Magic is the superblock's magic number, identifying a formatted filesystem.
// It's the int32 bit pattern of the on-disk bytes 10 34 f0 f0 (LE); the raw
// value 0xf0f03410 overflows int32, so it's spelled as its wrapped negative
// form, matching how the original C `int` stored it.
const Magic = int32(-0x0f0fcbf0)

// DirectPointers is the number of direct block pointers carried by an inode.
const DirectPointers = 5

// InodeSize is the on-disk size of one inode record, in bytes: isvalid, size,
// five direct pointers, and indirect, all int32.
const InodeSize = 4 * (2 + DirectPointers + 1)

// InodesPerBlock returns how many packed inodes fit in one block of the
// given size. For the filesystem's native 4096-byte block this is 128; tests
// that exercise smaller synthetic block sizes get a proportionally smaller
// count.
func InodesPerBlock(blockSize int) int {
	return blockSize / InodeSize
}

// Superblock mirrors the sixteen-byte header written to block 0.
type Superblock struct {
	Magic        int32
	NBlocks      int32
	NInodeBlocks int32
	NInodes      int32
}

// Inode mirrors one 32-byte on-disk inode record.
type Inode struct {
	IsValid  int32
	Size     int32
	Direct   [DirectPointers]int32
	Indirect int32
}

// EncodeSuperblock writes sb into a new zero-padded block-sized buffer.
func EncodeSuperblock(sb Superblock, blockSize int) ([]byte, error) {
	out := make([]byte, blockSize)
	writer := bytewriter.New(out)
	if err := binary.Write(writer, binary.LittleEndian, &sb); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeSuperblock reads the first sixteen bytes of block as a Superblock.
// Bytes past the header are ignored, matching spec.md's "padded/ignored to B".
func DecodeSuperblock(block []byte) (Superblock, error) {
	var sb Superblock
	reader := bytes.NewReader(block)
	err := binary.Read(reader, binary.LittleEndian, &sb)
	return sb, err
}

// EncodeInodeBlock packs len(inodes) inodes with no padding between records
// into a new zero-padded block-sized buffer. len(inodes) must equal
// InodesPerBlock(blockSize).
func EncodeInodeBlock(inodes []Inode, blockSize int) ([]byte, error) {
	out := make([]byte, blockSize)
	writer := bytewriter.New(out)
	for i := range inodes {
		if err := binary.Write(writer, binary.LittleEndian, &inodes[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DecodeInodeBlock unpacks InodesPerBlock(len(block)) inodes from block.
func DecodeInodeBlock(block []byte) ([]Inode, error) {
	inodes := make([]Inode, InodesPerBlock(len(block)))
	reader := bytes.NewReader(block)
	for i := range inodes {
		if err := binary.Read(reader, binary.LittleEndian, &inodes[i]); err != nil {
			return inodes, err
		}
	}
	return inodes, nil
}

// PointersPerBlock is how many int32 data-block indices fit in one indirect
// block.
func PointersPerBlock(blockSize int) int {
	return blockSize / 4
}

// EncodeIndirectBlock packs pointers (one int32 data-block index per slot)
// into a new block-sized buffer. len(pointers) must equal
// PointersPerBlock(blockSize).
func EncodeIndirectBlock(pointers []int32, blockSize int) ([]byte, error) {
	out := make([]byte, blockSize)
	writer := bytewriter.New(out)
	for _, p := range pointers {
		if err := binary.Write(writer, binary.LittleEndian, p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DecodeIndirectBlock unpacks PointersPerBlock(len(block)) int32 pointers
// from block.
func DecodeIndirectBlock(block []byte) ([]int32, error) {
	pointers := make([]int32, PointersPerBlock(len(block)))
	reader := bytes.NewReader(block)
	for i := range pointers {
		if err := binary.Read(reader, binary.LittleEndian, &pointers[i]); err != nil {
			return nil, err
		}
	}
	return pointers, nil
}
