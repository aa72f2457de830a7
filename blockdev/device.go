// Package blockdev abstracts whole-block I/O over a fixed-size, fixed-count
// array of equally sized blocks. This is the external collaborator spec.md
// assumes (disk_read/disk_write/disk_size); the filesystem core never talks
// to a concrete storage type directly, only to the Device interface, so it
// can be exercised against an in-memory device in tests and a file-backed
// device from the CLI.
package blockdev

// Device is a fixed-size array of equally sized blocks that can only be read
// from or written to a whole block at a time.
type Device interface {
	// BlockSize returns the size of a block, in bytes. Every ReadBlock and
	// WriteBlock call deals in buffers of exactly this size.
	BlockSize() int
	// BlockCount returns the total number of blocks on the device.
	BlockCount() int
	// ReadBlock reads the block at the given index and returns its
	// contents. The returned slice has length BlockSize().
	ReadBlock(index int) ([]byte, error)
	// WriteBlock writes data to the block at the given index. len(data)
	// must equal BlockSize().
	WriteBlock(index int, data []byte) error
}

// CheckBounds validates that index names a real block on dev and, if data is
// non-nil, that its length matches the device's block size. It centralizes
// the bounds check every Device implementation needs to perform.
func CheckBounds(dev Device, index int, data []byte) error {
	if index < 0 || index >= dev.BlockCount() {
		return &OutOfRangeError{Index: index, BlockCount: dev.BlockCount()}
	}
	if data != nil && len(data) != dev.BlockSize() {
		return &WrongSizeError{Got: len(data), Want: dev.BlockSize()}
	}
	return nil
}
