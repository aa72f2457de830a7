package blockdev

import (
	"io"

	"github.com/xaionaro-go/bytesextra"
)

// MemoryDevice is a Device backed entirely by an in-memory byte slice. It's
// the device every invfs unit test runs against; the teacher's own test
// harness (testing/images.go) uses the same bytesextra.NewReadWriteSeeker
// trick to turn a plain []byte into a seekable stream without touching disk.
type MemoryDevice struct {
	blockSize  int
	blockCount int
	stream     io.ReadWriteSeeker
}

// NewMemoryDevice allocates a zero-filled MemoryDevice with the given
// geometry.
func NewMemoryDevice(blockSize, blockCount int) *MemoryDevice {
	buf := make([]byte, blockSize*blockCount)
	return &MemoryDevice{
		blockSize:  blockSize,
		blockCount: blockCount,
		stream:     bytesextra.NewReadWriteSeeker(buf),
	}
}

// NewMemoryDeviceFromBytes wraps an existing byte slice as a Device. len(buf)
// must be an exact multiple of blockSize.
func NewMemoryDeviceFromBytes(buf []byte, blockSize int) *MemoryDevice {
	return &MemoryDevice{
		blockSize:  blockSize,
		blockCount: len(buf) / blockSize,
		stream:     bytesextra.NewReadWriteSeeker(buf),
	}
}

func (d *MemoryDevice) BlockSize() int  { return d.blockSize }
func (d *MemoryDevice) BlockCount() int { return d.blockCount }

func (d *MemoryDevice) ReadBlock(index int) ([]byte, error) {
	if err := CheckBounds(d, index, nil); err != nil {
		return nil, err
	}
	if _, err := d.stream.Seek(int64(index*d.blockSize), io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, d.blockSize)
	if _, err := io.ReadFull(d.stream, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *MemoryDevice) WriteBlock(index int, data []byte) error {
	if err := CheckBounds(d, index, data); err != nil {
		return err
	}
	if _, err := d.stream.Seek(int64(index*d.blockSize), io.SeekStart); err != nil {
		return err
	}
	_, err := d.stream.Write(data)
	return err
}
