package blockdev

import "os"

// FileDevice is a Device backed by a regular file on disk, used by
// cmd/invfsctl against real disk images.
type FileDevice struct {
	file       *os.File
	blockSize  int
	blockCount int
}

// OpenFileDevice opens an existing disk image of exactly blockSize*blockCount
// bytes in read/write mode.
func OpenFileDevice(path string, blockSize, blockCount int) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileDevice{file: f, blockSize: blockSize, blockCount: blockCount}, nil
}

// CreateFileDevice creates (or truncates) a disk image of blockSize*blockCount
// zero bytes and opens it for read/write.
func CreateFileDevice(path string, blockSize, blockCount int) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(blockSize) * int64(blockCount)); err != nil {
		f.Close()
		return nil, err
	}
	return &FileDevice{file: f, blockSize: blockSize, blockCount: blockCount}, nil
}

func (d *FileDevice) BlockSize() int  { return d.blockSize }
func (d *FileDevice) BlockCount() int { return d.blockCount }

func (d *FileDevice) ReadBlock(index int) ([]byte, error) {
	if err := CheckBounds(d, index, nil); err != nil {
		return nil, err
	}
	buf := make([]byte, d.blockSize)
	_, err := d.file.ReadAt(buf, int64(index)*int64(d.blockSize))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *FileDevice) WriteBlock(index int, data []byte) error {
	if err := CheckBounds(d, index, data); err != nil {
		return err
	}
	_, err := d.file.WriteAt(data, int64(index)*int64(d.blockSize))
	return err
}

// Close releases the underlying file handle.
func (d *FileDevice) Close() error {
	return d.file.Close()
}
