package blockdev

import "fmt"

// OutOfRangeError reports a block index outside [0, BlockCount()).
type OutOfRangeError struct {
	Index      int
	BlockCount int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("block index %d not in range [0, %d)", e.Index, e.BlockCount)
}

// WrongSizeError reports a buffer that isn't exactly one block long.
type WrongSizeError struct {
	Got  int
	Want int
}

func (e *WrongSizeError) Error() string {
	return fmt.Sprintf("buffer is %d bytes, want exactly %d (one block)", e.Got, e.Want)
}
