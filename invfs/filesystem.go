// Package invfs implements the mounted filesystem session described by the
// spec: a Unix-style inode filesystem laid out over a blockdev.Device, with
// a two-level block map (direct pointers plus one indirect block) inside
// each inode and an in-memory free-block bitmap rebuilt at mount time by
// scanning every valid inode. There is no directory layer, no filenames, no
// permissions, and no concurrency support — a Filesystem value is not safe
// for use from more than one goroutine at a time, the same way none of the
// teacher's drivers carry internal locking.
package invfs

import (
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/invfs/invfs/bitset"
	"github.com/invfs/invfs/blockdev"
	"github.com/invfs/invfs/onwire"
)

// DirectPointers is the number of direct block pointers carried by an
// inode, re-exported from onwire for callers that only import invfs.
const DirectPointers = onwire.DirectPointers

// MaxFileSize is S_max from spec.md §3: B*(D+P) for the filesystem's native
// 4096-byte block (4096*(5+1024) = 4214784 bytes). Use MaxFileSizeFor for a
// device with a different block size.
const MaxFileSize = 4096 * (DirectPointers + 1024)

// MaxFileSizeFor returns S_max for a device with the given block size.
func MaxFileSizeFor(blockSize int) int {
	return blockSize * (DirectPointers + onwire.PointersPerBlock(blockSize))
}

// Filesystem is the process-wide session: the mounted flag and the bitmap
// live here, constructed at mount and discarded at unmount.
type Filesystem struct {
	dev     blockdev.Device
	logger  *slog.Logger
	mounted bool
	bitmap  *bitset.Map

	nblocks      int
	ninodeblocks int
	ninodes      int

	// lastDiagnostics accumulates non-fatal problems (out-of-range block
	// pointers skipped during a best-effort delete, a corrupt oversize inode
	// tolerated rather than aborted by delete or read, a write cut short by
	// running out of free blocks) from the most recent Delete, Read or Write. spec.md's public operation surface only returns
	// the bool/int sentinel a caller needs to react to; this is the richer
	// diagnostic detail for a caller that wants it, aggregated the way
	// hashicorp/go-multierror collects validation errors elsewhere in the
	// ecosystem rather than losing all but the last one.
	lastDiagnostics *multierror.Error
}

// LastDiagnostics returns the aggregated non-fatal warnings from the most
// recent Delete, Read or Write, or nil if none were recorded. Those three
// operations reset it before they run; the other operations leave it as it
// is.
func (fs *Filesystem) LastDiagnostics() error {
	if fs.lastDiagnostics == nil || len(fs.lastDiagnostics.Errors) == 0 {
		return nil
	}
	return fs.lastDiagnostics
}

func (fs *Filesystem) resetDiagnostics() {
	fs.lastDiagnostics = nil
}

func (fs *Filesystem) warn(err error) {
	fs.lastDiagnostics = multierror.Append(fs.lastDiagnostics, err)
}

// Option configures a Filesystem at construction time.
type Option func(*Filesystem)

// WithLogger overrides the default slog.Logger used for mount-time fatal
// diagnostics and operation-time best-effort warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(fs *Filesystem) {
		fs.logger = logger
	}
}

// New creates a Filesystem session over dev. The session starts unmounted;
// call Format and/or Mount before any other operation.
func New(dev blockdev.Device, opts ...Option) *Filesystem {
	fs := &Filesystem{
		dev:    dev,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// IsMounted reports whether a filesystem is currently mounted.
func (fs *Filesystem) IsMounted() bool {
	return fs.mounted
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// inodeLocation centralizes the mixed 0-based/1-based arithmetic spec.md's
// design notes call out: inode 0 is reserved and never returned, inode
// numbers run [1, ninodes), and the disk block hosting inum is
// inum/inodesPerBlock + 1.
func inodeLocation(inum, inodesPerBlock int) (diskBlock, slot int) {
	blockIx := inum / inodesPerBlock
	slotIx := inum - inodesPerBlock*blockIx
	return blockIx + 1, slotIx
}

// reachableBlockCounts computes, from a byte size, how many direct pointers
// and how many indirect-block pointers of an inode are reachable, per
// spec.md invariant I2. nblocksUsed is min(ceil(size/blockSize), direct+P);
// it is only clamped so a corrupt oversize inode doesn't walk off the end of
// a sane indirect array during a best-effort operation (delete, read).
func reachableBlockCounts(size, blockSize, direct, pointersPerBlock int) (nblocksUsed, directCount, indirectCount int, oversize bool) {
	nblocksUsed = ceilDiv(size, blockSize)
	oversize = nblocksUsed > direct+pointersPerBlock
	if oversize {
		nblocksUsed = direct + pointersPerBlock
	}
	directCount = minInt(nblocksUsed, direct)
	if nblocksUsed > direct {
		indirectCount = nblocksUsed - direct
	}
	return nblocksUsed, directCount, indirectCount, oversize
}
