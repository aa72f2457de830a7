// Package ferrors defines the error taxonomy the filesystem core uses to
// distinguish the failure kinds a caller (or a diagnostic sink) needs to
// tell apart: an unmounted session, a corrupt superblock, a dangling block
// pointer, and so on. Every sentinel here can be wrapped with extra context
// without losing its identity, the same way the teacher's DiskoError does.
package ferrors

import "fmt"

// Kind identifies one of the error categories the filesystem core can
// surface. It implements the error interface directly so it can be used as
// a sentinel with errors.Is, and also builds richer DriverError values.
type Kind string

const (
	// NotMounted marks an operation other than Format attempted while no
	// filesystem is mounted.
	NotMounted Kind = "filesystem is not mounted"
	// AlreadyMounted marks a Format attempted while a filesystem is already
	// mounted.
	AlreadyMounted Kind = "filesystem is already mounted"
	// BadMagic marks a superblock whose magic number does not match
	// onwire.Magic.
	BadMagic Kind = "superblock magic number mismatch"
	// CorruptOversize marks an inode whose block count exceeds D+P.
	CorruptOversize Kind = "inode reaches further than direct+indirect capacity"
	// InvalidBlockRef marks a block pointer that falls outside the data
	// region (ninodeblocks, nblocks).
	InvalidBlockRef Kind = "block pointer outside data region"
	// InvalidInum marks an inode number outside [1, ninodes) or naming a
	// currently-invalid inode.
	InvalidInum Kind = "inode number out of range or not valid"
	// NoFreeInode marks a Create that finds every inode slot occupied.
	NoFreeInode Kind = "no free inode slot"
	// OutOfSpace is returned when the allocator's bitmap has no free block
	// left to hand out.
	OutOfSpace Kind = "no free data block"
	// DeviceTooSmall marks a device with fewer than three blocks, too small
	// for Format to lay down a filesystem.
	DeviceTooSmall Kind = "device has too few blocks to host a filesystem"
)

// Error implements the error interface.
func (k Kind) Error() string {
	return string(k)
}

// WithMessage attaches a free-form message to the sentinel, preserving the
// sentinel's identity for errors.Is checks.
func (k Kind) WithMessage(message string) DriverError {
	return wrappedError{kind: k, message: message}
}

// WrapError attaches an underlying error to the sentinel.
func (k Kind) WrapError(err error) DriverError {
	return wrappedError{
		kind:    k,
		message: fmt.Sprintf("%s: %s", k.Error(), err.Error()),
		wrapped: err,
	}
}

// DriverError is the richer error value produced by Kind.WithMessage and
// Kind.WrapError. It always unwraps back to its originating Kind so callers
// can branch on errors.Is(err, ferrors.InvalidBlockRef) regardless of how
// much context was layered on top.
type DriverError interface {
	error
	Kind() Kind
	Unwrap() error
}

type wrappedError struct {
	kind    Kind
	message string
	wrapped error
}

func (e wrappedError) Error() string {
	return e.message
}

func (e wrappedError) Kind() Kind {
	return e.kind
}

func (e wrappedError) Unwrap() error {
	if e.wrapped != nil {
		return e.wrapped
	}
	return e.kind
}

// Is matches the originating Kind even when Unwrap leads to a wrapped error
// instead.
func (e wrappedError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.kind
}
