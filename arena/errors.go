package arena

import "errors"

var (
	// ErrUnmappedRegion is returned by ReadMemory when the address does not
	// fall inside a live generation. Hitting it means the caller held an
	// address across more than one flush.
	ErrUnmappedRegion = errors.New("read of unmapped or released memory")

	// ErrBadLength is returned by ReadMemory for negative lengths or reads
	// that run past the end of a buffer.
	ErrBadLength = errors.New("read length out of range")
)
