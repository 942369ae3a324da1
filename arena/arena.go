// Package arena is the ownership registry for flushed message bytes. Buffers
// live in generations: one flush's worth of buffers is one generation, and
// the arena keeps the two most recent generations mapped. The consumer may
// still be reading generation N-1 addresses when generation N is created, so
// a generation is released only when the generation after next begins. That
// retention rule makes premature free structurally unreachable: an address is
// either mapped and stable, or no longer resolvable at all.
//
// The arena is single-threaded by construction; the producer runs all
// enqueue and flush work on one thread.
package arena

import "slices"

// baseAddress keeps zero out of the valid address range so a zero Region is
// always distinguishable from a real allocation.
const baseAddress uint64 = 0x100000

// addressAlign pads allocations so consecutive buffers never share an
// address, including zero-length ones.
const addressAlign = 8

// Region locates one owned buffer: its base address and exact byte length.
type Region struct {
	Address uint64
	Length  int
}

type allocation struct {
	addr uint64
	data []byte
}

// Arena allocates owned buffers with stable virtual addresses.
type Arena struct {
	next       uint64
	generation uint64
	current    []allocation
	previous   []allocation
}

// New creates an empty arena at generation zero.
func New() *Arena {
	return &Arena{next: baseAddress}
}

// Generation returns the current generation number. It increments on every
// Advance.
func (a *Arena) Generation() uint64 {
	return a.generation
}

// Advance begins a new generation. The generation before the previous one is
// unmapped; the previous generation stays readable because the consumer may
// still hold its addresses. Returns the new generation number.
func (a *Arena) Advance() uint64 {
	a.previous = a.current
	a.current = nil
	a.generation++
	return a.generation
}

// Alloc copies b into a freshly owned buffer in the current generation and
// returns its region. The copy is never aliased by later allocations.
func (a *Arena) Alloc(b []byte) Region {
	alloc := allocation{addr: a.next, data: slices.Clone(b)}
	a.current = append(a.current, alloc)

	step := uint64(len(b))
	step += addressAlign - step%addressAlign
	a.next += step

	return Region{Address: alloc.addr, Length: len(b)}
}

// ReadMemory returns length bytes starting at address, which must fall
// entirely within one buffer of the current or previous generation. Reads
// into released generations fail with ErrUnmappedRegion. A zero length read
// returns an empty slice without resolving the address, matching consumers
// that skip the read entirely for empty parts.
func (a *Arena) ReadMemory(address uint64, length int) ([]byte, error) {
	if length < 0 {
		return nil, ErrBadLength
	}
	if length == 0 {
		return []byte{}, nil
	}

	for _, gen := range [][]allocation{a.current, a.previous} {
		for _, alloc := range gen {
			end := alloc.addr + uint64(len(alloc.data))
			if address < alloc.addr || address >= end {
				continue
			}
			if address+uint64(length) > end {
				return nil, ErrBadLength
			}
			offset := address - alloc.addr
			return slices.Clone(alloc.data[offset : offset+uint64(length)]), nil
		}
	}

	return nil, ErrUnmappedRegion
}
