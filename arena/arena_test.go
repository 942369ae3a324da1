package arena_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/repl-bridge/kernel/arena"
)

func TestAlloc_ReadBack(t *testing.T) {
	a := arena.New()
	a.Advance()

	payload := []byte("display message bytes")
	region := a.Alloc(payload)

	if region.Length != len(payload) {
		t.Errorf("Length = %d, want %d", region.Length, len(payload))
	}
	if region.Address == 0 {
		t.Error("Address = 0, want nonzero")
	}

	got, err := a.ReadMemory(region.Address, region.Length)
	if err != nil {
		t.Fatalf("ReadMemory failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("ReadMemory = %q, want %q", got, payload)
	}
}

func TestAlloc_CopiesInput(t *testing.T) {
	a := arena.New()
	a.Advance()

	payload := []byte("original")
	region := a.Alloc(payload)
	payload[0] = 'X'

	got, err := a.ReadMemory(region.Address, region.Length)
	if err != nil {
		t.Fatalf("ReadMemory failed: %v", err)
	}
	if string(got) != "original" {
		t.Errorf("ReadMemory = %q, want %q (arena must own its bytes)", got, "original")
	}
}

func TestAlloc_UniqueAddresses(t *testing.T) {
	a := arena.New()
	a.Advance()

	seen := map[uint64]bool{}
	for i := 0; i < 10; i++ {
		region := a.Alloc(nil)
		if seen[region.Address] {
			t.Fatalf("address %#x allocated twice", region.Address)
		}
		seen[region.Address] = true
	}
}

func TestReadMemory_Subrange(t *testing.T) {
	a := arena.New()
	a.Advance()

	region := a.Alloc([]byte("abcdefgh"))

	got, err := a.ReadMemory(region.Address+2, 3)
	if err != nil {
		t.Fatalf("ReadMemory failed: %v", err)
	}
	if string(got) != "cde" {
		t.Errorf("ReadMemory = %q, want %q", got, "cde")
	}
}

func TestReadMemory_ZeroLength(t *testing.T) {
	a := arena.New()

	got, err := a.ReadMemory(0xdead, 0)
	if err != nil {
		t.Fatalf("ReadMemory failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d bytes, want 0", len(got))
	}
}

func TestReadMemory_PastEnd(t *testing.T) {
	a := arena.New()
	a.Advance()

	region := a.Alloc([]byte("abc"))

	if _, err := a.ReadMemory(region.Address, region.Length+1); !errors.Is(err, arena.ErrBadLength) {
		t.Errorf("got error %v, want ErrBadLength", err)
	}
}

func TestReadMemory_UnmappedAddress(t *testing.T) {
	a := arena.New()

	if _, err := a.ReadMemory(0x1, 1); !errors.Is(err, arena.ErrUnmappedRegion) {
		t.Errorf("got error %v, want ErrUnmappedRegion", err)
	}
}

// Generation N-1 must stay readable when generation N begins; generation N-2
// must not.
func TestTwoGenerationRetention(t *testing.T) {
	a := arena.New()

	a.Advance() // generation 1
	gen1 := a.Alloc([]byte("first flush"))

	a.Advance() // generation 2
	gen2 := a.Alloc([]byte("second flush"))

	// Both recent generations readable.
	if _, err := a.ReadMemory(gen1.Address, gen1.Length); err != nil {
		t.Fatalf("generation N-1 read failed: %v", err)
	}
	if _, err := a.ReadMemory(gen2.Address, gen2.Length); err != nil {
		t.Fatalf("generation N read failed: %v", err)
	}

	a.Advance() // generation 3 releases generation 1

	if _, err := a.ReadMemory(gen1.Address, gen1.Length); !errors.Is(err, arena.ErrUnmappedRegion) {
		t.Errorf("generation N-2 read: got error %v, want ErrUnmappedRegion", err)
	}
	if _, err := a.ReadMemory(gen2.Address, gen2.Length); err != nil {
		t.Errorf("generation N-1 read failed after advance: %v", err)
	}
}

func TestGeneration_Increments(t *testing.T) {
	a := arena.New()

	if got := a.Generation(); got != 0 {
		t.Errorf("Generation = %d, want 0", got)
	}
	if got := a.Advance(); got != 1 {
		t.Errorf("Advance = %d, want 1", got)
	}
	if got := a.Advance(); got != 2 {
		t.Errorf("Advance = %d, want 2", got)
	}
}
