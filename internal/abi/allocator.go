package abi

import (
	"math"
	"sync"
	"unsafe"

	"github.com/reglet-dev/wasm-prover/domain/errors"
)

const (
	// DefaultMaxTotalAllocations bounds the live bytes handed out at once.
	DefaultMaxTotalAllocations = 256 * 1024 * 1024
	// DefaultMaxRetainedBytes bounds the freed bytes kept for reuse.
	DefaultMaxRetainedBytes = 8 * 1024 * 1024

	alignment = 8
)

// zeroSentinel backs every zero-size allocation so that allocate(0) returns
// a non-null, aligned address that is never written through.
var zeroSentinel [1]uint64

//nolint:gosec // G103: address of a package-level variable is stable
var sentinelAddr = uintptr(unsafe.Pointer(&zeroSentinel[0]))

type block struct {
	backing []uint64
	size    uint64
}

func (b block) addr() uintptr {
	//nolint:gosec // G103: the backing array is pinned by the block table
	return uintptr(unsafe.Pointer(&b.backing[0]))
}

// Allocator hands out 8-aligned regions and records the size of every live
// one, so a free with an unknown address or a wrong size is caught instead
// of corrupting memory.
//
// Freed regions are kept on per-size free lists up to a retention limit and
// handed out again by later allocations of the same size.
type Allocator struct {
	blocks      map[uintptr]block
	freeLists   map[uint64][]block
	maxTotal    uint64
	maxRetained uint64
	live        uint64
	retained    uint64
	mu          sync.Mutex
}

// AllocatorOption configures an Allocator.
type AllocatorOption func(*Allocator)

// WithMaxTotalAllocations sets the ceiling on live bytes.
// Zero is ignored.
func WithMaxTotalAllocations(limit uint64) AllocatorOption {
	return func(a *Allocator) {
		if limit > 0 {
			a.maxTotal = limit
		}
	}
}

// WithMaxRetainedBytes sets how many freed bytes are kept for reuse.
// Zero disables reuse.
func WithMaxRetainedBytes(limit uint64) AllocatorOption {
	return func(a *Allocator) {
		a.maxRetained = limit
	}
}

// NewAllocator creates an allocator with the given options applied.
func NewAllocator(opts ...AllocatorOption) *Allocator {
	a := &Allocator{
		blocks:      make(map[uintptr]block),
		freeLists:   make(map[uint64][]block),
		maxTotal:    DefaultMaxTotalAllocations,
		maxRetained: DefaultMaxRetainedBytes,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultAllocator = NewAllocator()

// Default returns the allocator behind the allocate and free exports.
func Default() *Allocator {
	return defaultAllocator
}

// Allocate returns the address of a zeroed region of size bytes.
// A zero size returns a sentinel address that must not be written through.
func (a *Allocator) Allocate(size uint64) (uintptr, error) {
	if size == 0 {
		return sentinelAddr, nil
	}
	if size > math.MaxInt-alignment {
		return 0, errors.Overflow(errors.PhaseAllocate, size, "int")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if size > a.maxTotal || a.live > a.maxTotal-size {
		return 0, errors.AllocationFailed(size, "allocation limit exceeded")
	}

	var b block
	if list := a.freeLists[size]; len(list) > 0 {
		b = list[len(list)-1]
		a.freeLists[size] = list[:len(list)-1]
		a.retained -= size
		clear(b.backing)
	} else {
		words := (size + alignment - 1) / alignment
		b = block{backing: make([]uint64, words), size: size}
	}

	addr := b.addr()
	a.blocks[addr] = b
	a.live += size
	return addr, nil
}

// Free releases the region at addr. It is a no-op when addr or size is zero
// and for the zero-size sentinel.
func (a *Allocator) Free(addr uintptr, size uint64) error {
	if addr == 0 || size == 0 || addr == sentinelAddr {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.blocks[addr]
	if !ok {
		return errors.New(errors.PhaseAllocate, errors.KindInvalidInput).
			Value(addr).
			Detail("free of unknown address %#x", addr).
			Build()
	}
	if b.size != size {
		return errors.New(errors.PhaseAllocate, errors.KindInvalidInput).
			Value(size).
			Detail("free of %#x with size %d, allocated with %d", addr, size, b.size).
			Build()
	}

	delete(a.blocks, addr)
	a.live -= size

	if a.retained+size <= a.maxRetained {
		a.freeLists[size] = append(a.freeLists[size], b)
		a.retained += size
	}
	return nil
}

// SizeOf reports the size a live region was allocated with.
func (a *Allocator) SizeOf(addr uintptr) (uint64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.blocks[addr]
	return b.size, ok
}

// Stats returns the number of live regions and their total size in bytes.
func (a *Allocator) Stats() (count int, bytes uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.blocks), a.live
}

// Reset drops every live and retained region.
func (a *Allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	clear(a.blocks)
	clear(a.freeLists)
	a.live = 0
	a.retained = 0
}
