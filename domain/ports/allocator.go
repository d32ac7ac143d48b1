package ports

// Allocator hands out guest memory regions that cross the boundary.
type Allocator interface {
	// Allocate returns the address of a new region of size bytes.
	Allocate(size uint64) (uintptr, error)

	// Free releases a region previously returned by Allocate.
	// The size must match the size it was allocated with.
	Free(addr uintptr, size uint64) error
}
