// Package abi moves bytes across the guest's linear memory boundary.
//
// Every integer that crosses the boundary is a u64. This package narrows
// those integers to native types with overflow checks, turns an
// (address, length) pair into a byte view in exactly one place, and owns
// the allocator the host uses to hand buffers to the guest.
//
// The allocator and the marshaller are plain Go and run natively in tests;
// only the allocate/free exports are built for wasip1.
package abi
