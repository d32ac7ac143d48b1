package ports

import "github.com/reglet-dev/wasm-prover/domain/entities"

// ResultSink hands a finished result region to the host.
//
// After Deliver returns, the region at addr belongs to the host, which must
// release it through the allocator's free with the same length.
type ResultSink interface {
	Deliver(token entities.CallToken, addr uintptr, length uint64)
}
