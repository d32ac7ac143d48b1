//go:build wasip1

// Command prover-guest is the prover module a host loads.
//
// It wires the guest façade to the host imports and exposes execute, prove,
// verify, and self_test next to the allocate and free exports.
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o prover.wasm ./cmd/prover-guest
//
// Add -tags proverlight for a module that proves under a cheap, insecure
// configuration, for tests only.
package main

import (
	"github.com/reglet-dev/wasm-prover/application/guest"
	"github.com/reglet-dev/wasm-prover/entropy"
	"github.com/reglet-dev/wasm-prover/infrastructure/stackvm"
	"github.com/reglet-dev/wasm-prover/infrastructure/wasm"
	"github.com/reglet-dev/wasm-prover/log"
)

var module *guest.Module

func init() {
	log.Install(wasm.NewHostSink())
	entropy.Install(wasm.NewHostEntropy())
	module = guest.New(stackvm.New(), wasm.NewHostResultSink(), guest.WithProofConfig(proofConfig()))
}

func main() {}

//go:wasmexport execute
func execute(token, programPtr, programLen, argsPtr, argsCount uint64) {
	module.Execute(token, programPtr, programLen, argsPtr, argsCount)
}

//go:wasmexport prove
func prove(token, tracePtr, traceLen uint64) {
	module.Prove(token, tracePtr, traceLen)
}

//go:wasmexport verify
func verify(token, proofPtr, proofLen uint64, withPedersen uint32) {
	module.Verify(token, proofPtr, proofLen, withPedersen)
}

//go:wasmexport self_test
func selfTest(token uint64) {
	module.SelfTest(token)
}
