// Package guest is the operation façade of the prover module.
//
// A Module turns the integer arguments of an exported entry point into
// validated inputs, hands them to a ports.Prover, and delivers exactly one
// JSON envelope per call through the protocol package. The wasm exports in
// cmd/prover-guest are thin wrappers around a Module's methods.
package guest
