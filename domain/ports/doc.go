// Package ports defines the interfaces the boundary protocol depends on.
// These ports enable dependency inversion: the call protocol and the
// operation façade depend on abstractions, and the wasm host imports, the
// native test fakes, and the reference collaborator implement them.
package ports
