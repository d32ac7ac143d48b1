// Package entities provides the core domain types shared by both sides of the
// guest/host boundary: call tokens, opaque artifacts, the result envelope,
// diagnostic severities, and the proof-system configuration.
//
// These types double as JSON wire DTOs. Nothing in this package touches linear
// memory; see internal/abi for that.
package entities
