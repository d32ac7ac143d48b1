//go:build wasip1 && proverlight

package main

import "github.com/reglet-dev/wasm-prover/domain/entities"

// proofConfig keeps proving fast for host integration tests. Proofs made
// under it are not sound.
func proofConfig() entities.ProofConfig {
	return entities.ProofConfig{
		PowBits: 8,
		Fri: entities.FriConfig{
			LogBlowupFactor: 1,
			NQueries:        16,
		},
	}
}
