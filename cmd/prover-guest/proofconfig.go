//go:build wasip1 && !proverlight

package main

import "github.com/reglet-dev/wasm-prover/domain/entities"

func proofConfig() entities.ProofConfig {
	return entities.SecureProofConfig()
}
