package entities

import "fmt"

// FriConfig holds the low-degree test parameters.
type FriConfig struct {
	LogLastLayerDegreeBound uint32 `json:"log_last_layer_degree_bound"`
	LogBlowupFactor         uint32 `json:"log_blowup_factor" validate:"lte=4"`
	NQueries                uint32 `json:"n_queries" validate:"gte=1,lte=256"`
}

// ProofConfig is the proof-system security configuration.
//
// A module build proves and verifies under one fixed configuration; hosts
// cannot supply their own.
type ProofConfig struct {
	Fri     FriConfig `json:"fri_config"`
	PowBits uint32    `json:"pow_bits" validate:"lte=32"`
}

// SecureProofConfig is the configuration every exported prove/verify uses.
func SecureProofConfig() ProofConfig {
	return ProofConfig{
		PowBits: 26,
		Fri: FriConfig{
			LogLastLayerDegreeBound: 0,
			LogBlowupFactor:         1,
			NQueries:                70,
		},
	}
}

// String implements fmt.Stringer.
func (c ProofConfig) String() string {
	return fmt.Sprintf("pow_bits=%d blowup=2^%d queries=%d last_layer=2^%d",
		c.PowBits, c.Fri.LogBlowupFactor, c.Fri.NQueries, c.Fri.LogLastLayerDegreeBound)
}

// PreprocessedVariant selects the fixed preprocessed tables a verifier uses.
type PreprocessedVariant string

const (
	// PreprocessedCanonical includes the Pedersen tables.
	PreprocessedCanonical PreprocessedVariant = "canonical"
	// PreprocessedCanonicalWithoutPedersen omits them.
	PreprocessedCanonicalWithoutPedersen PreprocessedVariant = "canonical_without_pedersen"
)

// VariantFor maps the verify flag onto a preprocessed variant.
func VariantFor(withPedersen bool) PreprocessedVariant {
	if withPedersen {
		return PreprocessedCanonical
	}
	return PreprocessedCanonicalWithoutPedersen
}

// Covers reports whether a verifier using v has every table a proof built
// with other relies on.
func (v PreprocessedVariant) Covers(other PreprocessedVariant) bool {
	switch v {
	case PreprocessedCanonical:
		return other == PreprocessedCanonical || other == PreprocessedCanonicalWithoutPedersen
	case PreprocessedCanonicalWithoutPedersen:
		return other == PreprocessedCanonicalWithoutPedersen
	default:
		return false
	}
}
