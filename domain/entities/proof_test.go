package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecureProofConfig(t *testing.T) {
	cfg := SecureProofConfig()

	assert.Equal(t, uint32(26), cfg.PowBits)
	assert.Equal(t, uint32(1), cfg.Fri.LogBlowupFactor)
	assert.Equal(t, uint32(70), cfg.Fri.NQueries)
	assert.Equal(t, uint32(0), cfg.Fri.LogLastLayerDegreeBound)
	assert.Equal(t, cfg, SecureProofConfig(), "the configuration must be fixed")
}

func TestVariantFor(t *testing.T) {
	assert.Equal(t, PreprocessedCanonical, VariantFor(true))
	assert.Equal(t, PreprocessedCanonicalWithoutPedersen, VariantFor(false))
}

func TestPreprocessedVariant_Covers(t *testing.T) {
	tests := []struct {
		name     string
		verifier PreprocessedVariant
		proof    PreprocessedVariant
		want     bool
	}{
		{"canonical covers itself", PreprocessedCanonical, PreprocessedCanonical, true},
		{"canonical covers without pedersen", PreprocessedCanonical, PreprocessedCanonicalWithoutPedersen, true},
		{"without pedersen covers itself", PreprocessedCanonicalWithoutPedersen, PreprocessedCanonicalWithoutPedersen, true},
		{"without pedersen lacks pedersen tables", PreprocessedCanonicalWithoutPedersen, PreprocessedCanonical, false},
		{"unknown proof variant", PreprocessedCanonical, PreprocessedVariant("other"), false},
		{"unknown verifier variant", PreprocessedVariant(""), PreprocessedCanonical, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.verifier.Covers(tt.proof))
		})
	}
}
