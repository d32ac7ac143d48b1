package ports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/wasm-prover/domain/entities"
)

// MockProver is a mock implementation of Prover for testing.
type MockProver struct {
	ExecuteFunc func(ctx context.Context, program entities.Artifact, args []uint64) (entities.Artifact, error)
	ProveFunc   func(ctx context.Context, trace entities.Artifact, cfg entities.ProofConfig) (entities.Artifact, error)
	VerifyFunc  func(ctx context.Context, proof entities.Artifact, cfg entities.ProofConfig, variant entities.PreprocessedVariant) (bool, error)
}

func (m *MockProver) Execute(ctx context.Context, program entities.Artifact, args []uint64) (entities.Artifact, error) {
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, program, args)
	}
	return entities.Artifact(`{"rows":[]}`), nil
}

func (m *MockProver) Prove(ctx context.Context, trace entities.Artifact, cfg entities.ProofConfig) (entities.Artifact, error) {
	if m.ProveFunc != nil {
		return m.ProveFunc(ctx, trace, cfg)
	}
	return entities.Artifact(`{"proof":true}`), nil
}

func (m *MockProver) Verify(ctx context.Context, proof entities.Artifact, cfg entities.ProofConfig, variant entities.PreprocessedVariant) (bool, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, proof, cfg, variant)
	}
	return true, nil
}

// Compile-time interface check
var _ Prover = (*MockProver)(nil)

func TestMockProver_ImplementsInterface(t *testing.T) {
	var p Prover = &MockProver{}
	require.NotNil(t, p)
}

func TestMockProver(t *testing.T) {
	ctx := context.Background()

	t.Run("default behavior", func(t *testing.T) {
		mock := &MockProver{}

		trace, err := mock.Execute(ctx, entities.Artifact(`{}`), []uint64{1})
		require.NoError(t, err)
		assert.JSONEq(t, `{"rows":[]}`, string(trace))

		ok, err := mock.Verify(ctx, entities.Artifact(`{}`), entities.SecureProofConfig(), entities.PreprocessedCanonical)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("custom behavior", func(t *testing.T) {
		mock := &MockProver{
			ProveFunc: func(_ context.Context, _ entities.Artifact, cfg entities.ProofConfig) (entities.Artifact, error) {
				if cfg.PowBits > 20 {
					return nil, errors.New("too expensive")
				}
				return entities.Artifact(`{}`), nil
			},
		}

		_, err := mock.Prove(ctx, entities.Artifact(`{}`), entities.SecureProofConfig())
		assert.EqualError(t, err, "too expensive")
	})
}
