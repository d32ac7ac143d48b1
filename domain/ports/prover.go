package ports

import (
	"context"

	"github.com/reglet-dev/wasm-prover/domain/entities"
)

// Prover is the external execute/prove/verify collaborator.
// Artifacts are opaque JSON documents; only the implementation knows their
// structure.
type Prover interface {
	// Execute runs program on the public input args and returns its trace.
	Execute(ctx context.Context, program entities.Artifact, args []uint64) (entities.Artifact, error)

	// Prove produces a proof for trace under cfg.
	Prove(ctx context.Context, trace entities.Artifact, cfg entities.ProofConfig) (entities.Artifact, error)

	// Verify checks proof under cfg using the given preprocessed variant.
	// A nil error with false means the proof was decoded and rejected. A
	// non-nil error explains why the proof could not be checked at all;
	// callers treat it as a rejection.
	Verify(ctx context.Context, proof entities.Artifact, cfg entities.ProofConfig, variant entities.PreprocessedVariant) (bool, error)
}
