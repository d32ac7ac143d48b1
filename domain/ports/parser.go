package ports

import "github.com/reglet-dev/wasm-prover/domain/entities"

// ProgramParser parses a program document (YAML or JSON) into a Program.
type ProgramParser interface {
	// Parse unmarshals the document into a Program struct.
	Parse(data []byte) (*entities.Program, error)
}
