// Package schema generates JSON Schemas for the documents the prover accepts.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/reglet-dev/wasm-prover/domain/entities"
)

// ProgramSchemaID is the $id of the program schema.
const ProgramSchemaID = "https://reglet.dev/schemas/wasm-prover/program.json"

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func GenerateSchema(v interface{}) ([]byte, error) {
	return generate(v, "")
}

// ProgramSchema returns the JSON Schema that execute's program document
// must satisfy.
func ProgramSchema() ([]byte, error) {
	return generate(&entities.Program{}, ProgramSchemaID)
}

func generate(v interface{}, id jsonschema.ID) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	schema := reflector.Reflect(v)
	if id != "" {
		schema.ID = id
	}

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}
