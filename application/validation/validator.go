// Package validation checks program documents against the program schema
// before they are handed to a guest.
package validation

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reglet-dev/wasm-prover/application/schema"
	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/domain/errors"
	"github.com/reglet-dev/wasm-prover/domain/ports"
)

// Compile-time interface compliance check
var _ ports.ProgramValidator = (*ProgramValidator)(nil)

// ProgramValidator implements validation using the generated program schema.
type ProgramValidator struct {
	schema *jsonschema.Schema
}

// NewProgramValidator compiles the program schema.
func NewProgramValidator() (*ProgramValidator, error) {
	doc, err := schema.ProgramSchema()
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schema.ProgramSchemaID, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("failed to add program schema: %w", err)
	}
	sch, err := compiler.Compile(schema.ProgramSchemaID)
	if err != nil {
		return nil, fmt.Errorf("invalid program schema: %w", err)
	}
	return &ProgramValidator{schema: sch}, nil
}

// Check validates document and reports every violation found. The error is
// non-nil only when document is not JSON at all.
func (v *ProgramValidator) Check(document []byte) (*entities.ValidationResult, error) {
	dec := json.NewDecoder(bytes.NewReader(document))
	dec.UseNumber()
	var obj interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, errors.InvalidData(errors.PhaseHost, "validate", err)
	}

	result := &entities.ValidationResult{Valid: true}
	err := v.schema.Validate(obj)
	if err == nil {
		return result, nil
	}

	result.Valid = false
	var ve *jsonschema.ValidationError
	if !stdErrors.As(err, &ve) {
		result.Errors = append(result.Errors, entities.ValidationError{Message: err.Error()})
		return result, nil
	}

	// Leaves carry the specific failures; inner nodes only say "doesn't validate".
	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   fieldName(e.InstanceLocation),
				Message: e.Message,
			})
			return
		}
		for _, c := range e.Causes {
			collect(c)
		}
	}
	collect(ve)
	return result, nil
}

// Validate implements ports.ProgramValidator.
func (v *ProgramValidator) Validate(document []byte) error {
	result, err := v.Check(document)
	if err != nil {
		return err
	}
	if result.Valid {
		return nil
	}
	first := result.Errors[0]
	return errors.New(errors.PhaseHost, errors.KindInvalidData).
		Op("validate").
		Value(result.Errors).
		Detail("program has %d schema violation(s), first at %s: %s", len(result.Errors), first.Field, first.Message).
		Build()
}

func fieldName(instanceLocation string) string {
	if instanceLocation == "" {
		return "/"
	}
	return instanceLocation
}
