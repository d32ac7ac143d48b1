package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/domain/ports"
)

// YamlProgramParser implements ProgramParser for YAML. JSON documents are
// accepted too, since YAML is a superset of JSON.
type YamlProgramParser struct{}

// NewYamlProgramParser creates a new YamlProgramParser.
func NewYamlProgramParser() ports.ProgramParser {
	return &YamlProgramParser{}
}

// Parse unmarshals a YAML or JSON document into a Program struct.
// Unknown keys are rejected.
func (p *YamlProgramParser) Parse(data []byte) (*entities.Program, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var program entities.Program
	if err := dec.Decode(&program); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty program document")
		}
		return nil, err
	}
	return &program, nil
}

// Canonical parses data and re-encodes it as the compact JSON a guest
// expects.
func Canonical(parser ports.ProgramParser, data []byte) ([]byte, error) {
	program, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse program: %w", err)
	}
	return json.Marshal(program)
}
