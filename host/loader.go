package host

import (
	"fmt"
	"os"
	"strings"

	"github.com/reglet-dev/wasm-prover/application/validation"
	"github.com/reglet-dev/wasm-prover/domain/ports"
	"github.com/reglet-dev/wasm-prover/infrastructure/parser"
)

// loaderConfig holds configuration for the Loader.
type loaderConfig struct {
	parser    ports.ProgramParser
	validator ports.ProgramValidator
}

// Loader orchestrates the program loading pipeline: parse YAML or JSON,
// validate the canonical JSON against the program schema, and hand back
// the bytes execute expects.
type Loader struct {
	config loaderConfig
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

// WithParser sets a custom program parser.
func WithParser(p ports.ProgramParser) LoaderOption {
	return func(c *loaderConfig) {
		c.parser = p
	}
}

// WithValidator sets a custom program validator.
func WithValidator(v ports.ProgramValidator) LoaderOption {
	return func(c *loaderConfig) {
		c.validator = v
	}
}

// NewLoader creates a new Loader with defaults.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	cfg := loaderConfig{
		parser: parser.NewYamlProgramParser(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.validator == nil {
		v, err := validation.NewProgramValidator()
		if err != nil {
			return nil, fmt.Errorf("failed to create program validator: %w", err)
		}
		cfg.validator = v
	}
	return &Loader{config: cfg}, nil
}

// LoadProgram parses and validates raw and returns canonical program JSON.
func (l *Loader) LoadProgram(raw []byte) ([]byte, error) {
	doc, err := parser.Canonical(l.config.parser, raw)
	if err != nil {
		return nil, err
	}
	if err := l.config.validator.Validate(doc); err != nil {
		return nil, fmt.Errorf("program validation failed: %w", err)
	}
	return doc, nil
}

// LoadProgramFile reads path and loads it. See LoadProgram.
func (l *Loader) LoadProgramFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	doc, err := l.LoadProgram(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", strings.TrimSpace(path), err)
	}
	return doc, nil
}
