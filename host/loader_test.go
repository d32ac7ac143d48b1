package host_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/reglet-dev/wasm-prover/host"
)

// LoaderSuite tests the Loader with the real parser and validator.
type LoaderSuite struct {
	suite.Suite
	loader *host.Loader
}

func (s *LoaderSuite) SetupTest() {
	loader, err := host.NewLoader()
	s.Require().NoError(err)
	s.loader = loader
}

func (s *LoaderSuite) TestYAMLProgram() {
	yaml := `
name: is-seven
instructions:
  - op: read
  - op: push
    arg: 7
  - op: eq
  - op: write
  - op: halt
`
	doc, err := s.loader.LoadProgram([]byte(yaml))
	s.Require().NoError(err)
	s.JSONEq(`{"name":"is-seven","instructions":[{"op":"read"},{"op":"push","arg":7},{"op":"eq"},{"op":"write"},{"op":"halt"}]}`, string(doc))
}

func (s *LoaderSuite) TestJSONProgramIsCompacted() {
	doc, err := s.loader.LoadProgram([]byte("{\n  \"name\": \"h\",\n  \"instructions\": [ {\"op\": \"halt\"} ]\n}\n"))
	s.Require().NoError(err)
	s.Equal(`{"name":"h","instructions":[{"op":"halt"}]}`, string(doc))
}

func (s *LoaderSuite) TestUnknownOpcode() {
	_, err := s.loader.LoadProgram([]byte("name: p\ninstructions:\n  - op: jump\n"))
	s.Require().Error(err)
	s.Contains(err.Error(), "program validation failed")
}

func (s *LoaderSuite) TestMissingName() {
	_, err := s.loader.LoadProgram([]byte("instructions:\n  - op: halt\n"))
	s.Require().Error(err)
	s.Contains(err.Error(), "/name")
}

func (s *LoaderSuite) TestInvalidYAML() {
	_, err := s.loader.LoadProgram([]byte("name: p\ninstructions: {op: halt\n"))
	s.Require().Error(err)
	s.Contains(err.Error(), "failed to parse program")
}

func TestLoaderSuite(t *testing.T) {
	suite.Run(t, new(LoaderSuite))
}

func TestLoader_LoadProgramFile(t *testing.T) {
	loader, err := host.NewLoader()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "halt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: h\ninstructions:\n  - op: halt\n"), 0o600))

	doc, err := loader.LoadProgramFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"h","instructions":[{"op":"halt"}]}`, string(doc))

	_, err = loader.LoadProgramFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

type rejectAll struct{ err error }

func (r rejectAll) Validate([]byte) error { return r.err }

func TestLoader_CustomValidator(t *testing.T) {
	want := assert.AnError
	loader, err := host.NewLoader(host.WithValidator(rejectAll{err: want}))
	require.NoError(t, err)

	_, err = loader.LoadProgram([]byte("name: h\ninstructions:\n  - op: halt\n"))
	assert.ErrorIs(t, err, want)
}
