package ports

// ProgramValidator validates program documents against the program schema.
type ProgramValidator interface {
	// Validate checks the JSON document and returns every violation found.
	Validate(document []byte) error
}
