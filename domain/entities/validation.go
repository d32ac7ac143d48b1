package entities

// ValidationResult is the outcome of checking a program document against
// the program schema.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError is one schema violation. Field is a JSON pointer into the
// document.
type ValidationError struct {
	Field   string
	Message string
}
