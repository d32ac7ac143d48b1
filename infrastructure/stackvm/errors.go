package stackvm

import "fmt"

// ErrorCode represents a stack VM error code
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidProgram represents a program that fails validation
	ErrInvalidProgram

	// ErrExecution represents a runtime fault such as stack underflow
	ErrExecution

	// ErrInvalidTrace represents a trace that does not follow the program
	ErrInvalidTrace

	// ErrProofGeneration represents a failure while building a proof
	ErrProofGeneration

	// ErrInvalidProof represents a proof that cannot be decoded or checked
	ErrInvalidProof
)

var codeNames = map[ErrorCode]string{
	ErrUnknown:         "unknown",
	ErrInvalidProgram:  "invalid_program",
	ErrExecution:       "execution",
	ErrInvalidTrace:    "invalid_trace",
	ErrProofGeneration: "proof_generation",
	ErrInvalidProof:    "invalid_proof",
}

// String implements fmt.Stringer.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// VMError represents a stack VM error
type VMError struct {
	Cause   error
	Message string
	Code    ErrorCode
}

// Error returns the error message
func (e *VMError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("stackvm error [%s]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("stackvm error [%s]: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *VMError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *VMError) Is(target error) bool {
	t, ok := target.(*VMError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(code ErrorCode, cause error, format string, args ...any) *VMError {
	return &VMError{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}
