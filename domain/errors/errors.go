// Package errors provides the structured error type used across the boundary.
//
// Errors are categorized by Phase (where in a call the error occurred) and
// Kind (what went wrong). Kinds split into two families: boundary contract
// violations, which abort the call, and payload or collaborator failures,
// which are delivered to the host as a structured error result.
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidData).
//		Op("prove").
//		Detail("trace is not valid JSON").
//		Cause(jsonErr).
//		Build()
//
// All errors support errors.Is/As. Two *Error values match under errors.Is
// when their Phase and Kind agree.
package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/reglet-dev/wasm-prover/domain/entities"
)

// Phase indicates where in a call the error occurred.
type Phase string

const (
	PhaseDecode   Phase = "decode"   // input buffer to domain value
	PhaseProcess  Phase = "process"  // collaborator execute/prove/verify
	PhaseEncode   Phase = "encode"   // domain value to result bytes
	PhaseDeliver  Phase = "deliver"  // handing the result to the host
	PhaseAllocate Phase = "allocate" // allocator bridge
	PhaseEntropy  Phase = "entropy"  // entropy bridge
	PhaseHost     Phase = "host"     // host-side runner
)

// Kind categorizes the error.
type Kind string

const (
	KindInvalidUTF8    Kind = "invalid_utf8"
	KindOverflow       Kind = "overflow"
	KindNilPointer     Kind = "nil_pointer"
	KindAllocation     Kind = "allocation"
	KindInvalidData    Kind = "invalid_data"
	KindInvalidInput   Kind = "invalid_input"
	KindCollaborator   Kind = "collaborator"
	KindUnsupported    Kind = "unsupported"
	KindDegenerate     Kind = "degenerate"
	KindNotFound       Kind = "not_found"
	KindNotInitialized Kind = "not_initialized"
	KindInternal       Kind = "internal"
)

// fatalKinds are boundary contract violations: the host broke its side of
// the protocol, so there is nothing meaningful to deliver.
var fatalKinds = map[Kind]bool{
	KindInvalidUTF8: true,
	KindOverflow:    true,
	KindNilPointer:  true,
	KindAllocation:  true,
}

// Error is the structured error type used throughout the module.
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Fatal reports whether the error is a boundary contract violation.
func (e *Error) Fatal() bool {
	return fatalKinds[e.Kind]
}

// ToErrorDetail implements DetailedError.
func (e *Error) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    string(e.Kind),
		Code:    string(e.Phase),
		Op:      e.Op,
	}
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

// Op sets the operation the error belongs to.
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Value sets the offending value.
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	e := b.err
	return &e
}

// InvalidUTF8 reports a text buffer that is not well-formed UTF-8.
func InvalidUTF8(phase Phase, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// Overflow reports a boundary integer that does not fit the target type.
func Overflow(phase Phase, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// NilPointer reports a null address paired with a non-zero length.
func NilPointer(phase Phase, length uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Detail: fmt.Sprintf("null address with non-zero length %d", length),
		Value:  length,
	}
}

// AllocationFailed reports an allocation the allocator refused.
func AllocationFailed(size uint64, reason string) *Error {
	return &Error{
		Phase:  PhaseAllocate,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes: %s", size, reason),
		Value:  size,
	}
}

// InvalidData reports a payload that decoded as text but not as the expected value.
func InvalidData(phase Phase, op string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Op:     op,
		Detail: "malformed payload",
		Cause:  cause,
	}
}

// Collaborator wraps a failure reported by the external execute/prove logic.
func Collaborator(op string, cause error) *Error {
	return &Error{
		Phase:  PhaseProcess,
		Kind:   KindCollaborator,
		Op:     op,
		Detail: op + " failed",
		Cause:  cause,
	}
}

// Unsupported creates an unsupported operation error.
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// IsFatal reports whether err, or any error it wraps, is a boundary contract
// violation that must abort the call rather than be delivered.
func IsFatal(err error) bool {
	var e *Error
	if stdErrors.As(err, &e) {
		return e.Fatal()
	}
	return false
}

// DetailedError is implemented by errors that can render themselves onto
// the wire. New error types only need to implement this interface to be
// delivered with their own type and code.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to the wire ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    string(KindInternal),
	}
}
