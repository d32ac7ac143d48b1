package entities

import "strings"

// ErrorDetail is the error object inside a failed Response.
//
// Type is the error kind ("invalid_data", "collaborator", "unsupported",
// "internal", ...) and Code the phase that failed ("decode", "process", ...).
type ErrorDetail struct {
	// Cause is the error this one was raised from, if it was structured too.
	Cause *ErrorDetail `json:"cause,omitempty"`

	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Op      string `json:"op,omitempty"`
	Message string `json:"message"`
}

// Error renders "<type>: <message> [<code>]: <cause>". The type is left out
// for internal errors.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	if e.Type != "" && e.Type != "internal" {
		b.WriteString(e.Type)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Code != "" {
		b.WriteString(" [" + e.Code + "]")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// NewErrorDetail returns an ErrorDetail of the given type.
func NewErrorDetail(errorType, message string) *ErrorDetail {
	return &ErrorDetail{Type: errorType, Message: message}
}

// WithCode sets the phase code and returns the receiver.
func (e *ErrorDetail) WithCode(code string) *ErrorDetail {
	e.Code = code
	return e
}
