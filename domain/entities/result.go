package entities

import "encoding/json"

// Response is the envelope delivered for every call.
//
// For execute and prove, Value holds the produced artifact. For verify, OK is
// the verdict and Value is empty; an invalid proof is {"ok":false} with no
// Error. Error is set only when the call could not complete.
type Response struct {
	// Value carries the operation output when OK is true.
	Value json.RawMessage `json:"value,omitempty"`

	// Error contains structured error information for failed calls.
	Error *ErrorDetail `json:"error,omitempty"`

	// OK reports success (or, for verify, acceptance of the proof).
	OK bool `json:"ok"`
}

// ResponseValue creates a successful Response carrying an artifact.
func ResponseValue(v json.RawMessage) Response {
	return Response{OK: true, Value: v}
}

// ResponseVerdict creates a verification Response.
func ResponseVerdict(ok bool) Response {
	return Response{OK: ok}
}

// ResponseError creates a failed Response with the given error details.
func ResponseError(err *ErrorDetail) Response {
	return Response{Error: err}
}

// Failed reports whether the call itself failed, as opposed to a negative
// verification verdict.
func (r Response) Failed() bool {
	return r.Error != nil
}

// CheckResult is one line of a self-test report.
type CheckResult struct {
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
	Passed bool   `json:"passed"`
}

// SelfTestReport is the Value of a self_test response.
type SelfTestReport struct {
	Checks []CheckResult `json:"checks"`
}

// Passed reports whether every check passed.
func (r SelfTestReport) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return len(r.Checks) > 0
}
