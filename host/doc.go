// Package host is a reference host for the prover guest module.
//
// It runs the guest on wazero, implements the "host" import module the guest
// links against (log, mark, measure, deliver_result, fill_entropy), and
// drives the entry points the way a real host would: stage inputs through
// the guest's allocate export, call with a fresh call token, collect the
// result delivered for that token, copy it out, and free it.
//
// It exists so the boundary can be exercised end to end. It is not a
// production host.
package host
