package log

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/domain/ports"
)

type sinkHolder struct {
	sink ports.DiagnosticSink
}

var (
	installed atomic.Bool
	current   atomic.Pointer[sinkHolder]
)

// Install makes sink the destination for slog's default logger, for Mark and
// Measure, and for panics caught by Guard. Only the first call has an
// effect; later calls return false and leave the installed sink in place.
func Install(sink ports.DiagnosticSink, opts ...HandlerOption) bool {
	if sink == nil || !installed.CompareAndSwap(false, true) {
		return false
	}
	current.Store(&sinkHolder{sink: sink})
	slog.SetDefault(slog.New(NewHandler(sink, opts...)))
	return true
}

// Sink returns the installed sink, or one that discards everything.
func Sink() ports.DiagnosticSink {
	if h := current.Load(); h != nil {
		return h.sink
	}
	return discard{}
}

// Mark records a named point in time on the installed sink.
func Mark(name string) {
	Sink().Mark(name)
}

// Measure records the span between two marks on the installed sink.
func Measure(name, startMark, endMark string) {
	Sink().Measure(name, startMark, endMark)
}

// reported wraps a panic value whose error line has already been emitted,
// so an enclosing Guard re-panics without logging it again.
type reported struct {
	value any
}

func (r reported) String() string {
	return fmt.Sprint(r.value)
}

// Unwrap returns the wrapped value when it is an error.
func (r reported) Unwrap() error {
	if err, ok := r.value.(error); ok {
		return err
	}
	return nil
}

func (r reported) Error() string {
	return r.String()
}

// Guard must be deferred directly by every export:
//
//	defer log.Guard("execute")
//
// It catches a panic, emits a single error line naming the export and the
// panic value, and panics again so the instance aborts.
func Guard(name string) {
	r := recover()
	if r == nil {
		return
	}
	if _, ok := r.(reported); ok {
		panic(r)
	}
	emitPanic(name, r)
	panic(reported{value: r})
}

// Abort logs err as the reason op cannot continue and aborts the call.
func Abort(op string, err error) {
	emitPanic(op, err)
	panic(reported{value: err})
}

func emitPanic(name string, value any) {
	sink := Sink()
	sink.Log(entities.SeverityError, fmt.Sprintf("panic in %s: %v", name, value))
	sink.Log(entities.SeverityDebug, string(debug.Stack()))
}

type discard struct{}

func (discard) Log(entities.Severity, string)  {}
func (discard) Mark(string)                    {}
func (discard) Measure(string, string, string) {}
