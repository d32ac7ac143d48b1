package host

import (
	"context"
	"io"
	"math"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/reglet-dev/wasm-prover/domain/entities"
)

// hostModuleName is the import module the guest links against.
const hostModuleName = "host"

func (r *Runner) registerHostModule(ctx context.Context) error {
	_, err := r.runtime.NewHostModuleBuilder(hostModuleName).
		NewFunctionBuilder().WithFunc(r.hostLog).Export("log").
		NewFunctionBuilder().WithFunc(r.hostMark).Export("mark").
		NewFunctionBuilder().WithFunc(r.hostMeasure).Export("measure").
		NewFunctionBuilder().WithFunc(r.hostDeliverResult).Export("deliver_result").
		NewFunctionBuilder().WithFunc(r.hostFillEntropy).Export("fill_entropy").
		Instantiate(ctx)
	return err
}

func (r *Runner) hostLog(_ context.Context, m api.Module, severity uint32, ptr, length uint64) {
	sev := entities.Severity(severity)
	if !r.cfg.keeps(sev) {
		return
	}
	logger := r.cfg.logger.With(zap.String("guest", m.Name()))
	data, ok := readGuest(m, ptr, length)
	if !ok {
		logger.Warn("guest log line outside memory", zap.Uint64("ptr", ptr), zap.Uint64("len", length))
		return
	}
	logGuestLine(logger, sev, string(data))
}

func (r *Runner) hostMark(_ context.Context, m api.Module, ptr, length uint64) {
	name, ok := readGuest(m, ptr, length)
	if !ok || r.cfg.timeline == nil {
		return
	}
	r.cfg.timeline.Mark(string(name))
}

func (r *Runner) hostMeasure(_ context.Context, m api.Module, namePtr, nameLen, startPtr, startLen, endPtr, endLen uint64) {
	name, ok1 := readGuest(m, namePtr, nameLen)
	start, ok2 := readGuest(m, startPtr, startLen)
	end, ok3 := readGuest(m, endPtr, endLen)
	if !ok1 || !ok2 || !ok3 || r.cfg.timeline == nil {
		return
	}
	if measure, ok := r.cfg.timeline.Measure(string(name), string(start), string(end)); ok {
		r.cfg.logger.Debug("guest measure",
			zap.String("guest", m.Name()),
			zap.String("name", measure.Name),
			zap.Duration("duration", measure.Duration))
	}
}

func (r *Runner) hostDeliverResult(_ context.Context, m api.Module, token, ptr, length uint64) {
	inst := r.lookup(m.Name())
	if inst == nil {
		r.cfg.logger.Warn("result from unknown guest", zap.String("guest", m.Name()), zap.Uint64("token", token))
		return
	}
	data, ok := readGuest(m, ptr, length)
	if !ok {
		r.cfg.logger.Error("result region outside memory",
			zap.String("guest", m.Name()), zap.Uint64("token", token),
			zap.Uint64("ptr", ptr), zap.Uint64("len", length))
		return
	}
	inst.deliver(entities.CallToken(token), ptr, length, data)
}

// hostFillEntropy leaves the region untouched when it cannot serve the
// request; the guest treats an all-zero buffer as a failure.
func (r *Runner) hostFillEntropy(_ context.Context, m api.Module, ptr, length uint64) {
	if length > MaxEntropyRequest {
		r.cfg.logger.Error("entropy request too large",
			zap.String("guest", m.Name()), zap.Uint64("len", length), zap.Int("max", MaxEntropyRequest))
		return
	}
	if ptr > math.MaxUint32 {
		return
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r.cfg.entropy, buf); err != nil {
		r.cfg.logger.Error("entropy source failed", zap.String("guest", m.Name()), zap.Error(err))
		return
	}
	if !m.Memory().Write(uint32(ptr), buf) { //nolint:gosec // G115: checked above
		r.cfg.logger.Error("entropy region outside memory", zap.String("guest", m.Name()))
	}
}

// readGuest copies length bytes at ptr out of guest memory.
func readGuest(m api.Module, ptr, length uint64) ([]byte, bool) {
	if length == 0 {
		return []byte{}, true
	}
	if ptr > math.MaxUint32 || length > math.MaxUint32 {
		return nil, false
	}
	view, ok := m.Memory().Read(uint32(ptr), uint32(length)) //nolint:gosec // G115: checked above
	if !ok {
		return nil, false
	}
	out := make([]byte, len(view))
	copy(out, view)
	return out, true
}

// logGuestLine writes one guest log line at the zap level matching severity.
func logGuestLine(logger *zap.Logger, severity entities.Severity, msg string) {
	switch severity {
	case entities.SeverityError:
		logger.Error(msg)
	case entities.SeverityWarn:
		logger.Warn(msg)
	case entities.SeverityInfo:
		logger.Info(msg)
	case entities.SeverityDebug, entities.SeverityTrace:
		logger.Debug(msg, zap.Stringer("severity", severity))
	default:
		logger.Warn(msg, zap.Stringer("severity", severity))
	}
}
