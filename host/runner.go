package host

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"
)

// Runner compiles the guest once and instantiates it on demand.
type Runner struct {
	runtime   wazero.Runtime
	compiled  wazero.CompiledModule
	instances map[string]*Instance
	cfg       runnerConfig
	seq       uint64
	mu        sync.Mutex
}

// NewRunner creates a runtime, registers the host import module, and
// compiles wasmBytes.
func NewRunner(ctx context.Context, wasmBytes []byte, opts ...Option) (*Runner, error) {
	cfg := defaultRunnerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rtConfig := wazero.NewRuntimeConfig().
		WithCloseOnContextDone(true).
		WithMemoryLimitPages(cfg.memoryLimitPages)
	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	r := &Runner{
		runtime:   rt,
		cfg:       cfg,
		instances: make(map[string]*Instance),
	}

	if err := r.registerHostModule(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to compile guest module: %w", err)
	}
	r.compiled = compiled

	return r, nil
}

// Close releases the runtime and every instance created from it.
func (r *Runner) Close(ctx context.Context) error {
	r.mu.Lock()
	r.instances = make(map[string]*Instance)
	r.mu.Unlock()
	return r.runtime.Close(ctx)
}

// Instantiate creates a fresh guest instance and runs its initializer.
func (r *Runner) Instantiate(ctx context.Context) (*Instance, error) {
	r.mu.Lock()
	r.seq++
	name := fmt.Sprintf("guest-%d", r.seq)
	inst := newInstance(r, name)
	// Registered first: _initialize may already call host imports.
	r.instances[name] = inst
	r.mu.Unlock()

	logger := r.cfg.logger.With(zap.String("guest", name))
	modConfig := wazero.NewModuleConfig().
		WithName(name).
		WithStartFunctions().
		WithRandSource(rand.Reader).
		WithSysWalltime().
		WithSysNanotime().
		WithSysNanosleep().
		WithStderr(&zapio.Writer{Log: logger, Level: zapcore.WarnLevel})

	mod, err := r.runtime.InstantiateModule(ctx, r.compiled, modConfig)
	if err != nil {
		r.forget(name)
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}
	inst.module = mod

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			r.forget(name)
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	logger.Debug("guest instantiated")
	return inst, nil
}

func (r *Runner) lookup(name string) *Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.instances[name]
}

func (r *Runner) forget(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, name)
}
