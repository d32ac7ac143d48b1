package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reglet-dev/wasm-prover/application/config"
	"github.com/reglet-dev/wasm-prover/host"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

type rootFlags struct {
	configPath       string
	guest            string
	logLevel         string
	guestLogLevel    string
	callTimeout      string
	memoryLimitPages uint32
}

func rootCmd() *cobra.Command {
	var flags rootFlags
	a := &app{}

	root := &cobra.Command{
		Use:           "prover-host",
		Short:         "Run the wasm prover guest module",
		Long:          "prover-host loads the prover guest module into a wazero runtime and drives its execute, prove, verify, and self_test entry points.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			overrides := map[string]any{}
			if cmd.Flags().Changed("guest") {
				overrides["guest"] = flags.guest
			}
			if cmd.Flags().Changed("log-level") {
				overrides["log_level"] = flags.logLevel
			}
			if cmd.Flags().Changed("guest-log-level") {
				overrides["guest_log_level"] = flags.guestLogLevel
			}
			if cmd.Flags().Changed("call-timeout") {
				overrides["call_timeout"] = flags.callTimeout
			}
			if cmd.Flags().Changed("memory-limit-pages") {
				overrides["memory_limit_pages"] = flags.memoryLimitPages
			}

			cfg, err := config.Load(flags.configPath, overrides)
			if err != nil {
				return err
			}
			logger, err := cfg.Logger()
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to a YAML config file.")
	pf.StringVar(&flags.guest, "guest", "", "Path to the compiled guest module (prover.wasm).")
	pf.StringVar(&flags.logLevel, "log-level", "info", "One of debug, info, warn, error.")
	pf.StringVar(&flags.guestLogLevel, "guest-log-level", "trace", "Least severe guest log line to keep: error, warn, info, debug, or trace.")
	pf.StringVar(&flags.callTimeout, "call-timeout", "5m", "Timeout for a single guest call; 0 disables it.")
	pf.Uint32Var(&flags.memoryLimitPages, "memory-limit-pages", host.DefaultMemoryLimitPages, "Guest memory limit in 64 KiB pages.")

	root.AddCommand(
		runCmd(a),
		selfTestCmd(a),
		schemaCmd(),
	)
	return root
}

// instance compiles the configured guest and instantiates it once. The
// returned func closes the runtime.
func (a *app) instance(ctx context.Context, opts ...host.Option) (*host.Instance, func(), error) {
	if a.cfg.Guest == "" {
		return nil, nil, fmt.Errorf("no guest module configured; pass --guest or set guest in the config file")
	}
	wasmBytes, err := os.ReadFile(a.cfg.Guest)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read guest module: %w", err)
	}

	opts = append([]host.Option{
		host.WithLogger(a.logger),
		host.WithCallTimeout(a.cfg.CallTimeout),
		host.WithMemoryLimitPages(a.cfg.MemoryLimitPages),
		host.WithGuestSeverity(a.cfg.GuestSeverity()),
	}, opts...)
	runner, err := host.NewRunner(ctx, wasmBytes, opts...)
	if err != nil {
		return nil, nil, err
	}
	inst, err := runner.Instantiate(ctx)
	if err != nil {
		_ = runner.Close(ctx)
		return nil, nil, err
	}
	return inst, func() { _ = runner.Close(ctx) }, nil
}
