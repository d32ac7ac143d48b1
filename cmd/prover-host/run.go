package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/host"
)

// runSummary is what run prints.
type runSummary struct {
	Program      string            `json:"program"`
	PublicOutput []uint64          `json:"public_output"`
	Verified     map[string]bool   `json:"verified"`
	Timings      map[string]string `json:"timings,omitempty"`
	ProofBytes   int               `json:"proof_bytes"`
}

func runCmd(a *app) *cobra.Command {
	var args uint64List

	cmd := &cobra.Command{
		Use:     "run PROGRAM",
		Short:   "Execute, prove, and verify a program",
		Example: "prover-host run --guest prover.wasm programs/is_prime.yaml --arg 100",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			ctx := cmd.Context()

			loader, err := host.NewLoader()
			if err != nil {
				return err
			}
			program, err := loader.LoadProgramFile(positional[0])
			if err != nil {
				return err
			}

			timeline := host.NewTimeline()
			inst, closeRunner, err := a.instance(ctx, host.WithTimeline(timeline))
			if err != nil {
				return err
			}
			defer closeRunner()

			executed, err := inst.Execute(ctx, program, args)
			if err := callFailed("execute", executed, err); err != nil {
				return err
			}
			proved, err := inst.Prove(ctx, executed.Value)
			if err := callFailed("prove", proved, err); err != nil {
				return err
			}

			summary := runSummary{
				Program:    positional[0],
				ProofBytes: len(proved.Value),
				Verified:   map[string]bool{},
				Timings:    map[string]string{},
			}
			var trace struct {
				PublicOutput []uint64 `json:"public_output"`
			}
			if err := json.Unmarshal(executed.Value, &trace); err == nil {
				summary.PublicOutput = trace.PublicOutput
			}

			for _, withPedersen := range []bool{false, true} {
				verdict, err := inst.Verify(ctx, proved.Value, withPedersen)
				if err := callFailed("verify", verdict, err); err != nil {
					return err
				}
				summary.Verified[string(entities.VariantFor(withPedersen))] = verdict.OK
			}
			for _, m := range timeline.Measures() {
				summary.Timings[m.Name] = m.Duration.String()
			}

			a.logger.Info("run complete", zap.String("program", positional[0]), zap.Int("proof_bytes", summary.ProofBytes))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}

	cmd.Flags().Var(&args, "arg", "Public input word; repeat or comma separate for more.")
	return cmd
}

// callFailed turns a call error or an error envelope into an error.
func callFailed(op string, resp entities.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.Failed() {
		return fmt.Errorf("%s: %w", op, resp.Error)
	}
	return nil
}
