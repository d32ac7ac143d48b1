package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/wasm-prover/domain/entities"
)

func selfTestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "self-test",
		Short: "Run the guest's built-in end to end check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			inst, closeRunner, err := a.instance(ctx)
			if err != nil {
				return err
			}
			defer closeRunner()

			resp, err := inst.SelfTest(ctx)
			if err := callFailed("self_test", resp, err); err != nil {
				return err
			}

			var report entities.SelfTestReport
			if err := json.Unmarshal(resp.Value, &report); err != nil {
				return fmt.Errorf("self_test: malformed report: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, c := range report.Checks {
				status := "PASS"
				if !c.Passed {
					status = "FAIL"
				}
				fmt.Fprintf(out, "%-4s %-36s %s\n", status, c.Name, c.Detail)
			}
			if !resp.OK {
				return fmt.Errorf("self-test failed")
			}
			return nil
		},
	}
}
