package guest

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/wasm-prover/application/protocol"
	"github.com/reglet-dev/wasm-prover/domain/entities"
	"github.com/reglet-dev/wasm-prover/entropy"
	"github.com/reglet-dev/wasm-prover/log"
)

// SelfTestArg is the argument passed to the embedded program. The program
// tests whether 7 is prime and then echoes its input, so its public output
// is [1, SelfTestArg].
const SelfTestArg = 100

// selfTestEntropyLen is how many random bytes the self-test draws.
const selfTestEntropyLen = 32

//go:embed programs/is_prime.json
var isPrimeProgram []byte

// SelfTest runs the embedded is-prime program through execute, prove, and
// verify in both preprocessed variants, then draws entropy from the host.
// It delivers {"ok":<all passed>,"value":{"checks":[...]}}.
func (m *Module) SelfTest(token uint64) *protocol.Call {
	defer log.Guard(string(entities.OpSelfTest))

	decode := func() (struct{}, error) { return struct{}{}, nil }

	process := func(ctx context.Context, _ struct{}) (entities.Response, error) {
		report := m.selfTest(ctx)
		value, err := json.Marshal(report)
		if err != nil {
			return entities.Response{}, err
		}
		return entities.Response{OK: report.Passed(), Value: value}, nil
	}

	return protocol.Invoke(context.Background(), m.deps(), entities.CallToken(token), entities.OpSelfTest, decode, process)
}

func (m *Module) selfTest(ctx context.Context) entities.SelfTestReport {
	var report entities.SelfTestReport
	record := func(name string, err error, detail string) bool {
		c := entities.CheckResult{Name: name, Passed: err == nil, Detail: detail}
		if err != nil {
			c.Detail = err.Error()
		}
		report.Checks = append(report.Checks, c)
		return c.Passed
	}
	skip := func(names ...string) {
		for _, name := range names {
			report.Checks = append(report.Checks, entities.CheckResult{Name: name, Detail: "skipped"})
		}
	}

	trace, err := m.prover.Execute(ctx, isPrimeProgram, []uint64{SelfTestArg})
	if record("execute", err, fmt.Sprintf("%d byte trace", len(trace))) {
		proof, err := m.prover.Prove(ctx, trace, m.cfg)
		if record("prove", err, fmt.Sprintf("%d byte proof under %s", len(proof), m.cfg)) {
			for _, withPedersen := range []bool{false, true} {
				variant := entities.VariantFor(withPedersen)
				ok, err := m.prover.Verify(ctx, proof, m.cfg, variant)
				if err == nil && !ok {
					err = fmt.Errorf("proof rejected")
				}
				record("verify_"+string(variant), err, "accepted")
			}
		} else {
			skip(verifyCheckNames()...)
		}
	} else {
		skip(append([]string{"prove"}, verifyCheckNames()...)...)
	}

	buf := make([]byte, selfTestEntropyLen)
	err = m.entropy.Fill(buf)
	if entropy.IsUnavailable(err) {
		err = fmt.Errorf("host entropy unavailable: %w", err)
	} else if err == nil && bytes.Equal(buf, make([]byte, selfTestEntropyLen)) {
		err = fmt.Errorf("%d bytes of entropy were all zero", selfTestEntropyLen)
	}
	record("entropy", err, fmt.Sprintf("%d bytes drawn", selfTestEntropyLen))

	return report
}

func verifyCheckNames() []string {
	return []string{
		"verify_" + string(entities.VariantFor(false)),
		"verify_" + string(entities.VariantFor(true)),
	}
}
