package host

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reglet-dev/wasm-prover/domain/entities"
)

func TestLogGuestLine(t *testing.T) {
	tests := []struct {
		severity entities.Severity
		want     zapcore.Level
	}{
		{entities.SeverityError, zapcore.ErrorLevel},
		{entities.SeverityWarn, zapcore.WarnLevel},
		{entities.SeverityInfo, zapcore.InfoLevel},
		{entities.SeverityDebug, zapcore.DebugLevel},
		{entities.SeverityTrace, zapcore.DebugLevel},
		{entities.Severity(42), zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.severity.String(), func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			logGuestLine(zap.New(core), tt.severity, "hello")

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.want, entries[0].Level)
			assert.Equal(t, "hello", entries[0].Message)
		})
	}
}

func TestDefaultRunnerConfig(t *testing.T) {
	cfg := defaultRunnerConfig()
	assert.Equal(t, DefaultCallTimeout, cfg.callTimeout)
	assert.Equal(t, uint32(DefaultMemoryLimitPages), cfg.memoryLimitPages)
	assert.NotNil(t, cfg.logger)
	assert.NotNil(t, cfg.entropy)
	assert.Nil(t, cfg.timeline)
}

func TestOptions(t *testing.T) {
	tl := NewTimeline()
	logger := zap.NewExample()
	cfg := defaultRunnerConfig()
	for _, opt := range []Option{
		WithLogger(logger),
		WithLogger(nil),
		WithTimeline(tl),
		WithCallTimeout(time.Second),
		WithMemoryLimitPages(0),
		WithMemoryLimitPages(256),
		WithEntropySource(nil),
	} {
		opt(&cfg)
	}

	assert.Same(t, logger, cfg.logger)
	assert.Same(t, tl, cfg.timeline)
	assert.Equal(t, time.Second, cfg.callTimeout)
	assert.Equal(t, uint32(256), cfg.memoryLimitPages)
	assert.NotNil(t, cfg.entropy)
}

func TestRunnerConfig_GuestSeverityFilter(t *testing.T) {
	cfg := defaultRunnerConfig()
	assert.True(t, cfg.keeps(entities.SeverityTrace), "everything is kept by default")

	WithGuestSeverity(entities.SeverityWarn)(&cfg)
	assert.True(t, cfg.keeps(entities.SeverityError))
	assert.True(t, cfg.keeps(entities.SeverityWarn))
	assert.False(t, cfg.keeps(entities.SeverityInfo))
	assert.False(t, cfg.keeps(entities.SeverityTrace))
	assert.True(t, cfg.keeps(entities.Severity(42)), "unknown severities are never dropped")

	WithGuestSeverity(entities.Severity(0))(&cfg)
	assert.Equal(t, entities.SeverityWarn, cfg.guestSeverity)
}

func TestInstance_PendingTable(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := &Runner{cfg: defaultRunnerConfig()}
	r.cfg.logger = zap.New(core)
	inst := newInstance(r, "guest-test")

	inst.expect(7)
	inst.deliver(7, 64, 3, []byte("abc"))
	inst.deliver(7, 128, 3, []byte("xyz"))
	inst.deliver(8, 256, 1, []byte("!"))

	pc := inst.take(7)
	require.NotNil(t, pc)
	assert.Equal(t, []byte("abc"), pc.data, "the first delivery wins")
	assert.Equal(t, []region{{ptr: 64, length: 3}, {ptr: 128, length: 3}}, pc.regions,
		"every delivered region is kept so it can be freed")

	assert.Nil(t, inst.take(8))
	assert.Equal(t, 1, logs.FilterMessage("result for unknown token").Len())

	inst.forgetToken(7)
	assert.Nil(t, inst.take(7))
	assert.True(t, inst.Closed(), "an instance without a module is closed")
}
