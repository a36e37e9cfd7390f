package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewAcceptsLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			logger, err := New(Config{Level: level, OutputPaths: []string{"stderr"}})
			require.NoError(t, err)
			assert.NotNil(t, logger.Logger)
		})
	}
}

func TestFromSettingsFallsBack(t *testing.T) {
	logger := FromSettings("nonsense", false)
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))

	dev := FromSettings("", true)
	assert.True(t, dev.Core().Enabled(zap.DebugLevel))
}

func TestInvocationAddsFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := &Logger{Logger: zap.New(core)}

	base.Invocation("inv_123", "cvrf-review").Info("done")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "inv_123", fields["invocation_id"])
	assert.Equal(t, "cvrf-review", fields["command"])
}

func TestNewNop(t *testing.T) {
	assert.NotPanics(t, func() { NewNop().Info("ignored") })
}
