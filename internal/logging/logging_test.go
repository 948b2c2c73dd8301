package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/daleel/internal/guard"
)

func TestNew_Levels(t *testing.T) {
	logger, err := New("warn", true)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = New("", false)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = New("loud", false)
	assert.Error(t, err)
}

func TestGuardObserver_LogsRejections(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := GuardObserver(zap.New(core))

	policy := guard.Default()
	req := guard.MutationRequest{
		Kind:      guard.KindSource,
		Operation: guard.OpUpdate,
		Fields:    guard.NewFieldSet("archivedUrl", "notes"),
	}
	obs.ObserveDecision(req, policy.Evaluate(req))

	allowed := guard.MutationRequest{Kind: guard.KindCandidate, Operation: guard.OpDelete}
	obs.ObserveDecision(allowed, policy.Evaluate(allowed))

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	fields := warns[0].ContextMap()
	assert.Equal(t, "mutation rejected", warns[0].Message)
	assert.Equal(t, "Source", fields["kind"])
	assert.Equal(t, "FINGERPRINT_FIELD_MUTATION", fields["code"])
	assert.Equal(t, []interface{}{"archivedUrl"}, fields["fields"])

	assert.Equal(t, 1, logs.FilterMessage("mutation allowed").Len())
}
