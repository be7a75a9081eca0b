package logs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	pdk "github.com/extism/go-pdk"
	"github.com/extism/go-pdk/pdktest"
	"github.com/extism/go-pdk/plugins/logs"
)

func TestRun(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	h := pdktest.Start(t, pdktest.WithLogger(zap.New(core)))

	rc, output, err := h.Call(logs.Run, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(0), rc)
	assert.JSONEq(t, `{"lines":5}`, string(output))

	expected := []pdktest.LogEntry{
		{Level: pdk.LogDebug, Message: "this is a debug log"},
		{Level: pdk.LogInfo, Message: "this is an info log"},
		{Level: pdk.LogWarn, Message: "this is a warning log"},
		{Level: pdk.LogError, Message: "this is an error log"},
		{Level: pdk.LogInfo, Message: "this is a structured log plugin=logs lines=5"},
	}
	assert.Equal(t, expected, h.Logs())

	entries := observed.FilterField(zap.String("origin", "plugin")).AllUntimed()
	require.Len(t, entries, 5)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "this is a warning log", entries[2].Message)
}
