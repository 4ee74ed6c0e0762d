package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLevelFromEnv(t *testing.T) {
	tests := []struct {
		value    string
		expected LogLevel
	}{
		{"trace", LevelTrace},
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"WARN", LevelWarn},
		{"Error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("DHRUTIL_LOG_LEVEL", tt.value)
			assert.Equal(t, tt.expected, GetLevelFromEnv())
		})
	}
}

func TestConsoleLoggerLevelEnabled(t *testing.T) {
	l := NewConsoleLogger(LevelWarn)
	assert.False(t, l.IsLevelEnabled(LevelDebug))
	assert.False(t, l.IsLevelEnabled(LevelInfo))
	assert.True(t, l.IsLevelEnabled(LevelWarn))
	assert.True(t, l.IsLevelEnabled(LevelError))
}

func TestConsoleLoggerWith(t *testing.T) {
	l := NewConsoleLogger(LevelInfo)
	child := l.With(map[string]interface{}{"sample": "ctl_A"})
	assert.NotSame(t, l, child)
	child.Info("processing")
}

func TestTestLoggerRecordsEntries(t *testing.T) {
	l := NewTestLogger()
	l.Info("hello %s", "world")
	l.Warn("careful")
	assert.Len(t, l.Logs, 2)
	assert.Equal(t, "INFO", l.Logs[0].Severity)
	assert.Equal(t, "hello %s", l.Logs[0].Message)
	assert.Equal(t, []interface{}{"world"}, l.Logs[0].Arguments)
	assert.Equal(t, "WARNING", l.Logs[1].Severity)
}
