// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, "debug", Level(true))
	assert.Equal(t, "warn", Level(false))
}

func TestInit(t *testing.T) {
	require.NoError(t, Init("debug", false))
	assert.True(t, Get().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Init("warn", true))
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Get().Core().Enabled(zapcore.WarnLevel))
}

func TestStacktraceOnlyWhenVerbose(t *testing.T) {
	tests := []struct {
		level       string
		development bool
		disabled    bool
	}{
		{"warn", false, true},
		{"warn", true, true},
		{"error", false, true},
		{"debug", false, false},
	}
	for _, tt := range tests {
		cfg, err := newConfig(tt.level, tt.development)
		require.NoError(t, err)
		assert.Equal(t, tt.disabled, cfg.DisableStacktrace, "level %s development %v", tt.level, tt.development)
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init("chatty", false))
}
