package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"":        InfoLevel,
		"warning": WarnLevel,
		" error ": ErrorLevel,
		"fatal":   FatalLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestDefaultLoggerRoutesByLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := NewDefaultLoggerWithWriters(&stdout, &stderr)

	l.Debug("hidden")
	l.Info("tick", Fields{"hz": 440})
	l.Warn("careful")
	l.Error(errors.New("boom"), "failed")

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "[INFO] tick hz=440")
	assert.Contains(t, stderr.String(), "[WARN] careful")
	assert.Contains(t, stderr.String(), "[ERROR] failed: boom")

	stdout.Reset()
	l.SetLevel(DebugLevel)
	l.Debug("visible")
	assert.Contains(t, stdout.String(), "[DEBUG] visible")
}

func TestDefaultLoggerFatalCallsExit(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := NewDefaultLoggerWithWriters(&stdout, &stderr)
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatal(errors.New("device gone"), "stopping")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "[FATAL] stopping: device gone")
}

func TestWithFieldsAndContext(t *testing.T) {
	var stdout bytes.Buffer
	base := NewDefaultLoggerWithWriters(&stdout, &stdout)

	child := base.WithFields(Fields{"session_id": "abc"})
	ctx := ContextWithFields(context.Background(), Fields{"source": "wav"})
	child.WithContext(ctx).Info("started", Fields{"frames": 3})

	assert.Contains(t, stdout.String(), "frames=3 session_id=abc source=wav")

	stdout.Reset()
	base.Info("plain")
	assert.NotContains(t, stdout.String(), "session_id")
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	_, ok := GetGlobalLogger().(*NoOpLogger)
	assert.True(t, ok)
}
