package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hashclip/pkg/config"
)

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(buf).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	return &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug level", &config.LoggingConfig{Level: "debug"}, false},
		{"invalid level", &config.LoggingConfig{Level: "loud"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "run.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNewWithConsole(t *testing.T) {
	var console bytes.Buffer
	l, err := NewWithConsole(&config.LoggingConfig{Level: "info"}, &console)
	require.NoError(t, err)
	l.WithField("run_id", "abc").Info("Run started")
	assert.Contains(t, console.String(), "Run started")
	assert.Contains(t, console.String(), "abc")

	path := filepath.Join(t.TempDir(), "run.log")
	quiet, err := NewWithConsole(&config.LoggingConfig{Level: "info", File: path}, nil)
	require.NoError(t, err)
	quiet.Info("file only")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file only")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.WithField("author", "alice").
		WithFields(map[string]interface{}{"likes": 15, "ok": true}).
		Info("chained fields")

	out := buf.String()
	assert.Contains(t, out, "chained fields")
	assert.Contains(t, out, `"author":"alice"`)
	assert.Contains(t, out, `"likes":15`)
	assert.Contains(t, out, `"ok":true`)
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	_ = l.WithField("child", "yes")
	l.Info("parent")

	assert.NotContains(t, buf.String(), "child")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	assert.Same(t, l, l.WithError(nil))

	l.WithError(errors.New("probe exploded")).Error("error occurred")
	assert.Contains(t, buf.String(), "probe exploded")
}

func TestStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.WarnWithFields("operation completed", map[string]interface{}{
		"url":   "https://twitter.com/a/status/1",
		"views": int64(200),
		"tags":  []string{"news"},
	})

	out := buf.String()
	assert.Contains(t, out, `"url":"https://twitter.com/a/status/1"`)
	assert.Contains(t, out, `"views":200`)
	assert.Contains(t, out, `"tags":["news"]`)
}

func TestLogOutcome(t *testing.T) {
	tl := NewTestLogger()

	LogOutcome(tl, "u1", "alice", "downloaded", 200, nil)
	LogOutcome(tl, "u2", "bob", "skipped_low_views", 50, nil)
	LogOutcome(tl, "u3", "carol", "failed", 0, errors.New("gone"))

	assert.True(t, tl.HasMessage("Video downloaded"))
	assert.True(t, tl.HasMessage("Video skipped"))

	failures := tl.GetMessagesByLevel("ERROR")
	require.Len(t, failures, 1)
	assert.Equal(t, "carol", failures[0].Fields["author"])
	assert.EqualError(t, failures[0].Error, "gone")
}

func TestGlobalLogger(t *testing.T) {
	require.NoError(t, Initialize(&config.LoggingConfig{Level: "debug"}))
	assert.NotNil(t, GetLogger())

	// Should not panic
	Info("info message")
	WithField("key", "value").Info("with field")
	WithError(errors.New("x")).Error("with error")
}
