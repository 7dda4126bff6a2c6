package log

import (
	"bytes"
	"strings"
	"testing"
)

func newBufferedLogger(level Level) (*StandardLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := NewStandardLogger(
		WithOutput(&buf),
		WithLevel(level),
	)
	return logger, &buf
}

func TestLoggerLevels(t *testing.T) {
	logger, buf := newBufferedLogger(LevelDebug)

	cases := []struct {
		log func(msg string, args ...interface{})
		tag string
		msg string
	}{
		{logger.Debug, "[DEBUG]", "classified 12 file pairs"},
		{logger.Info, "[INFO]", "graph ready"},
		{logger.Warn, "[WARN]", "proposal skipped"},
		{logger.Error, "[ERROR]", "edit rejected"},
	}

	for _, tc := range cases {
		buf.Reset()
		tc.log(tc.msg)
		out := buf.String()
		if !strings.Contains(out, tc.tag) || !strings.Contains(out, tc.msg) {
			t.Errorf("expected %s line containing %q, got: %s", tc.tag, tc.msg, out)
		}
	}
}

func TestLoggerFields(t *testing.T) {
	logger, buf := newBufferedLogger(LevelDebug)

	logger.WithFields(map[string]interface{}{
		"component": "scheduler",
		"files":     4,
	}).Info("plan complete")
	out := buf.String()
	if !strings.Contains(out, "plan complete") ||
		!strings.Contains(out, "component=scheduler") ||
		!strings.Contains(out, "files=4") {
		t.Errorf("logging with fields failed, got: %s", out)
	}
	buf.Reset()

	logger.WithField("component", "gc").Info("pass finished")
	out = buf.String()
	if !strings.Contains(out, "pass finished") || !strings.Contains(out, "component=gc") {
		t.Errorf("logging with a single field failed, got: %s", out)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	logger, buf := newBufferedLogger(LevelError)

	logger.Debug("suppressed debug")
	logger.Info("suppressed info")
	logger.Warn("suppressed warn")
	logger.Error("surfaced error")
	out := buf.String()
	if strings.Contains(out, "suppressed") || !strings.Contains(out, "surfaced error") {
		t.Errorf("level filtering failed, got: %s", out)
	}

	logger.SetLevel(LevelInfo)
	if logger.GetLevel() != LevelInfo {
		t.Errorf("GetLevel returned %v, want LevelInfo", logger.GetLevel())
	}
}

func TestLoggerFormatting(t *testing.T) {
	logger, buf := newBufferedLogger(LevelInfo)

	logger.Info("accepted %d of %d proposals", 2, 3)
	if !strings.Contains(buf.String(), "accepted 2 of 3 proposals") {
		t.Errorf("formatted message failed, got: %s", buf.String())
	}
}

func TestDefaultLogger(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
	}()

	var buf bytes.Buffer
	SetDefaultLogger(NewStandardLogger(
		WithOutput(&buf),
		WithLevel(LevelInfo),
	))

	Info("coordinator started")
	if !strings.Contains(buf.String(), "[INFO]") || !strings.Contains(buf.String(), "coordinator started") {
		t.Errorf("global info logging failed, got: %s", buf.String())
	}
	buf.Reset()

	WithField("interval", "30s").Info("worker loop running")
	out := buf.String()
	if !strings.Contains(out, "worker loop running") || !strings.Contains(out, "interval=30s") {
		t.Errorf("global logging with field failed, got: %s", out)
	}
}
