package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("opened style") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("opened style") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("opened style") }, true},
		{"warn at error level", log.ErrorLevel, func(l *log.Logger) { l.Warn("fragmented") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Compacted %d groups", 2)

	out := buf.String()
	if !strings.Contains(out, "Compacted 2 groups (") {
		t.Errorf("done() output = %q, want message with elapsed time", out)
	}
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	if got := loggerFromContext(withLogger(context.Background(), logger)); got != logger {
		t.Error("loggerFromContext() did not return the attached logger")
	}
	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("loggerFromContext() without a logger should return log.Default()")
	}
}

func TestCommandsLogThroughCLILogger(t *testing.T) {
	path := writeStyle(t, "X:g", "A", "Y:g", "P:h", "B", "Q:h")

	var buf bytes.Buffer
	root := New(&buf, log.DebugLevel).RootCommand()
	root.SetArgs([]string{"--file", path, "compact"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"Compacted 2 groups (", "opened style", "saved style", "move layer"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
