package logger

import (
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/flightsurety/flightsurety/logger"
)

/*
New returns logger for test t on debug level, output goes to t.Log.
Level can be overridden with FS_TEST_LOG_LEVEL environment variable.
*/
func New(t testing.TB) *slog.Logger {
	return NewLvl(t, levelFromEnv(slog.LevelDebug))
}

// NewLvl returns logger for test t on given level.
func NewLvl(t testing.TB, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(&testWriter{t: t}, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// t.Log adds its own position info, time is noise
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// NOP returns logger which discards everything.
func NOP() *slog.Logger {
	return slog.New(discardHandler{})
}

/*
LoggerBuilder returns logger factory which ignores the configuration and
creates test logger for t.
*/
func LoggerBuilder(t testing.TB) func(*logger.LogConfiguration) (*slog.Logger, error) {
	return func(*logger.LogConfiguration) (*slog.Logger, error) {
		return New(t), nil
	}
}

func levelFromEnv(def slog.Level) slog.Level {
	v := os.Getenv("FS_TEST_LOG_LEVEL")
	if v == "" {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return def
	}
	return lvl
}

type testWriter struct {
	t testing.TB
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
