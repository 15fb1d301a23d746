package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

/*
LogConfiguration is the logger configuration, usually loaded from the
logger configuration YAML file and then overridden by command line flags.
*/
type LogConfiguration struct {
	// Level is the minimum level of the messages written, one of
	// DEBUG, INFO, WARN, ERROR. Default is INFO.
	Level string `yaml:"defaultLevel"`
	// Format of the output, one of text, json, console, ecs. Default is text.
	Format string `yaml:"format"`
	// OutputPath is the log file path or one of the special values stdout,
	// stderr, discard. Default is stderr.
	OutputPath string `yaml:"outputPath"`
	// TimeFormat is the Go time layout for the time attribute, "none"
	// removes the time attribute.
	TimeFormat string `yaml:"timeFormat"`
	// ShowSource adds source code position of the logging call.
	ShowSource bool `yaml:"showSource"`
}

/*
New creates logger according to the configuration.
*/
func New(cfg *LogConfiguration) (*slog.Logger, error) {
	if cfg == nil {
		cfg = &LogConfiguration{}
	}
	out, err := cfg.writer()
	if err != nil {
		return nil, fmt.Errorf("creating log writer: %w", err)
	}
	h, err := cfg.Handler(out)
	if err != nil {
		return nil, fmt.Errorf("creating log handler: %w", err)
	}
	return slog.New(h), nil
}

/*
Handler returns slog handler which writes into "out" according to the configuration.
*/
func (cfg *LogConfiguration) Handler(out io.Writer) (slog.Handler, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{
		AddSource: cfg.ShowSource,
		Level:     level,
	}

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		opts.ReplaceAttr = formatTimeAttr(cfg.TimeFormat)
		return slog.NewTextHandler(out, opts), nil
	case "json":
		opts.ReplaceAttr = composeAttrFmt(formatTimeAttr(cfg.TimeFormat), formatDataAttrAsJSON)
		return slog.NewJSONHandler(out, opts), nil
	case "console":
		opts.ReplaceAttr = composeAttrFmt(formatTimeAttr(cfg.TimeFormat), formatAttrConsole, formatDataAttrAsJSON)
		return slog.NewTextHandler(out, opts), nil
	case "ecs":
		opts.AddSource = true
		opts.ReplaceAttr = composeAttrFmt(formatTimeAttr(cfg.TimeFormat), formatAttrECS)
		return slog.NewJSONHandler(out, opts), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

func (cfg *LogConfiguration) writer() (io.Writer, error) {
	switch strings.ToLower(cfg.OutputPath) {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "discard":
		return io.Discard, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0700); err != nil {
			return nil, fmt.Errorf("creating directory for log file: %w", err)
		}
		f, err := os.OpenFile(cfg.OutputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		return f, nil
	}
}

func parseLevel(level string) (slog.Level, error) {
	if level == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

/*
NewRoundHandler wraps handler "h" so that current round number (as returned
by the "curRound" callback) is added to every record.
*/
func NewRoundHandler(h slog.Handler, curRound func() uint64) slog.Handler {
	return &roundHandler{h: h, round: curRound}
}

type roundHandler struct {
	h     slog.Handler
	round func() uint64
}

func (h *roundHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.h.Enabled(ctx, lvl)
}

func (h *roundHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(Round(h.round()))
	return h.h.Handle(ctx, r)
}

func (h *roundHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &roundHandler{h: h.h.WithAttrs(attrs), round: h.round}
}

func (h *roundHandler) WithGroup(name string) slog.Handler {
	return &roundHandler{h: h.h.WithGroup(name), round: h.round}
}
