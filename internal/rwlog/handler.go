// Package rwlog builds the process-wide slog logger the demo CLI uses, in
// the text or json format it selects between. The pipeline packages
// themselves do not log.
package rwlog

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"
)

// TextHandler renders log records as a single line: time, level, message,
// then space-joined attrs.
type TextHandler struct {
	slog.Handler
	l *log.Logger
}

func NewTextHandler(out io.Writer, options *slog.HandlerOptions) *TextHandler {
	return &TextHandler{
		Handler: slog.NewTextHandler(out, options),
		l:       log.New(out, "", 0),
	}
}

func (h *TextHandler) Handle(_ context.Context, r slog.Record) error {
	timeStr := r.Time.Format("2006/01/02 15:04:05")
	levelStr := r.Level.String()
	msg := r.Message

	var attrs []string

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, fmt.Sprintf("%s=%v", a.Key, a.Value.Any()))

		return true
	})

	h.l.Println(timeStr, levelStr, msg, strings.Join(attrs, " "))

	return nil
}

// New builds the process-wide logger for the given format ("text" or
// "json"), matching the teacher's AppConfig.LogFormat switch.
func New(out io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler

	switch format {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = NewTextHandler(out, opts)
	}

	return slog.New(handler)
}
