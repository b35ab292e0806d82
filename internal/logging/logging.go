// Package logging sets up structured logging in the style of the teacher's
// internal/api slogRequestLogger, extended to also append to a process-local
// log.txt in the bracketed-level form required by spec §6: "[LEVEL]
// YYYY-MM-DD HH:MM:SS message".
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// fileHandler renders slog records as "[LEVEL] YYYY-MM-DD HH:MM:SS message"
// lines, ignoring structured attributes beyond the message (log.txt is a
// flat operator-facing tail, not a structured log sink).
type fileHandler struct {
	w io.Writer
}

func (h *fileHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *fileHandler) Handle(_ context.Context, r slog.Record) error {
	line := fmt.Sprintf("[%s] %s %s\n",
		r.Level.String(),
		r.Time.Format("2006-01-02 15:04:05"),
		r.Message,
	)
	_, err := io.WriteString(h.w, line)
	return err
}

func (h *fileHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *fileHandler) WithGroup(name string) slog.Handler       { return h }

// New opens (creating/appending) the log file at path and returns a logger
// that writes structured records to stdout and flat "[LEVEL] ..." lines to
// the file. The returned closer must be closed on shutdown.
func New(path string) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	stdoutHandler := slog.NewTextHandler(os.Stdout, nil)
	multi := multiHandler{stdoutHandler, &fileHandler{w: f}}

	return slog.New(multi), f, nil
}

type multiHandler []slog.Handler

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithGroup(name)
	}
	return out
}
