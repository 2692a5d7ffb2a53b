// Package logger sets up the process-wide slog logger.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	gray   = "\033[90m"
)

// PrettyHandler writes colored one-line records for terminals.
type PrettyHandler struct {
	w     io.Writer
	level slog.Leveler
	attrs  []slog.Attr // keys already qualified with their groups
	prefix string      // open groups, joined and terminated by "."
	mu     *sync.Mutex
}

// NewPrettyHandler creates a handler writing to w at the given level.
func NewPrettyHandler(w io.Writer, level slog.Leveler) *PrettyHandler {
	return &PrettyHandler{w: w, level: level, mu: &sync.Mutex{}}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var levelColor, levelText string
	switch {
	case r.Level >= slog.LevelError:
		levelColor, levelText = red, "ERR"
	case r.Level >= slog.LevelWarn:
		levelColor, levelText = yellow, "WRN"
	case r.Level >= slog.LevelInfo:
		levelColor, levelText = green, "INF"
	default:
		levelColor, levelText = gray, "DBG"
	}

	fmt.Fprintf(h.w, "%s%s%s %s%-3s%s %s",
		gray, r.Time.Format("15:04:05"), reset,
		levelColor, levelText, reset,
		r.Message,
	)

	for _, a := range h.attrs {
		h.writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		for _, qa := range qualify(h.prefix, a) {
			h.writeAttr(qa)
		}
		return true
	})

	_, err := fmt.Fprintln(h.w)
	return err
}

func (h *PrettyHandler) writeAttr(a slog.Attr) {
	fmt.Fprintf(h.w, " %s%s%s=%v", cyan, a.Key, reset, a.Value)
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, qualify(h.prefix, a)...)
	}
	return &next
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// qualify flattens a into attrs whose keys carry prefix, expanding groups
// the way slog.TextHandler does. Empty attrs and empty groups are dropped.
func qualify(prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return nil
	}
	if a.Value.Kind() != slog.KindGroup {
		return []slog.Attr{{Key: prefix + a.Key, Value: a.Value}}
	}

	groupPrefix := prefix
	if a.Key != "" {
		groupPrefix += a.Key + "."
	}
	var out []slog.Attr
	for _, ga := range a.Value.Group() {
		out = append(out, qualify(groupPrefix, ga)...)
	}
	return out
}

// ParseLevel maps a config level name to a slog level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w. format "json" selects slog's JSON
// handler, anything else the pretty handler.
func New(w io.Writer, level, format string) *slog.Logger {
	lvl := ParseLevel(level)

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = NewPrettyHandler(w, lvl)
	}
	return slog.New(handler)
}

// Init builds a logger with New and installs it as the slog default.
func Init(w io.Writer, level, format string) *slog.Logger {
	log := New(w, level, format)
	slog.SetDefault(log)
	return log
}
