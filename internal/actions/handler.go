package actions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/sethvargo/go-githubactions"
)

// Handler is a slog.Handler that renders records as workflow commands:
// debug records become ::debug::, warnings ::warning::, errors ::error::,
// everything else a plain log line. Attributes are appended as key=value.
type Handler struct {
	action *githubactions.Action
	mu     *sync.Mutex
	level  slog.Leveler
	prefix string
	attrs  string
}

// NewHandler creates a Handler writing to w. A nil level enables debug
// records; the runner hides those unless step debugging is on.
func NewHandler(w io.Writer, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelDebug
	}
	return &Handler{
		action: githubactions.New(githubactions.WithWriter(w)),
		mu:     &sync.Mutex{},
		level:  level,
	}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})
	text := b.String()

	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case r.Level >= slog.LevelError:
		h.action.Errorf("%s", text)
	case r.Level >= slog.LevelWarn:
		h.action.Warningf("%s", text)
	case r.Level >= slog.LevelInfo:
		h.action.Infof("%s", neutralize(text))
	default:
		h.action.Debugf("%s", text)
	}
	return nil
}

// neutralize keeps plain log lines from being read as workflow commands:
// the runner treats any line starting with "::" (after leading blanks) as
// one, so those colons are percent-escaped.
func neutralize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t\r")
		if strings.HasPrefix(trimmed, "::") {
			lines[i] = line[:len(line)-len(trimmed)] + "%3A%3A" + trimmed[2:]
		}
	}
	return strings.Join(lines, "\n")
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		writeAttr(&b, h.prefix, a)
	}
	h2 := *h
	h2.attrs = b.String()
	return &h2
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, p, ga)
		}
		return
	}
	val := a.Value.String()
	if strings.ContainsAny(val, " \t\"=") {
		val = fmt.Sprintf("%q", val)
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(val)
}
