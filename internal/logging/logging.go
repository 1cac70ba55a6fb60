package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/hyunwoo-dev/elkmart/internal/audit"
	"github.com/hyunwoo-dev/elkmart/internal/metrics"
)

type ctxKey struct{}

// Init wires the process logger. Every record also increments the
// per-level log counter and, when a sink is configured, is forwarded to
// the audit index best-effort.
func Init(service, level, appEnv string, sink *audit.Sink) *slog.Logger {
	lvl := parseLevel(level)
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if appEnv == "development" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(&fanoutHandler{base: handler, sink: sink}).With("service", service)
	slog.SetDefault(logger)
	return logger
}

func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func parseLevel(s string) slog.Level {
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

// fanoutHandler forwards records to the console handler and mirrors
// them to the audit sink without ever failing the log call.
type fanoutHandler struct {
	base slog.Handler
	sink *audit.Sink
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *fanoutHandler) Handle(ctx context.Context, rec slog.Record) error {
	level := strings.ToLower(rec.Level.String())
	metrics.LogMessages.WithLabelValues(level).Inc()
	h.sink.Emit(level, rec.Message)
	return h.base.Handle(ctx, rec)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &fanoutHandler{base: h.base.WithAttrs(attrs), sink: h.sink}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	return &fanoutHandler{base: h.base.WithGroup(name), sink: h.sink}
}
