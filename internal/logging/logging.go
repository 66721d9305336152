package logging

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	slogseq "github.com/sokkalf/slog-seq"

	"github.com/ryabkov82/csv-tools/internal/config"
)

// multiHandler передаёт записи нескольким обработчикам
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// Setup создаёт логгер утилиты и возвращает функцию для его закрытия.
// Записи идут в w (stdout занят JSON-результатом) и, если задан SeqURL, в Seq.
// У каждой записи есть атрибуты tool и run_id.
func Setup(w io.Writer, tool string, c config.Common) (*slog.Logger, func()) {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	console := slog.NewTextHandler(w, opts)

	attrs := []slog.Attr{
		slog.String("tool", tool),
		slog.String("run_id", uuid.NewString()),
	}

	if c.SeqURL == "" {
		return slog.New(console.WithAttrs(attrs)), func() {}
	}

	_, seqHandler := slogseq.NewLogger(
		c.SeqURL,
		slogseq.WithBatchSize(1),
		slogseq.WithFlushInterval(500*time.Millisecond),
		slogseq.WithHandlerOptions(&slog.HandlerOptions{
			Level:     c.LogLevel,
			AddSource: true,
		}),
	)
	if seqHandler == nil {
		return slog.New(console.WithAttrs(attrs)), func() {}
	}

	multi := &multiHandler{handlers: []slog.Handler{console, seqHandler}}
	return slog.New(multi.WithAttrs(attrs)), func() {
		seqHandler.Close()
	}
}
