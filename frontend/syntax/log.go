package syntax

import (
	"context"
	"log/slog"
)

// Slog wraps a Node as a slog.LogValuer to not render syntax strings
// unless they definitely need to be logged
func Slog(node Node) slog.LogValuer {
	return nodeLogValuer{node}
}

type nodeLogValuer struct{ Node }

func (l nodeLogValuer) LogValue() slog.Value {
	return slog.StringValue(Show(l.Node))
}

// NodeHandler is a slog.Handler capable of lazy-printing syntax trees
func NodeHandler(underlying slog.Handler) slog.Handler {
	return &nodeLogHandler{underlying: underlying}
}

func NodeLogger(underlying *slog.Logger) *slog.Logger {
	return slog.New(NodeHandler(underlying.Handler()))
}

type nodeLogHandler struct {
	underlying slog.Handler
}

func (l *nodeLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return l.underlying.Enabled(ctx, level)
}

func (l *nodeLogHandler) Handle(ctx context.Context, record slog.Record) error {
	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	// for each attr, add it wrapped in Slog if it is an Any and then a Node
	record.Attrs(func(attr slog.Attr) bool {
		newRecord.AddAttrs(wrapNodeAttr(attr))
		return true
	})
	return l.underlying.Handle(ctx, newRecord)
}

func (l *nodeLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		wrapped[i] = wrapNodeAttr(attr)
	}
	return NodeHandler(l.underlying.WithAttrs(wrapped))
}

func (l *nodeLogHandler) WithGroup(name string) slog.Handler {
	return NodeHandler(l.underlying.WithGroup(name))
}

func wrapNodeAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() == slog.KindAny {
		if asNode, isNode := attr.Value.Any().(Node); isNode {
			return slog.Any(attr.Key, Slog(asNode))
		}
	}
	return attr
}
