package logging

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// Handler routes slog records into a zerolog.Logger. Attributes added with
// WithAttrs are rendered into the logger context once, so each record only
// pays for its own attributes. Group names become dotted key prefixes.
type Handler struct {
	logger zerolog.Logger
	prefix string
}

func NewHandler(logger zerolog.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return zerologLevel(level) >= h.logger.GetLevel()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	e := h.logger.WithLevel(zerologLevel(r.Level))
	if e == nil {
		return nil
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(e, h.prefix, a)
		return true
	})
	e.Msg(r.Message)
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	zctx := h.logger.With()
	for _, a := range attrs {
		zctx = zctx.Fields(fieldMap(h.prefix, a))
	}
	return &Handler{logger: zctx.Logger(), prefix: h.prefix}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{logger: h.logger, prefix: h.prefix + name + "."}
}

// fieldMap flattens a into dotted keys for zerolog.Context.Fields.
func fieldMap(prefix string, a slog.Attr) map[string]any {
	fields := map[string]any{}
	var walk func(string, slog.Attr)
	walk = func(p string, a slog.Attr) {
		v := a.Value.Resolve()
		if a.Key == "" && v.Kind() != slog.KindGroup {
			return
		}
		if v.Kind() == slog.KindGroup {
			next := p
			if a.Key != "" {
				next = p + a.Key + "."
			}
			for _, g := range v.Group() {
				walk(next, g)
			}
			return
		}
		if err, ok := v.Any().(error); ok && v.Kind() == slog.KindAny {
			fields[p+a.Key] = err.Error()
			return
		}
		fields[p+a.Key] = v.Any()
	}
	walk(prefix, a)
	return fields
}

func writeAttr(e *zerolog.Event, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		next := prefix
		if a.Key != "" {
			next = prefix + a.Key + "."
		}
		for _, g := range v.Group() {
			writeAttr(e, next, g)
		}
		return
	}
	if a.Key == "" {
		return
	}
	key := prefix + a.Key
	switch v.Kind() {
	case slog.KindString:
		e.Str(key, v.String())
	case slog.KindInt64:
		e.Int64(key, v.Int64())
	case slog.KindUint64:
		e.Uint64(key, v.Uint64())
	case slog.KindFloat64:
		e.Float64(key, v.Float64())
	case slog.KindBool:
		e.Bool(key, v.Bool())
	case slog.KindDuration:
		e.Dur(key, v.Duration())
	case slog.KindTime:
		e.Time(key, v.Time())
	default:
		if err, ok := v.Any().(error); ok {
			e.AnErr(key, err)
			return
		}
		e.Interface(key, v.Any())
	}
}

var levels = [...]struct {
	min slog.Level
	zl  zerolog.Level
}{
	{slog.LevelError, zerolog.ErrorLevel},
	{slog.LevelWarn, zerolog.WarnLevel},
	{slog.LevelInfo, zerolog.InfoLevel},
}

func zerologLevel(l slog.Level) zerolog.Level {
	for _, m := range levels {
		if l >= m.min {
			return m.zl
		}
	}
	return zerolog.DebugLevel
}
