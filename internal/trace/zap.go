package trace

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapTracer forwards events to a structured logger. Span ends carry their
// duration; the driver scope logs at info, finer scopes at debug.
type ZapTracer struct {
	log   *zap.Logger
	level Level
}

func NewZapTracer(log *zap.Logger, level Level) *ZapTracer {
	return &ZapTracer{log: log.Named("trace"), level: level}
}

func (t *ZapTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	lvl := zapcore.DebugLevel
	if ev.Scope == ScopeDriver {
		lvl = zapcore.InfoLevel
	}
	ce := t.log.Check(lvl, ev.Kind.String()+" "+ev.Name)
	if ce == nil {
		return
	}
	fields := make([]zap.Field, 0, 6+len(ev.Extra))
	fields = append(fields,
		zap.String("scope", ev.Scope.String()),
		zap.Uint64("seq", ev.Seq),
		zap.Uint64("span", ev.SpanID),
	)
	if ev.ParentID != 0 {
		fields = append(fields, zap.Uint64("parent", ev.ParentID))
	}
	if ev.Detail != "" {
		fields = append(fields, zap.String("detail", ev.Detail))
	}
	for k, v := range ev.Extra {
		fields = append(fields, zap.String(k, v))
	}
	ce.Write(fields...)
}

func (t *ZapTracer) Flush() error { return t.log.Sync() }

// Close syncs the logger. The logger itself belongs to the caller.
func (t *ZapTracer) Close() error  { return t.Flush() }
func (t *ZapTracer) Level() Level  { return t.level }
func (t *ZapTracer) Enabled() bool { return t.level > LevelOff }
