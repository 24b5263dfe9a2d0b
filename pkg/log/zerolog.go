package log

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// ZerologProvider is the zerolog-backed LoggerProvider.
type ZerologProvider struct {
	root zerolog.Logger
}

// NewZerologProvider creates a provider writing JSON log lines to w.
func NewZerologProvider(w io.Writer) *ZerologProvider {
	root := zerolog.New(w).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	return &ZerologProvider{root: root}
}

// Named returns a logger tagged with the component name.
func (p *ZerologProvider) Named(name string) Logger {
	l := p.root.With().Str("logger", name).Logger()
	return &zerologLogger{l: l}
}

// SetLevel adjusts the provider's minimum level.
func (p *ZerologProvider) SetLevel(level zerolog.Level) {
	p.root = p.root.Level(level)
}

type zerologLogger struct {
	l zerolog.Logger
}

func (z *zerologLogger) Debug(msg string, keysAndValues ...interface{}) {
	addFields(z.l.Debug(), keysAndValues).Msg(msg)
}

func (z *zerologLogger) Info(msg string, keysAndValues ...interface{}) {
	addFields(z.l.Info(), keysAndValues).Msg(msg)
}

func (z *zerologLogger) Warn(msg string, keysAndValues ...interface{}) {
	addFields(z.l.Warn(), keysAndValues).Msg(msg)
}

func (z *zerologLogger) Error(msg string, keysAndValues ...interface{}) {
	addFields(z.l.Error(), keysAndValues).Msg(msg)
}

func (z *zerologLogger) With(keysAndValues ...interface{}) Logger {
	ctx := z.l.With()
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		ctx = ctx.Interface(key(keysAndValues[i]), keysAndValues[i+1])
	}
	return &zerologLogger{l: ctx.Logger()}
}

func addFields(e *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		e = e.Interface(key(keysAndValues[i]), keysAndValues[i+1])
	}
	return e
}

func key(k interface{}) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", k)
}
