// Package logutil stellt den Logger der Bibliothek und ein TRACE-Level unterhalb von DEBUG bereit.
//
// Der Logger wird beim ersten Gebrauch aus TORCHVIDEO_DEBUG erzeugt und schreibt
// nach stderr. Init baut ihn mit anderem Ziel neu, SetLogger ersetzt ihn.
package logutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/magicknight/torchvideo/envconfig"
)

// LevelTrace liegt unterhalb von slog.LevelDebug (TORCHVIDEO_DEBUG=2).
const LevelTrace slog.Level = -8

var logger atomic.Pointer[slog.Logger]

// NewLogger erzeugt einen Text-Logger mit gekuerzten Quelldateinamen.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				if level, ok := attr.Value.Any().(slog.Level); ok && level == LevelTrace {
					attr.Value = slog.StringValue("TRACE")
				}
			case slog.SourceKey:
				if source, ok := attr.Value.Any().(*slog.Source); ok {
					source.File = filepath.Base(source.File)
				}
			}
			return attr
		},
	}))
}

// Init erzeugt den Logger neu mit Level aus envconfig.LogLevel und schreibt nach w.
func Init(w io.Writer) *slog.Logger {
	l := NewLogger(w, envconfig.LogLevel())
	logger.Store(l)
	l.Debug("torchvideo config", "env", envconfig.Values())
	return l
}

// SetLogger ersetzt den Logger. nil setzt auf den Default aus der Umgebung zurueck.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// Logger gibt den aktuellen Logger zurueck.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}

	l := NewLogger(os.Stderr, envconfig.LogLevel())
	if logger.CompareAndSwap(nil, l) {
		return l
	}
	return logger.Load()
}

type key string

// Trace loggt msg auf TRACE-Level.
func Trace(msg string, args ...any) {
	TraceContext(context.WithValue(context.TODO(), key("skip"), 1), msg, args...)
}

// TraceContext wie Trace, aber mit Context.
func TraceContext(ctx context.Context, msg string, args ...any) {
	if logger := Logger(); logger.Enabled(ctx, LevelTrace) {
		skip, _ := ctx.Value(key("skip")).(int)
		pc, _, _, _ := runtime.Caller(1 + skip)
		record := slog.NewRecord(time.Now(), LevelTrace, msg, pc)
		record.Add(args...)
		logger.Handler().Handle(ctx, record)
	}
}
