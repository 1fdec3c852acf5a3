package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Logger interface {
	Info(action, message, requestID string, details map[string]interface{})
	Debug(action, message, requestID string, details map[string]interface{})
	Warn(action, message, requestID string, details map[string]interface{})
	Error(action, message, requestID string, details map[string]interface{}, err error)
}

type jsonLogger struct {
	zl zerolog.Logger
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
}

// New writes JSON lines to stdout.
func New(service, level string) Logger {
	return NewWithWriter(os.Stdout, service, level)
}

func NewWithWriter(w io.Writer, service, level string) Logger {
	hostname, _ := os.Hostname()
	zl := zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("service", service).
		Str("hostname", hostname).
		Logger()
	return &jsonLogger{zl: zl}
}

// Nop discards everything. Used by tests.
func Nop() Logger {
	return &jsonLogger{zl: zerolog.Nop()}
}

func (l *jsonLogger) Info(action, message, requestID string, details map[string]interface{}) {
	l.log(l.zl.Info(), action, message, requestID, details)
}

func (l *jsonLogger) Debug(action, message, requestID string, details map[string]interface{}) {
	l.log(l.zl.Debug(), action, message, requestID, details)
}

func (l *jsonLogger) Warn(action, message, requestID string, details map[string]interface{}) {
	l.log(l.zl.Warn(), action, message, requestID, details)
}

func (l *jsonLogger) Error(action, message, requestID string, details map[string]interface{}, err error) {
	ev := l.zl.Error()
	if err != nil {
		ev = ev.Err(err)
	}
	l.log(ev, action, message, requestID, details)
}

func (l *jsonLogger) log(ev *zerolog.Event, action, message, requestID string, details map[string]interface{}) {
	if ev == nil {
		return
	}
	ev = ev.Str("action", action)
	if requestID != "" {
		ev = ev.Str("request_id", requestID)
	}
	if len(details) > 0 {
		ev = ev.Interface("details", details)
	}
	ev.Msg(message)
}
