package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger: интерфейс логирования, используемый во всех слоях сервиса.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
}

// SlogLogger реализует Logger поверх log/slog с JSON-выводом.
type SlogLogger struct {
	log   *slog.Logger
	level *slog.LevelVar
}

// NewSlogLogger создаёт логгер, пишущий JSON в stdout с уровнем Info.
func NewSlogLogger() *SlogLogger {
	return NewSlogLoggerWithWriter(os.Stdout)
}

func NewSlogLoggerWithWriter(w io.Writer) *SlogLogger {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})

	return &SlogLogger{
		log:   slog.New(handler),
		level: level,
	}
}

// SetLevel меняет уровень логирования на лету. Неизвестный уровень игнорируется.
func (l *SlogLogger) SetLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		l.level.Set(slog.LevelDebug)
	case "info":
		l.level.Set(slog.LevelInfo)
	case "warn", "warning":
		l.level.Set(slog.LevelWarn)
	case "error":
		l.level.Set(slog.LevelError)
	default:
		return false
	}

	return true
}

// Slog отдаёт нижележащий *slog.Logger для middleware, которым нужны атрибуты.
func (l *SlogLogger) Slog() *slog.Logger {
	return l.log
}

func (l *SlogLogger) Debugf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Infof(format string, args ...any) {
	l.log.Info(fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Warnf(format string, args ...any) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Errorf(err error, format string, args ...any) {
	if err == nil {
		l.log.Error(fmt.Sprintf(format, args...))
		return
	}

	l.log.Error(fmt.Sprintf(format, args...), slog.String("error", err.Error()))
}
