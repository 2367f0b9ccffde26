package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/limaJavier/examscheduling/pkg/model"
	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// ZerologLogger implements model.Logger using rs/zerolog
type ZerologLogger struct {
	log zerolog.Logger
}

// New creates a logger writing to stderr. The console format is used when format
// says so or when APP_ENV is "dev". Every entry carries the component field.
func New(component, level, format string) (*ZerologLogger, error) {
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		format = FormatConsole
	}
	return NewWithWriter(os.Stderr, component, level, format)
}

func NewWithWriter(out io.Writer, component, level, format string) (*ZerologLogger, error) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	switch strings.ToLower(format) {
	case "", FormatJSON:
	case FormatConsole:
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	z := zerolog.New(out).Level(parsed).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}, nil
}

// With returns a child logger carrying an extra field
func (l *ZerologLogger) With(key string, value any) *ZerologLogger {
	return &ZerologLogger{log: l.log.With().Interface(key, value).Logger()}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}

var _ model.Logger = (*ZerologLogger)(nil)
