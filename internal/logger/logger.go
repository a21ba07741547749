package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Log обертка над zerolog с привычными методами Info/Infof/Errorf.
type Log struct {
	zl   zerolog.Logger
	file *os.File
}

// NewLogger создает логгер по настройкам из секции logger конфига.
// target: stdout, stderr (по умолчанию) или file.
func NewLogger(target, level, filename string) (*Log, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	var (
		out  io.Writer
		file *os.File
	)
	switch strings.ToLower(target) {
	case "", "stderr":
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}
	case "stdout":
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}
	case "file":
		if filename == "" {
			return nil, fmt.Errorf("logger target file requires filename")
		}
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("error opening log file: %w", err)
		}
		out, file = f, f
	default:
		return nil, fmt.Errorf("unknown logger target: %s", target)
	}

	return &Log{
		zl:   zerolog.New(out).Level(lvl).With().Timestamp().Logger(),
		file: file,
	}, nil
}

// New оборачивает произвольный writer, удобно для тестов.
func New(w io.Writer, level zerolog.Level) *Log {
	return &Log{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Nop логгер, который ничего не пишет.
func Nop() *Log {
	return &Log{zl: zerolog.Nop()}
}

// With возвращает дочерний логгер с постоянными полями.
func (l *Log) With(keysAndValues ...interface{}) *Log {
	ctx := l.zl.With()
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprintf("%v", keysAndValues[i])
		if i+1 < len(keysAndValues) {
			ctx = ctx.Interface(key, keysAndValues[i+1])
		} else {
			ctx = ctx.Interface(key, nil)
		}
	}
	return &Log{zl: ctx.Logger(), file: l.file}
}

func (l *Log) log(event *zerolog.Event, msg string, keysAndValues ...interface{}) {
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprintf("%v", keysAndValues[i])
		if i+1 < len(keysAndValues) {
			event.Interface(key, keysAndValues[i+1])
		} else {
			event.Interface(key, nil)
		}
	}
	event.Msg(msg)
}

func (l *Log) Debug(msg string, keysAndValues ...interface{}) {
	l.log(l.zl.Debug(), msg, keysAndValues...)
}

func (l *Log) Info(msg string, keysAndValues ...interface{}) {
	l.log(l.zl.Info(), msg, keysAndValues...)
}

func (l *Log) Warn(msg string, keysAndValues ...interface{}) {
	l.log(l.zl.Warn(), msg, keysAndValues...)
}

func (l *Log) Error(msg string, keysAndValues ...interface{}) {
	l.log(l.zl.Error(), msg, keysAndValues...)
}

func (l *Log) Debugf(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

func (l *Log) Infof(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Log) Warnf(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *Log) Errorf(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Close закрывает файл лога, если он был открыт.
func (l *Log) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
