// Package logging builds the logrus logger shared by the binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

const (
	TimestampFormat = "2006-01-02 15:04:05.000"
	OneDay          = 24 * time.Hour
	OneMonth        = 30 * OneDay
)

// Options configures New.
type Options struct {
	// Level is a logrus level name. Empty means info.
	Level string
	// Format is "text" or "json". Empty means text.
	Format string
	// Dir enables a daily rotated file sink under Dir in addition to Output.
	Dir    string
	MaxAge time.Duration
	// Output receives console logs. Nil means stderr.
	Output io.Writer
}

// New returns a configured logger.
func New(opts Options) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if strings.TrimSpace(opts.Level) != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		level = parsed
	}

	formatter, err := newFormatter(opts.Format)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(formatter)
	logger.SetReportCaller(false)
	if opts.Output != nil {
		logger.SetOutput(opts.Output)
	} else {
		logger.SetOutput(os.Stderr)
	}

	if opts.Dir != "" {
		writer, err := RotateLog(opts.Dir, opts.MaxAge)
		if err != nil {
			return nil, err
		}
		logger.AddHook(lfshook.NewHook(lfshook.WriterMap{
			logrus.DebugLevel: writer,
			logrus.InfoLevel:  writer,
			logrus.WarnLevel:  writer,
			logrus.ErrorLevel: writer,
			logrus.FatalLevel: writer,
			logrus.PanicLevel: writer,
		}, formatter))
	}
	return logger, nil
}

// RotateLog opens a writer that starts a new file under dir every day and
// removes files older than maxAge.
func RotateLog(dir string, maxAge time.Duration) (io.Writer, error) {
	if maxAge <= 0 {
		maxAge = OneMonth
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: create %s: %w", dir, err)
	}
	writer, err := rotatelogs.New(
		filepath.Join(dir, "checkout-%Y%m%d.log"),
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationTime(OneDay),
	)
	if err != nil {
		return nil, fmt.Errorf("logging: rotate: %w", err)
	}
	return writer, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newFormatter(format string) (logrus.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return &logrus.TextFormatter{
			TimestampFormat: TimestampFormat,
			FullTimestamp:   true,
		}, nil
	case "json":
		return &logrus.JSONFormatter{TimestampFormat: TimestampFormat}, nil
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}
}
