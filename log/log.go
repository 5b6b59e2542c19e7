package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime/debug"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

var (
	log      zerolog.Logger
	logMu    sync.RWMutex
	logLevel = LogLevelInfo

	// panicOnInvalidChars makes every log call panic if the rendered message
	// contains invalid UTF-8. It is set through LOG_PANIC_ON_INVALIDCHARS.
	panicOnInvalidChars = os.Getenv("LOG_PANIC_ON_INVALIDCHARS") == "true"

	// logTestWriter is used by tests and benchmarks to capture the output.
	logTestWriter     io.Writer = os.Stderr
	logTestWriterName           = "test"
)

func init() {
	// Allow overriding the default log level via $LOG_LEVEL, so that the
	// environment variable can be set globally even when running tests.
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = LogLevelError
	}
	Init(level, "stderr", nil)
}

// invalidCharHook panics on messages containing invalid UTF-8.
type invalidCharHook struct{}

func (invalidCharHook) Run(_ *zerolog.Event, _ zerolog.Level, msg string) {
	if !utf8.ValidString(msg) {
		panic(fmt.Sprintf("log message with invalid utf-8: %q", msg))
	}
}

// Init initializes the logger. Output can be stdout, stderr or a file path.
// If errorOutput is not nil, error messages are also written there.
func Init(level, output string, errorOutput io.Writer) {
	var out io.Writer
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot create log output: %v", err))
		}
		out = f
	}
	out = zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339Nano,
	}
	outputs := []io.Writer{out}
	if errorOutput != nil {
		outputs = append(outputs, &errorLevelWriter{zerolog.ConsoleWriter{
			Out:        errorOutput,
			TimeFormat: time.RFC3339Nano,
			NoColor:    true,
		}})
	}

	logMu.Lock()
	defer logMu.Unlock()
	log = zerolog.New(zerolog.MultiLevelWriter(outputs...)).With().Timestamp().Logger()
	if panicOnInvalidChars {
		log = log.Hook(invalidCharHook{})
	}
	if level == LogLevelDebug {
		log = log.With().Caller().Logger()
		zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
			return fmt.Sprintf("%s/%s:%d", path.Base(path.Dir(file)), path.Base(file), line)
		}
	}
	// the wrapper functions below add one frame
	zerolog.CallerSkipFrameCount = 3
	switch level {
	case LogLevelDebug:
		log = log.Level(zerolog.DebugLevel)
	case LogLevelInfo:
		log = log.Level(zerolog.InfoLevel)
	case LogLevelWarn:
		log = log.Level(zerolog.WarnLevel)
	case LogLevelError:
		log = log.Level(zerolog.ErrorLevel)
	default:
		panic(fmt.Sprintf("invalid log level: %q", level))
	}
	logLevel = level
	log.Debug().Msgf("logger construction succeeded at level %s with output %s", level, output)
}

// errorLevelWriter only forwards warnings and higher.
type errorLevelWriter struct {
	io.Writer
}

func (w *errorLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.WarnLevel {
		return len(p), nil
	}
	return w.Write(p)
}

// Logger returns the current logger.
func Logger() *zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	l := log
	return &l
}

// Level returns the current log level.
func Level() string {
	logMu.RLock()
	defer logMu.RUnlock()
	return logLevel
}

// Debug sends a debug level log message.
func Debug(args ...any) {
	l := Logger()
	l.Debug().Msg(fmt.Sprint(args...))
}

// Info sends an info level log message.
func Info(args ...any) {
	l := Logger()
	l.Info().Msg(fmt.Sprint(args...))
}

// Warn sends a warn level log message.
func Warn(args ...any) {
	l := Logger()
	l.Warn().Msg(fmt.Sprint(args...))
}

// Error sends an error level log message.
func Error(args ...any) {
	l := Logger()
	l.Error().Msg(fmt.Sprint(args...))
}

// Fatal sends a fatal level log message and exits.
func Fatal(args ...any) {
	l := Logger()
	l.Fatal().Msg(fmt.Sprint(args...) + "\n" + string(debug.Stack()))
}

// Debugf sends a formatted debug level log message.
func Debugf(template string, args ...any) {
	l := Logger()
	l.Debug().Msgf(template, args...)
}

// Infof sends a formatted info level log message.
func Infof(template string, args ...any) {
	l := Logger()
	l.Info().Msgf(template, args...)
}

// Warnf sends a formatted warn level log message.
func Warnf(template string, args ...any) {
	l := Logger()
	l.Warn().Msgf(template, args...)
}

// Errorf sends a formatted error level log message.
func Errorf(template string, args ...any) {
	l := Logger()
	l.Error().Msgf(template, args...)
}

// Fatalf sends a formatted fatal level log message and exits.
func Fatalf(template string, args ...any) {
	l := Logger()
	l.Fatal().Msgf(template+"\n"+string(debug.Stack()), args...)
}

// Debugw sends a debug level log message with key-value pairs.
func Debugw(msg string, keyvalues ...any) {
	l := Logger()
	l.Debug().Fields(keyvalues).Msg(msg)
}

// Infow sends an info level log message with key-value pairs.
func Infow(msg string, keyvalues ...any) {
	l := Logger()
	l.Info().Fields(keyvalues).Msg(msg)
}

// Warnw sends a warning level log message with key-value pairs.
func Warnw(msg string, keyvalues ...any) {
	l := Logger()
	l.Warn().Fields(keyvalues).Msg(msg)
}

// Errorw sends an error level log message with a special format for errors.
func Errorw(err error, msg string) {
	l := Logger()
	l.Error().Err(err).Msg(msg)
}
