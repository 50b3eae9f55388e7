package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	Init(os.Getenv("ENVIRONMENT"), os.Getenv("LOG_LEVEL"))
}

// Init rebuilds the package logger. Development gets a console writer and
// debug output; other environments log JSON at the requested level.
func Init(environment, level string) {
	var out io.Writer = os.Stdout
	if environment == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if environment == "development" {
		lvl = zerolog.DebugLevel
	}

	log = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// SetOutput redirects the logger, mainly for tests.
func SetOutput(w io.Writer) {
	log = log.Output(w)
}

func Info(format string, v ...interface{}) {
	log.Info().Str("caller", caller()).Msgf(format, v...)
}

func Error(format string, v ...interface{}) {
	log.Error().Str("caller", caller()).Msgf(format, v...)
}

func Debug(format string, v ...interface{}) {
	log.Debug().Str("caller", caller()).Msgf(format, v...)
}

func Warn(format string, v ...interface{}) {
	log.Warn().Str("caller", caller()).Msgf(format, v...)
}

// With returns a child logger carrying the given fields, for code that logs
// many lines about the same entity.
func With(fields map[string]interface{}) zerolog.Logger {
	return log.With().Fields(fields).Logger()
}

func caller() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	if idx := strings.LastIndex(file, "/"); idx >= 0 {
		file = file[idx+1:]
	}
	return fmt.Sprintf("%s:%d", file, line)
}
