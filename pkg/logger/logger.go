package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	log         zerolog.Logger
	development bool
)

func init() {
	Init(os.Getenv("ENVIRONMENT"))
}

// Init configures the process logger. Development gets a human readable
// console writer, everything else emits JSON lines.
func Init(env string) {
	development = env == "" || env == "development"
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if development {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	level := zerolog.InfoLevel
	if development {
		level = zerolog.DebugLevel
	}

	log = zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", "roadrescue-api").
		Logger()
}

// SetOutput redirects logs, mainly for tests.
func SetOutput(w io.Writer) {
	log = log.Output(w)
}

// L exposes the underlying zerolog logger for structured events.
func L() *zerolog.Logger {
	return &log
}

func Info(format string, v ...interface{}) {
	log.Info().Msg(fmt.Sprintf(format, v...))
}

func Warn(format string, v ...interface{}) {
	log.Warn().Msg(fmt.Sprintf(format, v...))
}

func Error(format string, v ...interface{}) {
	log.Error().Msg(fmt.Sprintf(format, v...))
}

func Debug(format string, v ...interface{}) {
	if development {
		log.Debug().Msg(fmt.Sprintf(format, v...))
	}
}

// Fatal logs and exits the process.
func Fatal(format string, v ...interface{}) {
	log.Fatal().Msg(fmt.Sprintf(format, v...))
}

// LogTransitionError records a request state change that failed after the
// state itself was persisted (e.g. a publish failure).
func LogTransitionError(requestID, action string, err error) {
	log.Warn().
		Str("request_id", requestID).
		Str("action", action).
		Err(err).
		Msg("request side effect failed")
}
