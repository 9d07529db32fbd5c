package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Logs go to stderr: stdout carries tables and snippets.
var log zerolog.Logger

const DefaultLevel = "warn"

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	SetOutput(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    color.NoColor,
		TimeFormat: time.Kitchen,
	})
	SetLevel(DefaultLevel)
}

// SetOutput redirects all log output, e.g. to a buffer in tests.
func SetOutput(w io.Writer) {
	log = zerolog.New(w).
		With().
		Timestamp().
		Logger()
}

func GetLogger() zerolog.Logger {
	return log
}

// ParseLevel maps a level name to a zerolog level. Unknown names map to
// the default level and ok is false.
func ParseLevel(level string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "fatal":
		return zerolog.FatalLevel, true
	case "panic":
		return zerolog.PanicLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.WarnLevel, false
	}
}

func SetLevel(level string) {
	lvl, ok := ParseLevel(level)
	zerolog.SetGlobalLevel(lvl)
	if !ok && level != "" {
		log.Warn().Str("level", level).Msg("unknown log level, using warn")
	}
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}
