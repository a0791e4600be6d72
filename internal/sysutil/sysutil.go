// Package sysutil holds small process-level helpers used at startup:
// logger setup, boolean env parsing, and instance naming.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a case-insensitive level name onto a zerolog level.
// Unknown or empty names yield info.
func ParseLevel(lvl string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetLogLevel sets the global zerolog level.
func SetLogLevel(lvl string) { zerolog.SetGlobalLevel(ParseLevel(lvl)) }

// ConfigureLogger sets the global level and replaces the global logger.
// Pretty output writes a human-readable console format to w; otherwise w
// receives JSON lines.
func ConfigureLogger(w io.Writer, level string, pretty bool) zerolog.Logger {
	SetLogLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	l := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = l
	return l
}

// ParseBool reports the boolean value of an env-style string and whether it
// was recognized. Accepted (case-insensitive): 1/0, true/false, yes/no, y/n, on/off.
func ParseBool(v string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

// IsTruthy reports whether v parses as true.
func IsTruthy(v string) bool {
	b, _ := ParseBool(v)
	return b
}

// FirstNonEmpty returns the first value that is not blank, unmodified.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var hostname = os.Hostname

// InstanceName picks a name for this process, used as the NATS connection
// name and in startup logs.
func InstanceName(explicit string) string {
	h, _ := hostname()
	return FirstNonEmpty(explicit, os.Getenv("HOSTNAME"), h, "game-catalog")
}
