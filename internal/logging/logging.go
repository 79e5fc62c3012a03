// Package logging builds the zerolog loggers used by the example programs.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const (
	colorRed     = 31
	colorGreen   = 32
	colorYellow  = 33
	colorMagenta = 35

	colorBold = 1
)

// New returns a logger writing to w in the given format ("console" or
// "json") at the given level ("trace" through "panic", or "disabled").
// A nil w means os.Stderr.
func New(w io.Writer, format, level string) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("logging: %w", err)
	}

	var log zerolog.Logger
	switch strings.ToLower(format) {
	case "", "console":
		log = zerolog.New(zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
			cw.Out = w
			cw.NoColor = !isTerminal(w)
			cw.FormatLevel = formatLevel(cw.NoColor)
			cw.TimeFormat = "15:04:05.000"
		}))
	case "json":
		log = zerolog.New(w)
	default:
		return zerolog.Nop(), fmt.Errorf("logging: unknown format %q", format)
	}
	return log.Level(lvl).With().Timestamp().Logger(), nil
}

// Must is New for main functions: it falls back to an info-level console
// logger and reports the problem through it.
func Must(format, level string) zerolog.Logger {
	log, err := New(os.Stderr, format, level)
	if err != nil {
		log, _ = New(os.Stderr, "console", "info")
		log.Warn().Err(err).Msg("falling back to console logging")
	}
	return log
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

func colorize(s string, c int, disabled bool) string {
	if disabled {
		return s
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", c, s)
}

func formatLevel(noColor bool) zerolog.Formatter {
	return func(i interface{}) string {
		ll, ok := i.(string)
		if !ok {
			return colorize("???", colorBold, noColor)
		}
		switch ll {
		case "trace":
			return colorize("TRC", colorMagenta, noColor)
		case "debug":
			return colorize("DBG", colorYellow, noColor)
		case "info":
			return colorize("INF", colorGreen, noColor)
		case "warn":
			return colorize("WRN", colorRed, noColor)
		case "error":
			return colorize(colorize("ERR", colorRed, noColor), colorBold, noColor)
		case "fatal":
			return colorize(colorize("FTL", colorRed, noColor), colorBold, noColor)
		case "panic":
			return colorize(colorize("PNC", colorRed, noColor), colorBold, noColor)
		default:
			return colorize("???", colorBold, noColor)
		}
	}
}
