// Package logging prints leveled, tagged messages to the console and mirrors
// them into a structured log file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"playlistarr/internal/domain/consts"
	"playlistarr/internal/domain/regex"

	"github.com/rs/zerolog"
)

var (
	// Level controls debug verbosity (0-5).
	Level int

	mu        sync.Mutex
	fileLog   zerolog.Logger
	fileReady bool
)

// Setup opens or creates the log file and attaches the structured file logger.
func Setup(logFilePath string) error {
	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %q: %w", logFilePath, err)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	fileLog = zerolog.New(f).With().Timestamp().Logger()
	fileReady = true
	return nil
}

// I logs an informational message.
func I(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	msg := buildMsg(consts.BlueInfo, format, args)
	fmt.Print(msg)
	writeLog(zerolog.InfoLevel, msg)
}

// S logs a success message at the given debug level.
func S(l int, format string, args ...any) {
	if l > Level {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	msg := buildMsg(consts.GreenSuccess, format, args)
	fmt.Print(msg)
	writeLog(zerolog.InfoLevel, msg)
}

// W logs a warning message.
func W(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	msg := buildMsg(consts.YellowWarn, format, args)
	fmt.Print(msg)
	writeLog(zerolog.WarnLevel, msg)
}

// E logs an error message with caller information.
func E(l int, format string, args ...any) {
	if l > Level {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	msg := buildMsg(consts.RedError, format, args)
	msg = strings.TrimSuffix(msg, "\n") + callerTag(2) + "\n"
	fmt.Print(msg)
	writeLog(zerolog.ErrorLevel, msg)
}

// D logs a debug message with caller information at the given debug level.
func D(l int, format string, args ...any) {
	if l > Level {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	msg := buildMsg(consts.YellowDebug, format, args)
	msg = strings.TrimSuffix(msg, "\n") + callerTag(2) + "\n"
	fmt.Print(msg)
	writeLog(zerolog.DebugLevel, msg)
}

// P prints a plain message with no tag.
func P(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	msg := buildMsg("", format, args)
	fmt.Print(msg)
	writeLog(zerolog.InfoLevel, msg)
}

// buildMsg formats the message with its console tag and trailing newline.
func buildMsg(tag, format string, args []any) string {
	var b strings.Builder
	b.Grow(len(tag) + len(format) + len(args)*32)
	b.WriteString(tag)

	if len(args) != 0 {
		fmt.Fprintf(&b, format, args...)
	} else {
		b.WriteString(format)
	}

	b.WriteString("\n")
	return b.String()
}

// callerTag returns a "[Function - File : Line]" suffix for the caller.
func callerTag(skip int) string {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	file = filepath.Base(file)
	funcName := filepath.Base(runtime.FuncForPC(pc).Name())

	var b strings.Builder
	b.WriteString(" [")
	b.WriteString(consts.ColorBlue)
	b.WriteString("Function: ")
	b.WriteString(consts.ColorReset)
	b.WriteString(funcName)
	b.WriteString(" - ")
	b.WriteString(consts.ColorBlue)
	b.WriteString("File: ")
	b.WriteString(consts.ColorReset)
	b.WriteString(file)
	b.WriteString(" : ")
	b.WriteString(consts.ColorBlue)
	b.WriteString("Line: ")
	b.WriteString(consts.ColorReset)
	b.WriteString(strconv.Itoa(line))
	b.WriteString("]")
	return b.String()
}

// writeLog mirrors a console message into the structured log file, minus ANSI codes.
func writeLog(level zerolog.Level, msg string) {
	if !fileReady {
		return
	}
	clean := regex.AnsiEscapeCompile().ReplaceAllString(msg, "")
	fileLog.WithLevel(level).Msg(strings.TrimRight(clean, "\n"))
}
