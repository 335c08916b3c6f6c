package tdlib

import (
	"log/slog"
	"regexp"
	"strconv"
)

// LogLevel maps a TDLib verbosity level to a slog level: 0 (fatal) and 1 (error)
// map to Error, 2 to Warn, 3 to Info, and anything more verbose to Debug.
func LogLevel(verbosity int) slog.Level {
	switch {
	case verbosity <= 1:
		return slog.LevelError
	case verbosity == 2:
		return slog.LevelWarn
	case verbosity == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

var logLinePattern = regexp.MustCompile(`^\[\s*(\d+)\]`)

// ParseLogLine extracts the verbosity prefix TDLib writes at the start of each
// log line, e.g. "[ 2][t 4][1700000000.1][Client.cpp:12] ...". Lines without a
// prefix are reported at verbosity 3.
func ParseLogLine(line string) int {
	m := logLinePattern.FindStringSubmatch(line)
	if m == nil {
		return 3
	}
	verbosity, err := strconv.Atoi(m[1])
	if err != nil {
		return 3
	}
	return verbosity
}
