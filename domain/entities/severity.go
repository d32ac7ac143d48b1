package entities

import (
	"fmt"
	"log/slog"
	"strings"
)

// Severity is a log level on the wire. Lower values are more severe.
type Severity uint32

const (
	SeverityError Severity = iota + 1
	SeverityWarn
	SeverityInfo
	SeverityDebug
	SeverityTrace
)

var severityNames = map[Severity]string{
	SeverityError: "ERROR",
	SeverityWarn:  "WARN",
	SeverityInfo:  "INFO",
	SeverityDebug: "DEBUG",
	SeverityTrace: "TRACE",
}

// String implements fmt.Stringer.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SEVERITY(%d)", uint32(s))
}

// Valid reports whether s is one of the defined severities.
func (s Severity) Valid() bool {
	return s >= SeverityError && s <= SeverityTrace
}

// MoreSevereThan reports whether s ranks above other.
func (s Severity) MoreSevereThan(other Severity) bool {
	return s < other
}

// ParseSeverity parses a case-insensitive severity name.
func ParseSeverity(name string) (Severity, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "WARNING" {
		upper = "WARN"
	}
	for s, n := range severityNames {
		if n == upper {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", name)
}

// levelTrace sits below slog.LevelDebug.
const levelTrace = slog.LevelDebug - 4

// SeverityFromLevel maps an slog level onto the wire severity.
func SeverityFromLevel(level slog.Level) Severity {
	switch {
	case level >= slog.LevelError:
		return SeverityError
	case level >= slog.LevelWarn:
		return SeverityWarn
	case level >= slog.LevelInfo:
		return SeverityInfo
	case level >= slog.LevelDebug:
		return SeverityDebug
	default:
		return SeverityTrace
	}
}

// Level maps the severity back onto slog.
func (s Severity) Level() slog.Level {
	switch s {
	case SeverityError:
		return slog.LevelError
	case SeverityWarn:
		return slog.LevelWarn
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityDebug:
		return slog.LevelDebug
	default:
		return levelTrace
	}
}
