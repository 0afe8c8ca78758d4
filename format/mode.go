package format

import (
	"fmt"
	"strings"
)

// Mode selects how a report is rendered
type Mode int

const (
	TextOnly Mode = iota
	StructuredNoTrace
	StructuredWithTrace
)

var modeNames = map[Mode]string{
	TextOnly:            "text",
	StructuredNoTrace:   "json",
	StructuredWithTrace: "json-trace",
}

// Structured reports whether the mode renders JSON
func (m Mode) Structured() bool {
	return m == StructuredNoTrace || m == StructuredWithTrace
}

// IncludesTrace reports whether the mode carries a stack trace
func (m Mode) IncludesTrace() bool {
	return m == StructuredWithTrace
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts the names printed by String
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for mode, name := range modeNames {
		if name == s {
			return mode, nil
		}
	}
	return TextOnly, fmt.Errorf("unknown report mode %q (expected text, json or json-trace)", s)
}
