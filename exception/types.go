// Package exception models an application error captured for reporting.
package exception

// CapturedError is a read-only snapshot of an application error
type CapturedError struct {
	Kind    string       `json:"kind"`
	Message string       `json:"message"`
	File    string       `json:"file"`
	Line    int          `json:"line"`
	Frames  []StackFrame `json:"frames"`
}

// StackFrame represents a single call site, innermost first
type StackFrame struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Function string   `json:"function"`
	Args     []string `json:"args,omitempty"`
}

// Kinder is implemented by errors that carry an explicit kind identifier.
// Capture prefers it over the dynamic type name.
type Kinder interface {
	Kind() string
}
