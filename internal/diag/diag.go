// Package diag defines the diagnostics produced by a build and the error
// taxonomy shared by the pipeline stages.
package diag

import (
	"errors"
	"fmt"
)

// Severity classifies a diagnostic.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Sentinel errors. Callers match them with errors.Is.
var (
	// ErrMissingReference marks a listed dependency path that does not exist.
	ErrMissingReference = errors.New("missing reference")
	// ErrVersionOverflow is returned when incrementing the largest version.
	ErrVersionOverflow = errors.New("version overflow")
	// ErrPackagingMissingFile is returned when an export file is missing.
	ErrPackagingMissingFile = errors.New("packaging: missing file")
)

// Location points into a source file. Line and Column are 1-based; zero
// means unknown.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	switch {
	case l.Line > 0 && l.Column > 0:
		return fmt.Sprintf("%s(%d,%d)", l.File, l.Line, l.Column)
	case l.Line > 0:
		return fmt.Sprintf("%s(%d)", l.File, l.Line)
	default:
		return l.File
	}
}

// Diagnostic is a single compiler or pipeline message.
type Diagnostic struct {
	Severity Severity
	// Code is the compiler's diagnostic identifier, e.g. CS0246. Optional.
	Code     string
	Message  string
	Location *Location
}

// Errorf builds an Error diagnostic without a location.
func Errorf(format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...)}
}

// Warningf builds a Warning diagnostic without a location.
func Warningf(format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Warning, Message: fmt.Sprintf(format, args...)}
}

func (d Diagnostic) String() string {
	msg := d.Message
	if d.Code != "" {
		msg = d.Code + ": " + msg
	}
	if d.Location != nil && d.Location.File != "" {
		return fmt.Sprintf("%s: %s %s", d.Location, d.Severity, msg)
	}
	return fmt.Sprintf("%s %s", d.Severity, msg)
}

// Diagnostics is an ordered list of diagnostics.
type Diagnostics []Diagnostic

// HasErrors reports whether any diagnostic has Error severity.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with the given severity.
func (ds Diagnostics) Count(s Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// Errors returns only the Error diagnostics, in order.
func (ds Diagnostics) Errors() Diagnostics {
	return ds.filter(Error)
}

// Warnings returns only the Warning diagnostics, in order.
func (ds Diagnostics) Warnings() Diagnostics {
	return ds.filter(Warning)
}

func (ds Diagnostics) filter(s Severity) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}
