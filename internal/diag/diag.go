// Package diag defines the diagnostic types shared across the compiler:
// the error-kind taxonomy, source locations, and the accumulate-then-report
// diagnostics list every pipeline stage appends to.
package diag

import "fmt"

// Kind categorizes a compile diagnostic. All kinds other than a warning
// advisory are fatal to the compile; none are retried.
type Kind uint8

const (
	// KindUnsupportedConstruct indicates an input node kind outside §6.1.
	KindUnsupportedConstruct Kind = iota
	// KindTypeNotRepresentable indicates a host type with no GLSL spelling.
	KindTypeNotRepresentable
	// KindStageSplitConflict indicates a symbol written at two tiers with
	// interleaved reads and no whole-symbol interpolate.
	KindStageSplitConflict
	// KindStageOrderConflict indicates no tier-grouping topological order exists.
	KindStageOrderConflict
	// KindBadInterpolate indicates interpolate() applied to a component/swizzle.
	KindBadInterpolate
	// KindUnknownIdentifier indicates a symbol with no resolved binding.
	KindUnknownIdentifier
	// KindInternalInvariantViolated indicates an assertion failure in the
	// partitioner fixpoint. Should be unreachable; indicates a compiler bug.
	KindInternalInvariantViolated
	// KindUnusedVariable is a warning-only kind; it never fails a compile.
	KindUnusedVariable
	// KindRedundantForward is a warning-only kind for a varying nothing
	// downstream reads.
	KindRedundantForward
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindUnsupportedConstruct:
		return "UnsupportedConstruct"
	case KindTypeNotRepresentable:
		return "TypeNotRepresentable"
	case KindStageSplitConflict:
		return "StageSplitConflict"
	case KindStageOrderConflict:
		return "StageOrderConflict"
	case KindBadInterpolate:
		return "BadInterpolate"
	case KindUnknownIdentifier:
		return "UnknownIdentifier"
	case KindInternalInvariantViolated:
		return "InternalInvariantViolated"
	case KindUnusedVariable:
		return "UnusedVariable"
	case KindRedundantForward:
		return "RedundantForward"
	default:
		return "Unknown"
	}
}

// Severity distinguishes a fatal diagnostic from an advisory one.
type Severity uint8

const (
	// Error diagnostics fail the compile.
	Error Severity = iota
	// Warning diagnostics are surfaced but never prevent emission.
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Position is a line/column/byte-offset location in the original source.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Span is a source code location span, analogous to a token range.
type Span struct {
	Start Position
	End   Position
}

// Diagnostic is a single compile error or warning.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Span     *Span // nil when no source location is available
	Function string
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	loc := ""
	if d.Span != nil {
		loc = fmt.Sprintf(" at [%d:%d]", d.Span.Start.Line, d.Span.Start.Column)
	}
	if d.Function != "" {
		return fmt.Sprintf("%s %s%s in %s: %s", d.Severity, d.Kind, loc, d.Function, d.Message)
	}
	return fmt.Sprintf("%s %s%s: %s", d.Severity, d.Kind, loc, d.Message)
}

// FormatWithContext renders the diagnostic with a source snippet and a
// caret pointing at the error column, when both a span and the original
// source text are available.
func (d *Diagnostic) FormatWithContext(source string) string {
	if d.Span == nil || source == "" {
		return d.Error()
	}
	return formatCaret(d.Message, d.Span.Start, source)
}

// New creates a fatal diagnostic without a source span.
func New(kind Kind, message string) *Diagnostic {
	return &Diagnostic{Severity: Error, Kind: kind, Message: message}
}

// NewWithSpan creates a fatal diagnostic with a source span.
func NewWithSpan(kind Kind, message string, span Span) *Diagnostic {
	return &Diagnostic{Severity: Error, Kind: kind, Message: message, Span: &span}
}

// NewWarning creates an advisory diagnostic.
func NewWarning(kind Kind, message string) *Diagnostic {
	return &Diagnostic{Severity: Warning, Kind: kind, Message: message}
}

// NewWarningWithSpan creates an advisory diagnostic with a source span.
func NewWarningWithSpan(kind Kind, message string, span Span) *Diagnostic {
	return &Diagnostic{Severity: Warning, Kind: kind, Message: message, Span: &span}
}

// List accumulates diagnostics for one compile. Shared state is confined
// to a single compile invocation per §5 of the spec — concurrent compiles
// must each own a fresh List.
type List []*Diagnostic

// Add appends a diagnostic.
func (l *List) Add(d *Diagnostic) { *l = append(*l, d) }

// Error adds a fatal diagnostic without a span.
func (l *List) Error(kind Kind, message string) { l.Add(New(kind, message)) }

// ErrorAt adds a fatal diagnostic with a span.
func (l *List) ErrorAt(kind Kind, message string, span Span) { l.Add(NewWithSpan(kind, message, span)) }

// Warn adds an advisory diagnostic.
func (l *List) Warn(kind Kind, message string) { l.Add(NewWarning(kind, message)) }

// HasErrors reports whether the list contains any fatal diagnostic.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns the fatal diagnostics only.
func (l List) Errors() List {
	out := make(List, 0, len(l))
	for _, d := range l {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}

// FormatAll renders every diagnostic, one per line, with source context
// when available.
func (l List) FormatAll(source string) string {
	var out string
	for i, d := range l {
		if i > 0 {
			out += "\n"
		}
		out += d.FormatWithContext(source)
	}
	return out
}
