// Package diagnostics defines the error taxonomy shared by every compile
// phase: parsing, resolution, DAG construction, and artifact rendering.
package diagnostics

import (
	"fmt"
	"strings"
)

// Kind enumerates the taxonomy from the compiler's error model.
type Kind string

const (
	KindParseError         Kind = "ParseError"
	KindUnknownRef          Kind = "UnknownRef"
	KindUnknownConnection   Kind = "UnknownConnection"
	KindUnknownCluster      Kind = "UnknownCluster"
	KindUnknownSmt          Kind = "UnknownSmt"
	KindUnknownPipeline     Kind = "UnknownPipeline"
	KindUnknownPredicate    Kind = "UnknownPredicate"
	KindDuplicateDecl       Kind = "DuplicateDecl"
	KindPresetCycle         Kind = "PresetCycle"
	KindDagCycle            Kind = "DagCycle"
	KindInvalidPredicate    Kind = "InvalidPredicate"
	KindAmbiguousSource     Kind = "AmbiguousSource"
	KindMissingTargetSchema Kind = "MissingTargetSchema"
)

// Severity distinguishes fatal diagnostics from advisory ones. Severity is
// set per diagnostic, not per Kind: AmbiguousSource is always raised as a
// warning, and the connector compiler also raises DuplicateDecl and
// InvalidPredicate warnings (connection keys not injected, pipeline-level
// predicates).
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Span locates a diagnostic within source text.
type Span struct {
	File string
	Line int
	Col  int
}

func (s Span) String() string {
	if s.File == "" {
		return ""
	}
	if s.Line <= 0 {
		return s.File
	}
	if s.Col <= 0 {
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}

// Diagnostic is a single structured compiler error or warning.
type Diagnostic struct {
	Kind       Kind
	Severity   Severity
	Span       Span
	Identifier string
	Message    string
	Err        error
}

// New builds a fatal diagnostic of the given kind.
func New(kind Kind, span Span, identifier, message string) *Diagnostic {
	return &Diagnostic{Kind: kind, Severity: SeverityError, Span: span, Identifier: identifier, Message: message}
}

// Warning builds a warning-level diagnostic (compile still succeeds).
func Warning(kind Kind, span Span, identifier, message string) *Diagnostic {
	return &Diagnostic{Kind: kind, Severity: SeverityWarning, Span: span, Identifier: identifier, Message: message}
}

func (d *Diagnostic) Error() string {
	if d == nil {
		return ""
	}
	loc := d.Span.String()
	switch {
	case loc != "" && d.Identifier != "":
		return fmt.Sprintf("%s: %s: %s (%s)", loc, d.Kind, d.Message, d.Identifier)
	case loc != "":
		return fmt.Sprintf("%s: %s: %s", loc, d.Kind, d.Message)
	case d.Identifier != "":
		return fmt.Sprintf("%s: %s (%s)", d.Kind, d.Message, d.Identifier)
	default:
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
}

// Unwrap exposes any wrapped cause for errors.As/errors.Is.
func (d *Diagnostic) Unwrap() error {
	if d == nil {
		return nil
	}
	return d.Err
}

// IsFatal reports whether the diagnostic should abort the compile.
func (d *Diagnostic) IsFatal() bool {
	return d != nil && d.Severity == SeverityError
}

// Bag aggregates diagnostics produced over a single compile phase so that
// all failures in a pass are reported together rather than one at a time.
type Bag struct {
	items []*Diagnostic
}

// Add appends a diagnostic to the bag. Nil diagnostics are ignored.
func (b *Bag) Add(d *Diagnostic) {
	if d == nil {
		return
	}
	b.items = append(b.items, d)
}

// Addf is a convenience wrapper around New + Add.
func (b *Bag) Addf(kind Kind, span Span, identifier, format string, args ...interface{}) {
	b.Add(New(kind, span, identifier, fmt.Sprintf(format, args...)))
}

// Warnf is a convenience wrapper around Warning + Add.
func (b *Bag) Warnf(kind Kind, span Span, identifier, format string, args ...interface{}) {
	b.Add(Warning(kind, span, identifier, fmt.Sprintf(format, args...)))
}

// Items returns all diagnostics collected so far, fatal and warning alike.
func (b *Bag) Items() []*Diagnostic {
	return b.items
}

// Warnings returns only the warning-severity diagnostics.
func (b *Bag) Warnings() []*Diagnostic {
	var out []*Diagnostic
	for _, d := range b.items {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// Fatal reports whether any fatal diagnostic has been recorded.
func (b *Bag) Fatal() bool {
	for _, d := range b.items {
		if d.IsFatal() {
			return true
		}
	}
	return false
}

// Err collapses all fatal diagnostics into a single error, or nil if the
// bag holds no fatal diagnostics. Warnings never cause Err to return
// non-nil.
func (b *Bag) Err() error {
	var fatal []*Diagnostic
	for _, d := range b.items {
		if d.IsFatal() {
			fatal = append(fatal, d)
		}
	}
	if len(fatal) == 0 {
		return nil
	}
	if len(fatal) == 1 {
		return fatal[0]
	}
	return &MultiError{Diagnostics: fatal}
}

// MultiError bundles more than one fatal diagnostic from a single phase.
type MultiError struct {
	Diagnostics []*Diagnostic
}

func (m *MultiError) Error() string {
	var b strings.Builder
	for i, d := range m.Diagnostics {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(d.Error())
	}
	return b.String()
}

// Unwrap supports errors.Is/errors.As traversal into every bundled
// diagnostic.
func (m *MultiError) Unwrap() []error {
	out := make([]error, len(m.Diagnostics))
	for i, d := range m.Diagnostics {
		out[i] = d
	}
	return out
}
