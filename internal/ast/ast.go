// Package ast defines the abstract syntax produced by internal/parser:
// macro calls inside model SQL, and the four Kafka DDL statement forms.
package ast

import "github.com/lewisthorpe1994/DataPipelineFoundry/pkg/diagnostics"

// Span is a source location, reused from the diagnostics package so every
// layer speaks the same coordinate system.
type Span = diagnostics.Span

// MacroKind distinguishes the two model macros.
type MacroKind string

const (
	MacroRef    MacroKind = "ref"
	MacroSource MacroKind = "source"
)

// MacroCall is a `ref(...)`/`source(...)` occurrence found inside a
// model's raw SQL text. Span covers the entire call (identifier through
// closing paren) so the resolver can replace it with a span-based text
// substitution without re-serializing the surrounding SQL.
type MacroCall struct {
	Name MacroKind
	Args []string
	Span Span
	// Start and End are rune offsets into the owning Model.RawSQL,
	// half-open ([Start,End)), spanning the identifier through the
	// closing parenthesis. The resolver replaces exactly this range.
	Start int
	End   int
}

// KV is a single key/value pair from a parenthesized property list. A
// slice (rather than a map) preserves declaration order, which matters
// for deterministic pretty-printing and for config merge semantics.
type KV struct {
	Key   string
	Value string
}

// PredicateRef names a predicate a SMT is gated by, with optional negation.
type PredicateRef struct {
	Name   string
	Negate bool
}

// Statement is implemented by every top-level Kafka DDL statement.
type Statement interface {
	statementNode()
	Location() Span
}

// ConnectorDirection is the data-flow direction of a connector.
type ConnectorDirection string

const (
	DirectionSource ConnectorDirection = "source"
	DirectionSink   ConnectorDirection = "sink"
)

// ConnectorStmt is `CREATE KAFKA CONNECTOR KIND ...`.
type ConnectorStmt struct {
	Span           Span
	IfNotExists    bool
	Vendor         string
	Engine         string
	Direction      ConnectorDirection
	Name           string
	ClusterName    string
	Properties     []KV
	Version        string
	Pipelines      []string
	ConnectionName string // source: FROM SOURCE DATABASE; sink: INTO WAREHOUSE DATABASE
	TargetSchema   string // sink only: USING SCHEMA
}

func (*ConnectorStmt) statementNode()    {}
func (s *ConnectorStmt) Location() Span { return s.Span }

// SmtStmt is `CREATE KAFKA SIMPLE MESSAGE TRANSFORM <name> ...`.
type SmtStmt struct {
	Span        Span
	IfNotExists bool
	Name        string
	Config      []KV
	PresetRef   string // empty when absent
	Extend      []KV
	Predicate   *PredicateRef
}

func (*SmtStmt) statementNode()    {}
func (s *SmtStmt) Location() Span { return s.Span }

// PipelineStep is one SMT invocation inside a pipeline.
type PipelineStep struct {
	SmtName   string
	Overrides []KV
	Alias     string // empty when absent
}

// PipelineStmt is `CREATE KAFKA SIMPLE MESSAGE TRANSFORM PIPELINE <name> (...)`.
type PipelineStmt struct {
	Span              Span
	IfNotExists       bool
	Name              string
	Steps             []PipelineStep
	PipelinePredicate string // empty when absent
}

func (*PipelineStmt) statementNode()    {}
func (s *PipelineStmt) Location() Span { return s.Span }

// PredicateStmt is `CREATE KAFKA SIMPLE MESSAGE TRANSFORM PREDICATE <name> ...`.
type PredicateStmt struct {
	Span        Span
	IfNotExists bool
	Name        string
	Kind        string
	Pattern     string // empty when absent
}

func (*PredicateStmt) statementNode()    {}
func (s *PredicateStmt) Location() Span { return s.Span }

// Model is the parsed form of a `.sql` model file: the raw SQL text plus
// every macro call found within it. Substitution happens by the resolver
// directly over RawSQL using the spans recorded here — see
// internal/resolver's design notes on span-based replacement.
type Model struct {
	Span    Span
	RawSQL  string
	Macros  []MacroCall
}
