// Package parser implements the dialect parser: model macro extraction
// (macro.go) and the Kafka DDL grammar (this file) — CREATE KAFKA
// CONNECTOR, SIMPLE MESSAGE TRANSFORM, ... PIPELINE, and ... PREDICATE.
package parser

import (
	"fmt"
	"strings"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/ast"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/lexer"
	"github.com/lewisthorpe1994/DataPipelineFoundry/pkg/diagnostics"
)

// Parser walks a Kafka DDL token stream and produces one ast.Statement.
type Parser struct {
	file   string
	tokens []lexer.Token
	pos    int
}

// ParseKafkaStatement parses a single Kafka DDL statement (connector,
// SMT, pipeline, or predicate declaration) from src.
func ParseKafkaStatement(file, src string) (ast.Statement, *diagnostics.Diagnostic) {
	tokens, diag := lexer.Tokenize(file, src)
	if diag != nil {
		return nil, diag
	}
	p := &Parser{file: file, tokens: tokens}
	return p.parseStatement()
}

func (p *Parser) parseStatement() (ast.Statement, *diagnostics.Diagnostic) {
	if err := p.expectKeyword("CREATE"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("KAFKA"); err != nil {
		return nil, err
	}

	switch {
	case p.peekKeyword("CONNECTOR"):
		p.advance()
		return p.parseConnector()
	case p.peekKeyword("SIMPLE"):
		p.advance()
		if err := p.expectKeyword("MESSAGE"); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("TRANSFORM"); err != nil {
			return nil, err
		}
		switch {
		case p.peekKeyword("PIPELINE"):
			p.advance()
			return p.parsePipeline()
		case p.peekKeyword("PREDICATE"):
			p.advance()
			return p.parsePredicate()
		default:
			return p.parseSmt()
		}
	default:
		return nil, p.errorf("expected CONNECTOR or SIMPLE MESSAGE TRANSFORM")
	}
}

// parseConnector parses everything after `CREATE KAFKA CONNECTOR`.
func (p *Parser) parseConnector() (*ast.ConnectorStmt, *diagnostics.Diagnostic) {
	start := p.here()
	stmt := &ast.ConnectorStmt{Span: start}

	stmt.IfNotExists = p.consumeIfNotExists()

	if err := p.expectKeyword("KIND"); err != nil {
		return nil, err
	}
	vendor, err := p.expectIdentValue()
	if err != nil {
		return nil, err
	}
	engine, err := p.expectIdentValue()
	if err != nil {
		return nil, err
	}
	direction, err := p.expectIdentValue()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdentValue()
	if err != nil {
		return nil, err
	}

	stmt.Vendor = strings.ToLower(vendor)
	stmt.Engine = strings.ToLower(engine)
	switch strings.ToLower(direction) {
	case "source":
		stmt.Direction = ast.DirectionSource
	case "sink":
		stmt.Direction = ast.DirectionSink
	default:
		return nil, p.errorf("connector direction must be SOURCE or SINK, got %q", direction)
	}
	stmt.Name = name

	if err := p.expectKeyword("USING"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("KAFKA"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("CLUSTER"); err != nil {
		return nil, err
	}
	cluster, err := p.expectString()
	if err != nil {
		return nil, err
	}
	stmt.ClusterName = cluster

	props, err := p.parseParenKVList()
	if err != nil {
		return nil, err
	}
	stmt.Properties = props

	if err := p.expectKeyword("WITH"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("CONNECTOR"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("VERSION"); err != nil {
		return nil, err
	}
	version, err := p.expectString()
	if err != nil {
		return nil, err
	}
	stmt.Version = version

	if p.peekKeyword("AND") {
		p.advance()
		if err := p.expectKeyword("PIPELINES"); err != nil {
			return nil, err
		}
		pipelines, err := p.parseParenIdentList()
		if err != nil {
			return nil, err
		}
		stmt.Pipelines = pipelines
	}

	switch {
	case p.peekKeyword("FROM"):
		p.advance()
		if err := p.expectKeyword("SOURCE"); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("DATABASE"); err != nil {
			return nil, err
		}
		conn, err := p.expectString()
		if err != nil {
			return nil, err
		}
		stmt.ConnectionName = conn
	case p.peekKeyword("INTO"):
		p.advance()
		if err := p.expectKeyword("WAREHOUSE"); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("DATABASE"); err != nil {
			return nil, err
		}
		conn, err := p.expectString()
		if err != nil {
			return nil, err
		}
		stmt.ConnectionName = conn
		if err := p.expectKeyword("USING"); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("SCHEMA"); err != nil {
			return nil, err
		}
		schema, err := p.expectString()
		if err != nil {
			return nil, err
		}
		stmt.TargetSchema = schema
	default:
		return nil, p.errorf("expected FROM SOURCE DATABASE or INTO WAREHOUSE DATABASE")
	}

	p.consumeSemicolon()
	return stmt, nil
}

// parseSmt parses everything after `CREATE KAFKA SIMPLE MESSAGE TRANSFORM`
// when it is not followed by PIPELINE or PREDICATE.
func (p *Parser) parseSmt() (*ast.SmtStmt, *diagnostics.Diagnostic) {
	start := p.here()
	stmt := &ast.SmtStmt{Span: start}

	stmt.IfNotExists = p.consumeIfNotExists()

	name, err := p.expectIdentValue()
	if err != nil {
		return nil, err
	}
	stmt.Name = name

	if p.peekPunct("(") {
		cfg, err := p.parseParenKVList()
		if err != nil {
			return nil, err
		}
		stmt.Config = cfg
	}

	if p.peekKeyword("PRESET") {
		p.advance()
		preset, err := p.expectIdentOrDottedValue()
		if err != nil {
			return nil, err
		}
		stmt.PresetRef = preset
	}

	if p.peekKeyword("EXTEND") {
		p.advance()
		ext, err := p.parseParenKVList()
		if err != nil {
			return nil, err
		}
		stmt.Extend = ext
	}

	if p.peekKeyword("WITH") {
		p.advance()
		if err := p.expectKeyword("PREDICATE"); err != nil {
			return nil, err
		}
		predName, err := p.expectString()
		if err != nil {
			return nil, err
		}
		ref := &ast.PredicateRef{Name: predName}
		if p.peekKeyword("NEGATE") {
			p.advance()
			ref.Negate = true
		}
		stmt.Predicate = ref
	}

	p.consumeSemicolon()
	return stmt, nil
}

// parsePipeline parses everything after
// `CREATE KAFKA SIMPLE MESSAGE TRANSFORM PIPELINE`.
func (p *Parser) parsePipeline() (*ast.PipelineStmt, *diagnostics.Diagnostic) {
	start := p.here()
	stmt := &ast.PipelineStmt{Span: start}

	stmt.IfNotExists = p.consumeIfNotExists()

	name, err := p.expectIdentValue()
	if err != nil {
		return nil, err
	}
	stmt.Name = name

	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	for {
		step := ast.PipelineStep{}
		smtName, err := p.expectIdentValue()
		if err != nil {
			return nil, err
		}
		step.SmtName = smtName

		if p.peekPunct("(") {
			overrides, err := p.parseParenKVList()
			if err != nil {
				return nil, err
			}
			step.Overrides = overrides
		}

		if p.peekKeyword("AS") {
			p.advance()
			alias, err := p.expectIdentValue()
			if err != nil {
				return nil, err
			}
			step.Alias = alias
		}

		stmt.Steps = append(stmt.Steps, step)

		if p.peekPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	if p.peekKeyword("WITH") {
		p.advance()
		if err := p.expectKeyword("PIPELINE"); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("PREDICATE"); err != nil {
			return nil, err
		}
		pred, err := p.expectString()
		if err != nil {
			return nil, err
		}
		stmt.PipelinePredicate = pred
	}

	p.consumeSemicolon()
	return stmt, nil
}

// parsePredicate parses everything after
// `CREATE KAFKA SIMPLE MESSAGE TRANSFORM PREDICATE`.
func (p *Parser) parsePredicate() (*ast.PredicateStmt, *diagnostics.Diagnostic) {
	start := p.here()
	stmt := &ast.PredicateStmt{Span: start}

	stmt.IfNotExists = p.consumeIfNotExists()

	name, err := p.expectIdentValue()
	if err != nil {
		return nil, err
	}
	stmt.Name = name

	if p.peekKeyword("USING") {
		p.advance()
		if err := p.expectKeyword("PATTERN"); err != nil {
			return nil, err
		}
		pattern, err := p.expectString()
		if err != nil {
			return nil, err
		}
		stmt.Pattern = pattern
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("KIND"); err != nil {
		return nil, err
	}
	kind, err := p.expectIdentValue()
	if err != nil {
		return nil, err
	}
	stmt.Kind = kind

	p.consumeSemicolon()
	return stmt, nil
}

// --- low-level helpers -----------------------------------------------

func (p *Parser) parseParenKVList() ([]ast.KV, *diagnostics.Diagnostic) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var kvs []ast.KV
	if p.peekPunct(")") {
		p.advance()
		return kvs, nil
	}
	for {
		key, err := p.expectIdentOrDottedValue()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("="); err != nil {
			return nil, err
		}
		value, err := p.expectStringOrIdentValue()
		if err != nil {
			return nil, err
		}
		kvs = append(kvs, ast.KV{Key: key, Value: value})

		if p.peekPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return kvs, nil
}

func (p *Parser) parseParenIdentList() ([]string, *diagnostics.Diagnostic) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var out []string
	if p.peekPunct(")") {
		p.advance()
		return out, nil
	}
	for {
		v, err := p.expectIdentValue()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if p.peekPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Parser) consumeIfNotExists() bool {
	if p.peekKeyword("IF") {
		save := p.pos
		p.advance()
		if p.peekKeyword("NOT") {
			p.advance()
			if p.peekKeyword("EXISTS") {
				p.advance()
				return true
			}
		}
		p.pos = save
	}
	return false
}

func (p *Parser) consumeSemicolon() {
	if p.peekPunct(";") {
		p.advance()
	}
}

func (p *Parser) here() ast.Span {
	return p.current().Span
}

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() lexer.Token {
	t := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) peekKeyword(kw string) bool { return p.current().IsKeyword(kw) }
func (p *Parser) peekPunct(v string) bool    { return p.current().IsPunct(v) }

func (p *Parser) expectKeyword(kw string) *diagnostics.Diagnostic {
	if !p.peekKeyword(kw) {
		return p.errorf("expected %q, got %q", kw, p.current().Value)
	}
	p.advance()
	return nil
}

func (p *Parser) expectPunct(v string) *diagnostics.Diagnostic {
	if !p.peekPunct(v) {
		return p.errorf("expected %q, got %q", v, p.current().Value)
	}
	p.advance()
	return nil
}

func (p *Parser) expectString() (string, *diagnostics.Diagnostic) {
	tok := p.current()
	if tok.Type != lexer.TokenString {
		return "", p.errorf("expected string literal, got %q", tok.Value)
	}
	p.advance()
	return tok.Value, nil
}

func (p *Parser) expectIdentValue() (string, *diagnostics.Diagnostic) {
	tok := p.current()
	if tok.Type != lexer.TokenIdent {
		return "", p.errorf("expected identifier, got %q", tok.Value)
	}
	p.advance()
	return tok.Value, nil
}

// expectIdentOrDottedValue accepts config keys that may contain dots, e.g.
// `database.hostname`.
func (p *Parser) expectIdentOrDottedValue() (string, *diagnostics.Diagnostic) {
	var b strings.Builder
	first, err := p.expectIdentValue()
	if err != nil {
		return "", err
	}
	b.WriteString(first)
	for p.peekPunct(".") {
		p.advance()
		next, err := p.expectIdentValue()
		if err != nil {
			return "", err
		}
		b.WriteString(".")
		b.WriteString(next)
	}
	return b.String(), nil
}

func (p *Parser) expectStringOrIdentValue() (string, *diagnostics.Diagnostic) {
	tok := p.current()
	switch tok.Type {
	case lexer.TokenString, lexer.TokenIdent, lexer.TokenNumber:
		p.advance()
		return tok.Value, nil
	}
	return "", p.errorf("expected value, got %q", tok.Value)
}

func (p *Parser) errorf(format string, args ...interface{}) *diagnostics.Diagnostic {
	return diagnostics.New(diagnostics.KindParseError, p.here(), "", fmt.Sprintf(format, args...))
}
