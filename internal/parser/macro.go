package parser

import (
	"strings"

	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/ast"
	"github.com/lewisthorpe1994/DataPipelineFoundry/internal/lexer"
	"github.com/lewisthorpe1994/DataPipelineFoundry/pkg/diagnostics"
)

// ParseModel tokenizes a model's raw SQL and extracts every ref(...)/
// source(...) macro call, preserving the surrounding text untouched.
// Detection works by argument shape (two or three single-quoted string
// literals immediately parenthesized after the identifier) combined with
// a positional check on the neighbouring tokens — the call must follow
// FROM, JOIN, a comma or an opening parenthesis, be the first token of
// the source, or immediately precede AS — so it survives nested
// subqueries and CTEs without needing a full SELECT grammar. Which clause
// a preceding comma or parenthesis belongs to is not checked.
func ParseModel(file, sql string) (*ast.Model, *diagnostics.Diagnostic) {
	tokens, diag := lexer.Tokenize(file, sql)
	if diag != nil {
		return nil, diag
	}

	model := &ast.Model{RawSQL: sql}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Type != lexer.TokenIdent {
			continue
		}
		name := strings.ToLower(tok.Value)
		if name != string(ast.MacroRef) && name != string(ast.MacroSource) {
			continue
		}
		if i+1 >= len(tokens) || !tokens[i+1].IsPunct("(") {
			continue
		}

		call, consumed, ok := tryParseMacroArgs(tokens, i+1)
		if !ok {
			continue
		}
		if !inMacroPosition(tokens, i, i+1+consumed) {
			continue
		}

		call.Name = ast.MacroKind(name)
		call.Span = tok.Span
		call.Start = tok.Start
		call.End = tokens[i+1+consumed-1].End

		model.Macros = append(model.Macros, call)
		i = i + consumed // skip past the consumed tokens (the '(' onward)
	}

	return model, nil
}

// tryParseMacroArgs parses "(  'a' , 'b' [, 'c'] )" starting at the open
// paren index. It returns the partial MacroCall (Args populated), the
// number of tokens consumed starting from openIdx, and whether the shape
// matched.
func tryParseMacroArgs(tokens []lexer.Token, openIdx int) (ast.MacroCall, int, bool) {
	i := openIdx
	if i >= len(tokens) || !tokens[i].IsPunct("(") {
		return ast.MacroCall{}, 0, false
	}
	i++

	var args []string
	for {
		if i >= len(tokens) || tokens[i].Type != lexer.TokenString {
			return ast.MacroCall{}, 0, false
		}
		args = append(args, tokens[i].Value)
		i++

		if i < len(tokens) && tokens[i].IsPunct(",") {
			i++
			continue
		}
		break
	}

	if len(args) < 2 || len(args) > 3 {
		return ast.MacroCall{}, 0, false
	}
	if i >= len(tokens) || !tokens[i].IsPunct(")") {
		return ast.MacroCall{}, 0, false
	}
	i++

	return ast.MacroCall{Args: args}, i - openIdx, true
}

// inMacroPosition checks the §4.1 positional requirement by looking only
// at the neighbouring tokens: the call must follow FROM, JOIN, a comma or
// an opening parenthesis, be the very first token of the source, or be
// immediately followed by AS. Whether that comma or parenthesis belongs
// to a FROM list is not checked.
func inMacroPosition(tokens []lexer.Token, identIdx, afterCallIdx int) bool {
	if afterCallIdx < len(tokens) && tokens[afterCallIdx].IsKeyword("AS") {
		return true
	}

	prevIdx := identIdx - 1
	if prevIdx < 0 {
		return true
	}
	prev := tokens[prevIdx]
	if prev.IsKeyword("FROM") || prev.IsKeyword("JOIN") {
		return true
	}
	if prev.IsPunct(",") {
		return true
	}
	if prev.IsPunct("(") {
		// Subquery/CTE open paren directly before the macro, e.g.
		// "FROM (ref('a','b'))" — still a table-expression position.
		return true
	}
	return false
}
