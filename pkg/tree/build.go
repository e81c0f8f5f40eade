package tree

import (
	"fmt"
	"slices"
	"strings"
)

// Node types created by Build for synthetic nodes.
const (
	TypeAnalysis = "Analysis" // synthetic root joining the AST and the tokens
	TypeTokens   = "Tokens"   // parent of all line groups
)

var lexemeEscaper = strings.NewReplacer("\\", `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

// Build merges an optional syntax-tree fragment and a flat token sequence
// into one labeled tree.
//
// Tokens are grouped by source line in ascending order; each group becomes a
// "Line N" node whose children are one leaf per token, in input order. The
// groups hang below a "Tokens" node. When ast is non-nil, an "Analysis" root
// holds ast followed by the "Tokens" subtree (omitted when there are no
// tokens). Without an ast the "Tokens" node is the root.
//
// Build returns nil when both inputs are empty. Nil means "nothing to draw".
func Build(ast *Node, tokens []Token) *Node {
	var toks *Node
	if len(tokens) > 0 {
		toks = buildTokens(tokens)
	}

	switch {
	case ast == nil && toks == nil:
		return nil
	case ast == nil:
		return toks
	case toks == nil:
		return New(TypeAnalysis, "", ast)
	default:
		return New(TypeAnalysis, "", ast, toks)
	}
}

func buildTokens(tokens []Token) *Node {
	ordered := slices.Clone(tokens)
	slices.SortStableFunc(ordered, func(a, b Token) int { return a.Line - b.Line })

	root := &Node{Type: TypeTokens, Label: pluralize(len(tokens), "token")}
	for start := 0; start < len(ordered); {
		line := ordered[start].Line
		end := start
		for end < len(ordered) && ordered[end].Line == line {
			end++
		}

		group := &Node{
			Type:     fmt.Sprintf("Line %d", line),
			Label:    pluralize(end-start, "token"),
			Children: make([]*Node, 0, end-start),
		}
		for _, tok := range ordered[start:end] {
			group.Children = append(group.Children, Leaf(tok.Type, TokenLabel(tok)))
		}
		root.Children = append(root.Children, group)
		start = end
	}
	return root
}

// TokenLabel formats the secondary label of a token leaf: the lexeme with
// control characters escaped, followed by line:column.
func TokenLabel(tok Token) string {
	pos := fmt.Sprintf("%d:%d", tok.Line, tok.Column)
	if tok.Lexeme == "" {
		return pos
	}
	return EscapeLexeme(tok.Lexeme) + " " + pos
}

// EscapeLexeme escapes backslashes, newlines, carriage returns and tabs so a
// lexeme always renders on one line.
func EscapeLexeme(s string) string {
	return lexemeEscaper.Replace(s)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
