package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Analysis - Host Input Document
// =============================================================================

// Analysis is the document the host receives from the analysis service:
// an optional syntax-tree fragment plus the flat token stream.
//
//	{
//	  "ast":    {"type": "Program", "children": [...]},
//	  "tokens": [{"type": "ID", "lexeme": "x", "line": 1, "column": 5}]
//	}
type Analysis struct {
	AST    *Node   `json:"ast,omitempty"`
	Tokens []Token `json:"tokens,omitempty"`
}

// Tree builds the merged tree for the document. See Build.
func (a Analysis) Tree() *Node {
	return Build(a.AST, a.Tokens)
}

// Empty reports whether the document carries nothing to draw.
func (a Analysis) Empty() bool {
	return a.AST == nil && len(a.Tokens) == 0
}

// ReadAnalysis decodes an Analysis document from r.
func ReadAnalysis(r io.Reader) (Analysis, error) {
	var a Analysis
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	return a, nil
}

// ReadAnalysisFile reads an Analysis document from a JSON file.
func ReadAnalysisFile(path string) (Analysis, error) {
	f, err := os.Open(path)
	if err != nil {
		return Analysis{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadAnalysis(f)
}

// UnmarshalAnalysis decodes an Analysis document from bytes.
func UnmarshalAnalysis(data []byte) (Analysis, error) {
	return ReadAnalysis(bytes.NewReader(data))
}

// =============================================================================
// Tree Serialization
// =============================================================================

// WriteTree encodes root as indented JSON. A nil root is written as null.
func WriteTree(root *Node, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalTree encodes root as indented JSON bytes.
func MarshalTree(root *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTree(root, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
