// Package edifact reads UN/EDIFACT interchange text into a document tree.
//
// Parsing runs in two passes. A Tokenizer turns the raw text into a flat
// token sequence, resolving custom delimiters from a leading UNA header and
// materialising release-character escapes. A Parser then walks the tokens
// once, using the service segment tags (UNB/UNZ, UNH/UNT) as structural
// delimiters, and builds a File:
//
//	File -> Interchange -> Message -> Segment -> Element -> Component
//
// Malformed or out-of-place input is skipped rather than rejected, so Parse
// never fails by default and may return a partial tree. WithStrict turns the
// skips into errors without changing the tree that is built.
//
// The tree is read-only once built. Walk it with a Visitor; BaseVisitor
// provides no-op methods so a visitor only implements the kinds it needs.
package edifact

import (
	"fmt"
	"io"
)

// Parse tokenizes and parses data in one step.
func Parse(data string, opts ...Option) (*File, error) {
	tokens, err := NewTokenizer(data, opts...).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens, opts...).Parse()
}

// ParseReader reads r fully and parses its contents.
func ParseReader(r io.Reader, opts ...Option) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read interchange: %w", err)
	}
	return Parse(string(data), opts...)
}
