package source

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor pulls interchange text from code blocks. Blocks fenced
// as edi or edifact win over unlabelled ones; a document with no code
// blocks is treated as raw text.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var tagged, untagged []string
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			body := blockLines(node, src)
			if isEDILanguage(string(node.Language(src))) {
				tagged = append(tagged, body)
			} else {
				untagged = append(untagged, body)
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			untagged = append(untagged, blockLines(node, src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}

	switch {
	case len(tagged) > 0:
		return strings.Join(tagged, "\n"), nil
	case len(untagged) > 0:
		return strings.Join(untagged, "\n"), nil
	default:
		return strings.TrimPrefix(string(src), utf8BOM), nil
	}
}

func isEDILanguage(lang string) bool {
	switch strings.ToLower(lang) {
	case "edi", "edifact", "un-edifact":
		return true
	}
	return false
}

// blockLines gets the raw text of a goldmark code block.
func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return strings.TrimSpace(buf.String())
}
