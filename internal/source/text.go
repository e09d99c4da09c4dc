package source

import (
	"fmt"
	"io"
	"strings"
)

const utf8BOM = "\ufeff"

// TextExtractor handles raw interchange files.
type TextExtractor struct{}

func (e *TextExtractor) Extract(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	return strings.TrimPrefix(string(data), utf8BOM), nil
}
