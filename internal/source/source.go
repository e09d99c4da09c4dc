// Package source pulls interchange text out of the file formats partners
// actually send: raw EDI files, but also EDI pasted into Markdown, HTML,
// PDF and Word documents.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Extractor returns the interchange text held in a document.
type Extractor interface {
	Extract(r io.Reader, filename string) (string, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".edi":      true,
	".edifact":  true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tunes extractors that shell out or have fallbacks.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string, opts Options) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".edi", ".edifact", ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
