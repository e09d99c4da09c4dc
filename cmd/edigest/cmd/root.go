// Package cmd implements the edigest command line tool.
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dgallion1/edigest/internal/edifact"
	"github.com/dgallion1/edigest/internal/source"
)

var (
	verbose bool
	strict  bool
	noColor bool

	log = slog.New(slog.NewTextHandler(io.Discard, nil))
)

var rootCmd = &cobra.Command{
	Use:   "edigest",
	Short: "UN/EDIFACT interchange parser",
	Long: `edigest tokenizes and parses UN/EDIFACT interchange files into a
File / Interchange / Message / Segment tree.

Input may be a raw .edi file or EDI embedded in Markdown, HTML, PDF or
DOCX documents. Use "-" to read raw EDI from stdin.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		if noColor {
			color.NoColor = true
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output on stderr")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Report tokens that fall outside the interchange structure")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func parseOptions() []edifact.Option {
	if strict {
		return []edifact.Option{edifact.WithStrict()}
	}
	return nil
}

// loadText returns the interchange text held in path.
func loadText(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return (&source.TextExtractor{}).Extract(bytes.NewReader(data), "stdin.edi")
	}

	ex, err := source.ForFile(path, source.Options{PDFFallbackPdftotext: true})
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, err := ex.Extract(f, filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	return text, nil
}

// document is one parsed input.
type document struct {
	Path       string             `json:"path" yaml:"path"`
	Delimiters edifact.Delimiters `json:"delimiters" yaml:"delimiters"`
	Counts     edifact.Counts     `json:"counts" yaml:"counts"`
	File       *edifact.File      `json:"file" yaml:"file"`

	tokens []edifact.Token
}

func load(cmd *cobra.Command, path string) (*document, error) {
	text, err := loadText(cmd, path)
	if err != nil {
		return nil, err
	}

	opts := parseOptions()
	tz := edifact.NewTokenizer(text, opts...)
	tokens, err := tz.Tokenize()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	file, err := edifact.NewParser(tokens, opts...).Parse()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	doc := &document{
		Path:       path,
		Delimiters: tz.Delimiters(),
		Counts:     edifact.Count(file),
		File:       file,
		tokens:     tokens,
	}
	log.Debug("parsed", "path", path, "tokens", len(tokens), "interchanges", doc.Counts.Interchanges, "messages", doc.Counts.Messages)
	return doc, nil
}

func printError(cmd *cobra.Command, msg string, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "error: %s: %v\n", msg, err)
}
