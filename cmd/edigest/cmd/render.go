package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dgallion1/edigest/internal/edifact"
)

var (
	pathColor  = color.New(color.Bold)
	groupColor = color.New(color.FgCyan)
	tagColor   = color.New(color.FgYellow)
	envColor   = color.New(color.FgHiBlack)
)

// printTree writes an indented outline of doc.
func printTree(w io.Writer, doc *document) {
	d := doc.Delimiters
	pathColor.Fprintln(w, doc.Path)
	if doc.File.UNA != nil {
		fmt.Fprintf(w, "  %s\n", envColor.Sprint(unaString(d)))
	}
	for i := range doc.File.Interchanges {
		ic := &doc.File.Interchanges[i]
		fmt.Fprintf(w, "  %s\n", groupColor.Sprintf("interchange %s (%s -> %s)", ic.Reference(), ic.Sender(), ic.Recipient()))
		printEnvelope(w, "    ", ic.Header, d)
		for j := range ic.Messages {
			msg := &ic.Messages[j]
			fmt.Fprintf(w, "    %s\n", groupColor.Sprintf("message %s %s", msg.Type(), msg.Reference()))
			printEnvelope(w, "      ", msg.Header, d)
			for k := range msg.Segments {
				fmt.Fprintf(w, "      %s\n", colorSegment(&msg.Segments[k], d))
			}
			printEnvelope(w, "      ", msg.Trailer, d)
		}
		printEnvelope(w, "    ", ic.Trailer, d)
	}
}

func printEnvelope(w io.Writer, indent string, seg *edifact.Segment, d edifact.Delimiters) {
	if seg == nil {
		return
	}
	fmt.Fprintf(w, "%s%s\n", indent, envColor.Sprint(renderSegment(seg, d)))
}

func colorSegment(seg *edifact.Segment, d edifact.Delimiters) string {
	rendered := renderSegment(seg, d)
	return tagColor.Sprint(seg.Tag) + strings.TrimPrefix(rendered, seg.Tag)
}

// renderSegment formats seg for terminal display only. It borrows the
// interchange notation so a line reads like the input, but it omits the
// terminator and is not a serializer: escaped separators were already
// re-split by the tokenizer, so the original text is not recovered.
func renderSegment(seg *edifact.Segment, d edifact.Delimiters) string {
	var b strings.Builder
	b.WriteString(seg.Tag)
	for _, el := range seg.Elements {
		b.WriteRune(d.Element)
		for i, c := range el.Components {
			if i > 0 {
				b.WriteRune(d.Component)
			}
			b.WriteString(release(c.Value, d))
		}
	}
	return b.String()
}

// release marks delimiter characters in a displayed value with the release
// character so they read as data.
func release(v string, d edifact.Delimiters) string {
	if !strings.ContainsAny(v, string([]rune{d.Component, d.Element, d.Release, d.Terminator})) {
		return v
	}
	var b strings.Builder
	for _, r := range v {
		switch r {
		case d.Component, d.Element, d.Release, d.Terminator:
			b.WriteRune(d.Release)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func unaString(d edifact.Delimiters) string {
	return "UNA" + string([]rune{d.Component, d.Element, d.Decimal, d.Release, d.Repetition, d.Terminator})
}

func printTokens(w io.Writer, doc *document) {
	pathColor.Fprintln(w, doc.Path)
	for i, tok := range doc.tokens {
		fmt.Fprintf(w, "%5d  %-20s %q\n", i, tok.Kind, tok.Value)
	}
}
