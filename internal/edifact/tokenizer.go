package edifact

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Delimiters holds the service characters of an interchange.
type Delimiters struct {
	Component  rune
	Element    rune
	Decimal    rune
	Release    rune
	Repetition rune
	Terminator rune
}

func (d Delimiters) asMap() map[string]string {
	return map[string]string{
		"component":  string(d.Component),
		"element":    string(d.Element),
		"decimal":    string(d.Decimal),
		"release":    string(d.Release),
		"repetition": string(d.Repetition),
		"terminator": string(d.Terminator),
	}
}

// MarshalJSON renders each delimiter as a one-character string.
func (d Delimiters) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.asMap())
}

// MarshalYAML renders each delimiter as a one-character string.
func (d Delimiters) MarshalYAML() (any, error) {
	return d.asMap(), nil
}

// DefaultDelimiters returns the delimiters assumed when no UNA header is present.
func DefaultDelimiters() Delimiters {
	return Delimiters{
		Component:  ':',
		Element:    '+',
		Decimal:    '.',
		Release:    '?',
		Repetition: ' ',
		Terminator: '\'',
	}
}

// unaLen is the length of a complete UNA header: the tag plus six delimiters.
const unaLen = 9

// Tokenizer converts raw interchange text into a token sequence.
type Tokenizer struct {
	raw    []rune
	delims Delimiters
	tokens []Token
	opts   options
}

// NewTokenizer prepares data for tokenization. Surrounding whitespace is
// trimmed before anything else is looked at.
func NewTokenizer(data string, opts ...Option) *Tokenizer {
	return &Tokenizer{
		raw:    []rune(strings.TrimSpace(data)),
		delims: DefaultDelimiters(),
		opts:   buildOptions(opts),
	}
}

// Delimiters returns the delimiters in effect. After Tokenize this reflects
// any UNA header found in the input.
func (t *Tokenizer) Delimiters() Delimiters {
	return t.delims
}

// Tokenize scans the input and returns its tokens in source order.
//
// A release character makes the next character literal: it is copied into
// the segment buffer and an Escape token is recorded. Segment splitting runs
// afterwards on the buffered text, so an escaped separator is still split on.
// Whitespace outside escapes is dropped. Without WithStrict the error is
// always nil.
func (t *Tokenizer) Tokenize() ([]Token, error) {
	t.tokens = nil
	t.delims = DefaultDelimiters()

	data := t.raw
	if hasUNAPrefix(data) {
		if len(data) < unaLen {
			if t.opts.strict {
				return nil, ErrTruncatedUNA
			}
		} else {
			data = t.readUNA(data)
		}
	}

	d := t.delims
	var buf []rune
	for i := 0; i < len(data); i++ {
		r := data[i]
		switch {
		case r == d.Release && i+1 < len(data):
			buf = append(buf, data[i+1])
			t.emit(Escape, string(d.Release))
			i++
		case r == d.Terminator:
			if len(buf) > 0 {
				t.splitSegment(strings.TrimSpace(string(buf)))
				buf = buf[:0]
			}
			t.emit(SegmentTerminator, string(r))
		case unicode.IsSpace(r):
		default:
			buf = append(buf, r)
		}
	}
	// Tolerate a missing final terminator.
	if len(buf) > 0 {
		t.splitSegment(strings.TrimSpace(string(buf)))
	}

	return t.tokens, nil
}

func hasUNAPrefix(data []rune) bool {
	return len(data) >= 3 && string(data[:3]) == TagUNA
}

// readUNA applies the header's delimiters, emits its tokens and returns the
// remaining input.
func (t *Tokenizer) readUNA(data []rune) []rune {
	t.delims = Delimiters{
		Component:  data[3],
		Element:    data[4],
		Decimal:    data[5],
		Release:    data[6],
		Repetition: data[7],
		Terminator: data[8],
	}

	t.emit(SegmentTag, TagUNA)
	t.emit(ComponentSeparator, string(data[3]))
	t.emit(ElementSeparator, string(data[4]))
	t.emit(ElementData, string(data[5]))
	t.emit(Escape, string(data[6]))
	t.emit(ElementData, string(data[7]))
	t.emit(SegmentTerminator, string(data[8]))

	return []rune(strings.TrimLeftFunc(string(data[unaLen:]), unicode.IsSpace))
}

// splitSegment emits the tokens of one segment's buffered text.
func (t *Tokenizer) splitSegment(text string) {
	elemSep := string(t.delims.Element)
	compSep := string(t.delims.Component)

	parts := strings.Split(text, elemSep)
	t.emit(SegmentTag, strings.TrimSpace(parts[0]))
	for _, element := range parts[1:] {
		t.emit(ElementSeparator, elemSep)
		components := strings.Split(element, compSep)
		for j, comp := range components {
			t.emit(ComponentData, comp)
			if j < len(components)-1 {
				t.emit(ComponentSeparator, compSep)
			}
		}
	}
}

func (t *Tokenizer) emit(kind TokenKind, value string) {
	t.tokens = append(t.tokens, Token{Kind: kind, Value: value})
}
