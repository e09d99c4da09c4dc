package edifact

import "fmt"

// TokenKind classifies a token produced by the Tokenizer.
type TokenKind int

const (
	SegmentTag TokenKind = iota
	ElementData
	ComponentData
	SegmentTerminator
	ElementSeparator
	ComponentSeparator
	Escape
)

var kindNames = [...]string{
	SegmentTag:         "SEGMENT_TAG",
	ElementData:        "ELEMENT_DATA",
	ComponentData:      "COMPONENT_DATA",
	SegmentTerminator:  "SEGMENT_TERMINATOR",
	ElementSeparator:   "ELEMENT_SEPARATOR",
	ComponentSeparator: "COMPONENT_SEPARATOR",
	Escape:             "ESCAPE",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k TokenKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Token is a single lexical unit with its literal text.
type Token struct {
	Kind  TokenKind `json:"kind" yaml:"kind"`
	Value string    `json:"value" yaml:"value"`
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Kind, t.Value)
}

// Service segment tags that carry structural meaning.
const (
	TagUNA = "UNA"
	TagUNB = "UNB"
	TagUNZ = "UNZ"
	TagUNH = "UNH"
	TagUNT = "UNT"
)
