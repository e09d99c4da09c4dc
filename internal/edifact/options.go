package edifact

import (
	"errors"
	"fmt"
)

// ErrTruncatedUNA is returned in strict mode when the input starts with UNA
// but is too short to hold the six delimiter characters.
var ErrTruncatedUNA = errors.New("edifact: truncated UNA header")

// SyntaxError describes a token the parser had to skip.
type SyntaxError struct {
	Pos   int    // index into the token sequence
	Token Token  // zero value when EOF is set
	Want  string // what the parser expected at Pos
	EOF   bool
}

func (e *SyntaxError) Error() string {
	if e.EOF {
		return fmt.Sprintf("edifact: expected %s at token %d, got end of input", e.Want, e.Pos)
	}
	if e.Want == "" {
		return fmt.Sprintf("edifact: unexpected %s at token %d", e.Token, e.Pos)
	}
	return fmt.Sprintf("edifact: expected %s at token %d, got %s", e.Want, e.Pos, e.Token)
}

type options struct {
	strict bool
}

// Option configures a Tokenizer or Parser.
type Option func(*options)

// WithStrict reports skipped input as errors instead of ignoring it.
func WithStrict() Option {
	return func(o *options) { o.strict = true }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
