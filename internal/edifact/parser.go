package edifact

import "errors"

// Parser builds a File from a token sequence. It reads the tokens once,
// front to back, and never backtracks.
type Parser struct {
	tokens []Token
	pos    int
	opts   options
	errs   []error
}

// NewParser returns a parser over tokens. The slice is not modified.
func NewParser(tokens []Token, opts ...Option) *Parser {
	return &Parser{tokens: tokens, opts: buildOptions(opts)}
}

// Parse builds the document tree. Tokens that do not fit the expected
// structure are skipped one at a time, so the result may be incomplete.
// In strict mode every skip is reported in the returned error, which joins
// one *SyntaxError per skipped token; the tree is returned regardless.
func (p *Parser) Parse() (*File, error) {
	p.pos = 0
	p.errs = nil

	file := &File{}
	if hasUNAHeader(p.tokens) {
		file.UNA = p.parseSegment()
	}

	for !p.done() {
		if ic := p.parseInterchange(); ic != nil {
			file.Interchanges = append(file.Interchanges, *ic)
		}
	}

	return file, errors.Join(p.errs...)
}

// hasUNAHeader reports whether tokens open with a delimiter header as the
// tokenizer emits it: the UNA tag directly followed by the component
// separator. A data segment whose tag reads UNA, such as "UN A+1'" once
// whitespace is dropped, is followed by an element separator or a
// terminator instead.
func hasUNAHeader(tokens []Token) bool {
	return len(tokens) > 1 &&
		tokens[0].Kind == SegmentTag && tokens[0].Value == TagUNA &&
		tokens[1].Kind == ComponentSeparator
}

func (p *Parser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser) cur() Token {
	return p.tokens[p.pos]
}

// skip steps over the current token. Escape tokens are emitted ahead of the
// segment they belong to and are never reported.
func (p *Parser) skip(want string) {
	if p.opts.strict && p.cur().Kind != Escape {
		p.errs = append(p.errs, &SyntaxError{Pos: p.pos, Token: p.cur(), Want: want})
	}
	p.pos++
}

func (p *Parser) parseInterchange() *Interchange {
	if p.cur().Value != TagUNB {
		p.skip(TagUNB)
		return nil
	}

	ic := &Interchange{Header: p.parseSegment()}
	for !p.done() && p.cur().Value != TagUNZ {
		if msg := p.parseMessage(); msg != nil {
			ic.Messages = append(ic.Messages, *msg)
		}
	}
	ic.Trailer = p.expectSegment(TagUNZ)
	return ic
}

func (p *Parser) parseMessage() *Message {
	if p.cur().Value != TagUNH {
		p.skip(TagUNH)
		return nil
	}

	msg := &Message{Header: p.parseSegment()}
	for !p.done() && p.cur().Value != TagUNT {
		if seg := p.parseSegment(); seg != nil {
			msg.Segments = append(msg.Segments, *seg)
		}
	}
	msg.Trailer = p.expectSegment(TagUNT)
	return msg
}

// expectSegment reads a trailer segment, noting in strict mode when the
// input ran out first.
func (p *Parser) expectSegment(tag string) *Segment {
	if p.done() {
		if p.opts.strict {
			p.errs = append(p.errs, &SyntaxError{Pos: p.pos, Want: tag, EOF: true})
		}
		return nil
	}
	return p.parseSegment()
}

func (p *Parser) parseSegment() *Segment {
	if p.done() {
		return nil
	}
	if p.cur().Kind != SegmentTag {
		p.skip(SegmentTag.String())
		return nil
	}

	seg := &Segment{Tag: p.cur().Value}
	p.pos++

	var comps []Component
	for !p.done() {
		tok := p.cur()
		p.pos++
		switch tok.Kind {
		case ElementSeparator:
			if len(comps) > 0 {
				seg.Elements = append(seg.Elements, Element{Components: comps})
				comps = nil
			}
		case ComponentData:
			comps = append(comps, Component{Value: tok.Value})
		case SegmentTerminator:
			if len(comps) > 0 {
				seg.Elements = append(seg.Elements, Element{Components: comps})
			}
			return seg
		}
	}
	// Input ended without a terminator; keep what was read.
	if len(comps) > 0 {
		seg.Elements = append(seg.Elements, Element{Components: comps})
	}
	return seg
}
