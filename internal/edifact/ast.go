package edifact

// Component is the smallest data value in a segment.
type Component struct {
	Value string `json:"value" yaml:"value"`
}

// Element is one data element of a segment. Simple elements hold a single
// component; composites hold several.
type Element struct {
	Components []Component `json:"components" yaml:"components"`
}

// Values returns the component values in order.
func (e *Element) Values() []string {
	out := make([]string, len(e.Components))
	for i, c := range e.Components {
		out[i] = c.Value
	}
	return out
}

// Segment is one tagged record.
type Segment struct {
	Tag      string    `json:"tag" yaml:"tag"`
	Elements []Element `json:"elements" yaml:"elements"`
}

// Value returns component c of element e, or "" if either is out of range.
func (s *Segment) Value(e, c int) string {
	if s == nil || e < 0 || e >= len(s.Elements) {
		return ""
	}
	comps := s.Elements[e].Components
	if c < 0 || c >= len(comps) {
		return ""
	}
	return comps[c].Value
}

// Message is a business document enclosed by UNH and UNT. Segments holds
// the content between them. Header or Trailer is nil only when the input
// ended before the segment was read.
type Message struct {
	Header   *Segment  `json:"header" yaml:"header"`
	Trailer  *Segment  `json:"trailer" yaml:"trailer"`
	Segments []Segment `json:"segments" yaml:"segments"`
}

// Reference returns the message reference number from UNH.
func (m *Message) Reference() string {
	return m.Header.Value(0, 0)
}

// Type returns the message type identifier from UNH, e.g. "ORDERS".
func (m *Message) Type() string {
	return m.Header.Value(1, 0)
}

// Interchange is a transmission envelope enclosed by UNB and UNZ.
type Interchange struct {
	Header   *Segment  `json:"header" yaml:"header"`
	Trailer  *Segment  `json:"trailer" yaml:"trailer"`
	Messages []Message `json:"messages" yaml:"messages"`
}

// Reference returns the interchange control reference from UNB.
func (ic *Interchange) Reference() string {
	return ic.Header.Value(4, 0)
}

// Sender returns the sender identification from UNB.
func (ic *Interchange) Sender() string {
	return ic.Header.Value(1, 0)
}

// Recipient returns the recipient identification from UNB.
func (ic *Interchange) Recipient() string {
	return ic.Header.Value(2, 0)
}

// File is the root of a parsed input. UNA is set only when the input
// started with a UNA header.
type File struct {
	UNA          *Segment      `json:"una,omitempty" yaml:"una,omitempty"`
	Interchanges []Interchange `json:"interchanges" yaml:"interchanges"`
}
