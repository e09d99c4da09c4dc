package edifact

// Visitor receives one call per node during a walk.
type Visitor interface {
	VisitFile(*File)
	VisitInterchange(*Interchange)
	VisitMessage(*Message)
	VisitSegment(*Segment)
	VisitElement(*Element)
	VisitComponent(*Component)
}

// Node is implemented by every tree type.
type Node interface {
	Accept(Visitor)
}

// Walk traverses n in pre-order: each node is visited before its children,
// and children in document order. Envelope headers, trailers and the UNA
// segment are attributes rather than children and are not visited.
func Walk(v Visitor, n Node) {
	n.Accept(v)
}

// BaseVisitor implements Visitor with no-ops. Embed it and override the
// methods of interest.
type BaseVisitor struct{}

func (BaseVisitor) VisitFile(*File)               {}
func (BaseVisitor) VisitInterchange(*Interchange) {}
func (BaseVisitor) VisitMessage(*Message)         {}
func (BaseVisitor) VisitSegment(*Segment)         {}
func (BaseVisitor) VisitElement(*Element)         {}
func (BaseVisitor) VisitComponent(*Component)     {}

func (f *File) Accept(v Visitor) {
	v.VisitFile(f)
	for i := range f.Interchanges {
		f.Interchanges[i].Accept(v)
	}
}

func (ic *Interchange) Accept(v Visitor) {
	v.VisitInterchange(ic)
	for i := range ic.Messages {
		ic.Messages[i].Accept(v)
	}
}

func (m *Message) Accept(v Visitor) {
	v.VisitMessage(m)
	for i := range m.Segments {
		m.Segments[i].Accept(v)
	}
}

func (s *Segment) Accept(v Visitor) {
	v.VisitSegment(s)
	for i := range s.Elements {
		s.Elements[i].Accept(v)
	}
}

func (e *Element) Accept(v Visitor) {
	v.VisitElement(e)
	for i := range e.Components {
		e.Components[i].Accept(v)
	}
}

func (c *Component) Accept(v Visitor) {
	v.VisitComponent(c)
}

// Counts tallies visited nodes per kind.
type Counts struct {
	Files        int `json:"files" yaml:"files"`
	Interchanges int `json:"interchanges" yaml:"interchanges"`
	Messages     int `json:"messages" yaml:"messages"`
	Segments     int `json:"segments" yaml:"segments"`
	Elements     int `json:"elements" yaml:"elements"`
	Components   int `json:"components" yaml:"components"`
}

// Counter is a Visitor that counts nodes.
type Counter struct {
	BaseVisitor
	Counts Counts
}

func (c *Counter) VisitFile(*File)               { c.Counts.Files++ }
func (c *Counter) VisitInterchange(*Interchange) { c.Counts.Interchanges++ }
func (c *Counter) VisitMessage(*Message)         { c.Counts.Messages++ }
func (c *Counter) VisitSegment(*Segment)         { c.Counts.Segments++ }
func (c *Counter) VisitElement(*Element)         { c.Counts.Elements++ }
func (c *Counter) VisitComponent(*Component)     { c.Counts.Components++ }

// Count walks n with a fresh Counter.
func Count(n Node) Counts {
	var c Counter
	Walk(&c, n)
	return c.Counts
}

// SegmentCollector gathers content segments, optionally restricted to a set
// of tags.
type SegmentCollector struct {
	BaseVisitor
	tags     map[string]bool
	Segments []*Segment
}

// NewSegmentCollector collects segments with any of tags, or all segments
// when tags is empty.
func NewSegmentCollector(tags ...string) *SegmentCollector {
	sc := &SegmentCollector{}
	if len(tags) > 0 {
		sc.tags = make(map[string]bool, len(tags))
		for _, t := range tags {
			sc.tags[t] = true
		}
	}
	return sc
}

func (sc *SegmentCollector) VisitSegment(s *Segment) {
	if sc.tags == nil || sc.tags[s.Tag] {
		sc.Segments = append(sc.Segments, s)
	}
}
