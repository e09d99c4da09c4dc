package records

import (
	"fmt"

	"github.com/dgallion1/edigest/internal/edifact"
)

// Record is one content segment with its envelope context, ready for storage.
type Record struct {
	Index      int        `json:"index"`
	Breadcrumb []string   `json:"breadcrumb"` // e.g. ["interchange REF1", "message ORDERS 1"]
	Tag        string     `json:"tag"`
	Elements   [][]string `json:"elements"`
}

// Config controls batching.
type Config struct {
	BatchSize int // Records per batch.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{BatchSize: 50}
}

// Flatten walks a parsed file and returns one Record per content segment,
// in document order.
func Flatten(file *edifact.File) []Record {
	f := &flattener{}
	edifact.Walk(f, file)
	return f.records
}

// flattener tracks the current envelope as the pre-order walk enters each
// interchange and message.
type flattener struct {
	edifact.BaseVisitor
	interchange string
	message     string
	records     []Record
}

func (f *flattener) VisitInterchange(ic *edifact.Interchange) {
	f.interchange = fmt.Sprintf("interchange %s", ic.Reference())
	f.message = ""
}

func (f *flattener) VisitMessage(m *edifact.Message) {
	f.message = fmt.Sprintf("message %s %s", m.Type(), m.Reference())
}

func (f *flattener) VisitSegment(s *edifact.Segment) {
	elements := make([][]string, len(s.Elements))
	for i := range s.Elements {
		elements[i] = s.Elements[i].Values()
	}
	f.records = append(f.records, Record{
		Index:      len(f.records),
		Breadcrumb: f.breadcrumb(),
		Tag:        s.Tag,
		Elements:   elements,
	})
}

func (f *flattener) breadcrumb() []string {
	var bc []string
	if f.interchange != "" {
		bc = append(bc, f.interchange)
	}
	if f.message != "" {
		bc = append(bc, f.message)
	}
	return bc
}

// Batch splits records into consecutive groups of at most cfg.BatchSize.
func Batch(recs []Record, cfg Config) [][]Record {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}

	var batches [][]Record
	for i := 0; i < len(recs); i += cfg.BatchSize {
		end := min(i+cfg.BatchSize, len(recs))
		batches = append(batches, recs[i:end])
	}
	return batches
}
