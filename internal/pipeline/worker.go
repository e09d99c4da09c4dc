package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/edigest/internal/edifact"
	"github.com/dgallion1/edigest/internal/pathstore"
	"github.com/dgallion1/edigest/internal/records"
	"github.com/dgallion1/edigest/internal/source"
	"github.com/dgallion1/edigest/internal/stats"
)

// WorkerOptions configures how a Worker parses and stores.
type WorkerOptions struct {
	Strict             bool
	RecordBatch        int
	MaxConcurrentStore int
	Source             source.Options
}

// Worker processes a single interchange file job.
type Worker struct {
	pathstore *pathstore.Client
	stats     *stats.Window
	log       *slog.Logger
	opts      WorkerOptions
}

func NewWorker(ps *pathstore.Client, window *stats.Window, log *slog.Logger, opts WorkerOptions) *Worker {
	if opts.MaxConcurrentStore <= 0 {
		opts.MaxConcurrentStore = 1
	}
	return &Worker{
		pathstore: ps,
		stats:     window,
		log:       log,
		opts:      opts,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "partner_id", job.PartnerID)

	// Phase 1: Extract interchange text from the uploaded file.
	job.SetStatus(StatusExtracting, "extracting")
	ex, err := source.ForFile(job.Filename, w.opts.Source)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	text, err := ex.Extract(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("extract failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	// Phase 2: Tokenize and parse.
	job.SetStatus(StatusParsing, "parsing")
	file, err := ParseText(text, w.stats, w.opts.Strict)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	counts := edifact.Count(file)
	job.SetCounts(counts)
	log.Info("parsed interchange file", "interchanges", counts.Interchanges, "messages", counts.Messages, "segments", counts.Segments)

	if counts.Interchanges == 0 {
		job.AddError("no interchanges found")
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	job.SetContentHash(ContentHashHex([]byte(text)))

	// Phase 2.5: Dedup check
	if !job.Force {
		exists, existingDocID, err := w.checkDuplicate(ctx, job)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if exists {
			log.Info("duplicate interchange file, skipping", "existing_doc_id", existingDocID)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}

	// Phase 3: Store envelopes, messages and segment records.
	job.SetStatus(StatusStoring, "storing")
	docPrefix := DocumentPrefix(job.PartnerID, job.DocID)
	writes := planWrites(file, docPrefix, job.DocID, w.opts.RecordBatch)
	job.SetTotalWrites(len(writes))

	type writeResult struct {
		w   write
		err error
	}
	results := make(chan writeResult, len(writes))
	sem := make(chan struct{}, w.opts.MaxConcurrentStore)

	for _, wr := range writes {
		sem <- struct{}{}
		go func(wr write) {
			defer func() { <-sem }()
			err := withRetry(ctx, log, wr.path, func() error {
				return w.pathstore.PutNode(ctx, wr.path, wr.req)
			})
			if err == nil && wr.link != nil {
				linkErr := withRetry(ctx, log, wr.path+" link", func() error {
					return w.pathstore.PutLink(ctx, *wr.link)
				})
				if linkErr != nil {
					log.Warn("link write failed", "from", wr.link.From, "to", wr.link.To, "error", linkErr)
				}
			}
			results <- writeResult{w: wr, err: err}
		}(wr)
	}

	hadErrors := false
	storedAny := false
	for range writes {
		r := <-results
		job.IncrWritesDone()
		if r.err != nil {
			log.Error("store failed", "path", r.w.path, "error", r.err)
			job.AddError(fmt.Sprintf("store %s: %s", r.w.path, r.err))
			hadErrors = true
			continue
		}
		storedAny = true
		job.AddStored(r.w.records, r.w.messages)
	}

	snap := job.Snapshot()
	log.Info("storage complete", "records", snap.Progress.RecordsStored, "messages", snap.Progress.MessagesStored, "writes", len(writes))

	// Write document metadata.
	metaErr := w.pathstore.PutNode(ctx, docPrefix+"/meta", pathstore.NodeRequest{
		Value: map[string]any{
			"kind":            "document",
			"filename":        job.Filename,
			"content_hash":    snap.ContentHash,
			"interchanges":    counts.Interchanges,
			"messages":        counts.Messages,
			"segments":        counts.Segments,
			"records_stored":  snap.Progress.RecordsStored,
			"messages_stored": snap.Progress.MessagesStored,
			"created_at":      job.CreatedAt.Format(time.RFC3339),
		},
		Source: "edigest:" + job.DocID,
	})
	if metaErr != nil {
		log.Error("meta write failed", "error", metaErr)
		job.AddError(fmt.Sprintf("meta: %s", metaErr))
	}

	// Write hash index for dedup.
	hashErr := w.pathstore.PutNode(ctx, HashIndexPath(job.PartnerID, snap.ContentHash, job.DocID), pathstore.NodeRequest{
		Value: map[string]any{
			"kind":       "hash_index",
			"filename":   job.Filename,
			"created_at": job.CreatedAt.Format(time.RFC3339),
		},
		Source: "edigest:" + job.DocID,
	})
	if hashErr != nil {
		log.Error("hash index write failed", "error", hashErr)
	}

	if hadErrors && storedAny {
		job.SetStatus(StatusPartial, "done")
	} else if hadErrors {
		job.SetStatus(StatusFailed, "storing")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

// Analysis is the full result of tokenizing and parsing one text.
type Analysis struct {
	File       *edifact.File
	Tokens     []edifact.Token
	Delimiters edifact.Delimiters
}

// ParseText tokenizes and parses text, recording the latency in window.
func ParseText(text string, window *stats.Window, strict bool) (*edifact.File, error) {
	a, err := Analyze(text, window, strict)
	if err != nil {
		return nil, err
	}
	return a.File, nil
}

// Analyze is ParseText that also keeps the token stream and the delimiters
// in effect.
func Analyze(text string, window *stats.Window, strict bool) (*Analysis, error) {
	var opts []edifact.Option
	if strict {
		opts = append(opts, edifact.WithStrict())
	}

	start := time.Now()
	tz := edifact.NewTokenizer(text, opts...)
	tokens, err := tz.Tokenize()
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	file, err := edifact.NewParser(tokens, opts...).Parse()
	if window != nil {
		window.Record(time.Since(start).Milliseconds(), len(tokens))
	}
	if err != nil {
		return nil, fmt.Errorf("parse: %w", summarize(err))
	}
	return &Analysis{File: file, Tokens: tokens, Delimiters: tz.Delimiters()}, nil
}

// summarize caps a joined strict-mode error at a readable length.
func summarize(err error) error {
	const maxShown = 5
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return err
	}
	errs := joined.Unwrap()
	if len(errs) <= maxShown {
		return err
	}
	shown := append(errs[:maxShown:maxShown], fmt.Errorf("and %d more", len(errs)-maxShown))
	return errors.Join(shown...)
}

// write is one planned pathstore node.
type write struct {
	path     string
	req      pathstore.NodeRequest
	link     *pathstore.LinkRequest
	records  int
	messages int
}

func planWrites(file *edifact.File, docPrefix, docID string, batch int) []write {
	src := "edigest:" + docID
	var writes []write

	for i := range file.Interchanges {
		ic := &file.Interchanges[i]
		icPath := fmt.Sprintf("%s/interchanges/%d", docPrefix, i)
		writes = append(writes, write{
			path: icPath,
			req: pathstore.NodeRequest{
				Value: map[string]any{
					"kind":          "interchange",
					"reference":     ic.Reference(),
					"sender":        ic.Sender(),
					"recipient":     ic.Recipient(),
					"header":        segmentValues(ic.Header),
					"trailer":       segmentValues(ic.Trailer),
					"message_count": len(ic.Messages),
				},
				Source: src,
			},
		})

		for j := range ic.Messages {
			msg := &ic.Messages[j]
			msgPath := icPath + "/messages/" + strconv.Itoa(j)
			writes = append(writes, write{
				path: msgPath,
				req: pathstore.NodeRequest{
					Value: map[string]any{
						"kind":          "message",
						"type":          msg.Type(),
						"reference":     msg.Reference(),
						"header":        segmentValues(msg.Header),
						"trailer":       segmentValues(msg.Trailer),
						"segment_count": len(msg.Segments),
					},
					Source: src,
				},
				link: &pathstore.LinkRequest{
					From:    msgPath,
					To:      icPath,
					Weight:  1,
					Summary: strings.TrimSpace(fmt.Sprintf("%s message in interchange %s", msg.Type(), ic.Reference())),
				},
				messages: 1,
			})
		}
	}

	for k, b := range records.Batch(records.Flatten(file), records.Config{BatchSize: batch}) {
		writes = append(writes, write{
			path: fmt.Sprintf("%s/records/%d", docPrefix, k),
			req: pathstore.NodeRequest{
				Value:  map[string]any{"kind": "records", "records": b},
				Source: src,
			},
			records: len(b),
		})
	}

	return writes
}

// segmentValues renders a segment as its tag plus element values.
func segmentValues(seg *edifact.Segment) map[string]any {
	if seg == nil {
		return nil
	}
	elements := make([][]string, len(seg.Elements))
	for i := range seg.Elements {
		elements[i] = seg.Elements[i].Values()
	}
	return map[string]any{"tag": seg.Tag, "elements": elements}
}

// DocumentsPrefix is the pathstore prefix holding a partner's documents.
func DocumentsPrefix(partnerID string) string {
	return fmt.Sprintf("edi/partners/%s/documents", partnerID)
}

func DocumentPrefix(partnerID, docID string) string {
	return DocumentsPrefix(partnerID) + "/" + docID
}

// HashIndexPath is the dedup index entry for a document's content hash.
func HashIndexPath(partnerID, hash, docID string) string {
	return fmt.Sprintf("%s/by_hash/%s/%s", DocumentsPrefix(partnerID), hash, docID)
}

// checkDuplicate checks if this content hash already exists for the partner.
func (w *Worker) checkDuplicate(ctx context.Context, job *Job) (bool, string, error) {
	snap := job.Snapshot()
	hashPrefix := fmt.Sprintf("%s/by_hash/%s", DocumentsPrefix(job.PartnerID), snap.ContentHash)
	children, err := w.pathstore.ListChildren(ctx, hashPrefix, 1)
	if err != nil {
		return false, "", err
	}
	if len(children) > 0 {
		// Extract doc_id from the key path.
		parts := strings.Split(children[0].Key, ".")
		docID := parts[len(parts)-1]
		return true, docID, nil
	}
	return false, "", nil
}
