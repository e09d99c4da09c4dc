package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/edigest/internal/config"
	"github.com/dgallion1/edigest/internal/pathstore"
	"github.com/dgallion1/edigest/internal/source"
	"github.com/dgallion1/edigest/internal/stats"
)

// Orchestrator manages the interchange ingestion pipeline.
type Orchestrator struct {
	jobs       *JobStore
	queue      chan *Job
	ps         *pathstore.Client
	stats      *stats.Window
	log        *slog.Logger
	cfg        config.Config
	workerOpts WorkerOptions

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, ps *pathstore.Client, window *stats.Window, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL.Duration),
		queue: make(chan *Job, cfg.MaxQueueSize),
		ps:    ps,
		stats: window,
		log:   log,
		cfg:   cfg,
		workerOpts: WorkerOptions{
			Strict:             cfg.StrictParsing,
			RecordBatch:        cfg.RecordBatch,
			MaxConcurrentStore: cfg.MaxConcurrentStore,
			Source:             source.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		},
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.ps, o.stats, o.log, o.workerOpts)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// PathstoreClient returns the pathstore client for direct use by API handlers.
func (o *Orchestrator) PathstoreClient() *pathstore.Client {
	return o.ps
}

// Stats returns the parse latency window shared with the API.
func (o *Orchestrator) Stats() *stats.Window {
	return o.stats
}

// Strict reports whether parsing runs in strict mode.
func (o *Orchestrator) Strict() bool {
	return o.cfg.StrictParsing
}
