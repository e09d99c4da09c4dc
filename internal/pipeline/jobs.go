package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/edigest/internal/edifact"
)

// JobStatus represents the state of an ingestion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusParsing    JobStatus = "parsing"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Job tracks the state of a single interchange file ingestion.
type Job struct {
	mu sync.Mutex

	ID        string `json:"job_id"`
	DocID     string `json:"doc_id"`
	PartnerID string `json:"partner_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	// Force skips the duplicate check.
	Force bool `json:"force"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	Counts         edifact.Counts `json:"counts"`
	TotalWrites    int            `json:"total_writes"`
	WritesDone     int            `json:"writes_done"`
	RecordsStored  int            `json:"records_stored"`
	MessagesStored int            `json:"messages_stored"`
	Errors         []string       `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetCounts records the node population of the parsed file.
func (j *Job) SetCounts(c edifact.Counts) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Counts = c
	j.UpdatedAt = time.Now()
}

// SetTotalWrites records how many store writes the job needs.
func (j *Job) SetTotalWrites(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalWrites = n
	j.UpdatedAt = time.Now()
}

// IncrWritesDone atomically increments finished writes.
func (j *Job) IncrWritesDone() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.WritesDone++
	j.UpdatedAt = time.Now()
}

// AddStored records stored record and message counts.
func (j *Job) AddStored(records, messages int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.RecordsStored += records
	j.Progress.MessagesStored += messages
	j.UpdatedAt = time.Now()
}

// SetContentHash records the hash used for duplicate detection.
func (j *Job) SetContentHash(hash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = hash
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	DocID       string    `json:"doc_id"`
	PartnerID   string    `json:"partner_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	progress := j.Progress
	progress.Errors = errs
	return JobSnapshot{
		ID:          j.ID,
		DocID:       j.DocID,
		PartnerID:   j.PartnerID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		ContentHash: j.ContentHash,
		Progress:    progress,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
