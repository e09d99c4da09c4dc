package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/edigest/internal/edifact"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h := ContentHashHex([]byte{}); h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusExtracting, "extracting"},
		{StatusParsing, "parsing"},
		{StatusStoring, "storing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		snap := job.Snapshot()
		if snap.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, snap.Status)
		}
		if snap.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, snap.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("interchange 0 failed")
	job.AddError("record batch 2 failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "interchange 0 failed" {
		t.Errorf("expected first error %q, got %q", "interchange 0 failed", snap.Progress.Errors[0])
	}

	// The snapshot must not alias the job's error slice.
	snap.Progress.Errors[0] = "changed"
	if job.Snapshot().Progress.Errors[0] != "interchange 0 failed" {
		t.Error("expected snapshot errors to be a copy")
	}
}

func TestJob_Progress(t *testing.T) {
	job := &Job{ID: "progress-test", UpdatedAt: time.Now()}
	job.SetCounts(edifact.Counts{Files: 1, Interchanges: 2})
	job.SetTotalWrites(5)
	job.IncrWritesDone()
	job.IncrWritesDone()
	job.AddStored(10, 1)
	job.AddStored(3, 2)

	p := job.Snapshot().Progress
	if p.Counts.Interchanges != 2 {
		t.Errorf("expected 2 interchanges, got %d", p.Counts.Interchanges)
	}
	if p.TotalWrites != 5 || p.WritesDone != 2 {
		t.Errorf("expected 2/5 writes, got %d/%d", p.WritesDone, p.TotalWrites)
	}
	if p.RecordsStored != 13 || p.MessagesStored != 3 {
		t.Errorf("expected 13 records and 3 messages, got %d and %d", p.RecordsStored, p.MessagesStored)
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("UNB+x'")
	job.SetFileData(data)
	if got := job.FileData(); string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	store.Put(&Job{ID: "store-1", UpdatedAt: time.Now()})

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)
	store.Put(&Job{ID: "old", UpdatedAt: time.Now()})

	time.Sleep(100 * time.Millisecond)
	store.Put(&Job{ID: "new", UpdatedAt: time.Now()})

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := 0; attempt < 8; attempt++ {
		d := Backoff(attempt)
		if d < backoffBase {
			t.Errorf("attempt %d: backoff %s below base", attempt, d)
		}
		if d > 45*time.Second {
			t.Errorf("attempt %d: backoff %s above cap plus jitter", attempt, d)
		}
	}
}
