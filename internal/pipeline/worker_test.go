package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/edigest/internal/pathstore"
	"github.com/dgallion1/edigest/internal/stats"
)

const twoMessages = "UNA:+.? '" +
	"UNB+UNOA:1+SENDER+RECEIVER+200101:1200+REF1'" +
	"UNH+1+ORDERS:D:96A:UN'BGM+220+PO1'DTM+137:20200101:102'UNT+4+1'" +
	"UNH+2+ORDERS:D:96A:UN'BGM+220+PO2'UNT+3+2'" +
	"UNZ+2+REF1'"

// fakeStore is an in-memory pathstore HTTP server.
type fakeStore struct {
	mu       sync.Mutex
	nodes    map[string]pathstore.NodeRequest
	fields   map[string][]string // key -> top-level body fields
	links    []pathstore.LinkRequest
	existing map[string][]string // prefix -> child keys returned by ListChildren
	failPut  func(path string) int
	srv      *httptest.Server
}

func newFakeStore(t *testing.T) *fakeStore {
	t.Helper()
	fs := &fakeStore{
		nodes:    make(map[string]pathstore.NodeRequest),
		fields:   make(map[string][]string),
		existing: make(map[string][]string),
	}
	fs.srv = httptest.NewServer(http.HandlerFunc(fs.handle))
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeStore) handle(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if r.URL.Path == "/links" {
		var link pathstore.LinkRequest
		json.NewDecoder(r.Body).Decode(&link)
		fs.links = append(fs.links, link)
		w.WriteHeader(http.StatusCreated)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/kv/")
	switch r.Method {
	case http.MethodPut:
		if fs.failPut != nil {
			if code := fs.failPut(key); code != 0 {
				w.WriteHeader(code)
				io.WriteString(w, "rejected")
				return
			}
		}
		body, _ := io.ReadAll(r.Body)
		var req pathstore.NodeRequest
		json.Unmarshal(body, &req)
		fs.nodes[key] = req
		var raw map[string]json.RawMessage
		json.Unmarshal(body, &raw)
		for f := range raw {
			fs.fields[key] = append(fs.fields[key], f)
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		prefix := strings.TrimSuffix(key, "/*")
		var nodes []map[string]any
		for _, k := range fs.existing[prefix] {
			nodes = append(nodes, map[string]any{"key_path": k, "value": map[string]any{}})
		}
		json.NewEncoder(w).Encode(map[string]any{"nodes": nodes})
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (fs *fakeStore) paths() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var out []string
	for k := range fs.nodes {
		out = append(out, k)
	}
	return out
}

func newTestWorker(fs *fakeStore, opts WorkerOptions) (*Worker, *stats.Window) {
	window := stats.NewWindow(time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorker(pathstore.NewClient(fs.srv.URL, "k"), window, log, opts), window
}

func newJob(filename, data string) *Job {
	now := time.Now()
	job := &Job{
		ID:        "job-1",
		DocID:     "doc-1",
		PartnerID: "acme",
		Status:    StatusQueued,
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData([]byte(data))
	return job
}

func TestWorker_Completes(t *testing.T) {
	fs := newFakeStore(t)
	w, window := newTestWorker(fs, WorkerOptions{RecordBatch: 50, MaxConcurrentStore: 2})
	job := newJob("orders.edi", twoMessages)

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	require.Equal(t, StatusCompleted, snap.Status, "errors: %v", snap.Progress.Errors)
	assert.Equal(t, 1, snap.Progress.Counts.Interchanges)
	assert.Equal(t, 2, snap.Progress.Counts.Messages)
	assert.Equal(t, 3, snap.Progress.RecordsStored)
	assert.Equal(t, 2, snap.Progress.MessagesStored)
	assert.Equal(t, 4, snap.Progress.TotalWrites)
	assert.Equal(t, 4, snap.Progress.WritesDone)
	assert.NotEmpty(t, snap.ContentHash)

	prefix := "edi/partners/acme/documents/doc-1"
	paths := fs.paths()
	assert.Contains(t, paths, prefix+"/interchanges/0")
	assert.Contains(t, paths, prefix+"/interchanges/0/messages/0")
	assert.Contains(t, paths, prefix+"/interchanges/0/messages/1")
	assert.Contains(t, paths, prefix+"/records/0")
	assert.Contains(t, paths, prefix+"/meta")
	assert.Contains(t, paths, "edi/partners/acme/documents/by_hash/"+snap.ContentHash+"/doc-1")

	fs.mu.Lock()
	assert.Len(t, fs.links, 2)
	icValue := fs.nodes[prefix+"/interchanges/0"].Value.(map[string]any)
	kinds := map[string]any{}
	for path, node := range fs.nodes {
		kinds[path] = node.Value.(map[string]any)["kind"]
		assert.ElementsMatch(t, []string{"value", "source"}, fs.fields[path], path)
	}
	fs.mu.Unlock()
	assert.Equal(t, "REF1", icValue["reference"])
	assert.Equal(t, "interchange", kinds[prefix+"/interchanges/0"])
	assert.Equal(t, "message", kinds[prefix+"/interchanges/0/messages/1"])
	assert.Equal(t, "records", kinds[prefix+"/records/0"])
	assert.Equal(t, "document", kinds[prefix+"/meta"])
	assert.Equal(t, "hash_index", kinds["edi/partners/acme/documents/by_hash/"+snap.ContentHash+"/doc-1"])

	assert.Equal(t, 1, window.Snapshot().Count)
}

func TestWorker_DuplicateSkipped(t *testing.T) {
	fs := newFakeStore(t)
	hash := ContentHashHex([]byte(twoMessages))
	fs.existing["edi/partners/acme/documents/by_hash/"+hash] = []string{"edi.partners.acme.documents.by_hash." + hash + ".doc-0"}

	w, _ := newTestWorker(fs, WorkerOptions{})
	job := newJob("orders.edi", twoMessages)
	w.Process(context.Background(), job)

	assert.Equal(t, StatusDupSkipped, job.Snapshot().Status)
	assert.Empty(t, fs.paths())
}

func TestWorker_ForceBypassesDedup(t *testing.T) {
	fs := newFakeStore(t)
	hash := ContentHashHex([]byte(twoMessages))
	fs.existing["edi/partners/acme/documents/by_hash/"+hash] = []string{"x.doc-0"}

	w, _ := newTestWorker(fs, WorkerOptions{})
	job := newJob("orders.edi", twoMessages)
	job.Force = true
	w.Process(context.Background(), job)

	assert.Equal(t, StatusCompleted, job.Snapshot().Status)
}

func TestWorker_UnsupportedFormat(t *testing.T) {
	fs := newFakeStore(t)
	w, _ := newTestWorker(fs, WorkerOptions{})
	job := newJob("orders.csv", twoMessages)
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "extracting", snap.Phase)
}

func TestWorker_NoInterchanges(t *testing.T) {
	fs := newFakeStore(t)
	w, _ := newTestWorker(fs, WorkerOptions{})
	job := newJob("stray.edi", "BGM+220+PO1'")
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "parsing", snap.Phase)
	assert.Contains(t, snap.Progress.Errors, "no interchanges found")
}

func TestWorker_StrictRejectsStrayTokens(t *testing.T) {
	fs := newFakeStore(t)
	w, _ := newTestWorker(fs, WorkerOptions{Strict: true})
	job := newJob("orders.edi", "JUNK+1'"+twoMessages[9:])
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	require.NotEmpty(t, snap.Progress.Errors)
	assert.Contains(t, snap.Progress.Errors[0], "expected UNB")
}

func TestWorker_PartialOnStoreError(t *testing.T) {
	fs := newFakeStore(t)
	fs.failPut = func(path string) int {
		if strings.HasSuffix(path, "/messages/1") {
			return http.StatusBadRequest
		}
		return 0
	}
	w, _ := newTestWorker(fs, WorkerOptions{MaxConcurrentStore: 4})
	job := newJob("orders.edi", twoMessages)
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusPartial, snap.Status)
	assert.Equal(t, 1, snap.Progress.MessagesStored)
	assert.Len(t, snap.Progress.Errors, 1)
}

func TestWorker_RetriesServerErrors(t *testing.T) {
	defer func(d time.Duration) { backoffBase = d }(backoffBase)
	backoffBase = time.Millisecond

	fs := newFakeStore(t)
	failures := 0
	fs.failPut = func(path string) int {
		if strings.HasSuffix(path, "/records/0") && failures < 2 {
			failures++
			return http.StatusServiceUnavailable
		}
		return 0
	}
	w, _ := newTestWorker(fs, WorkerOptions{})
	job := newJob("orders.edi", twoMessages)
	w.Process(context.Background(), job)

	assert.Equal(t, StatusCompleted, job.Snapshot().Status)
	fs.mu.Lock()
	assert.Equal(t, 2, failures)
	fs.mu.Unlock()
}

func TestWorker_MarkdownSource(t *testing.T) {
	fs := newFakeStore(t)
	w, _ := newTestWorker(fs, WorkerOptions{})
	md := "# Partner sample\n\n```edifact\n" + twoMessages + "\n```\n"
	job := newJob("sample.md", md)
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 2, snap.Progress.Counts.Messages)
}

func TestParseText_RecordsStats(t *testing.T) {
	window := stats.NewWindow(time.Hour)
	file, err := ParseText(twoMessages, window, false)
	require.NoError(t, err)
	assert.Len(t, file.Interchanges, 1)

	snap := window.Snapshot()
	assert.Equal(t, 1, snap.Count)
	assert.Greater(t, snap.TotalTokens, 0)
}

func TestParseText_SummarizesStrictErrors(t *testing.T) {
	junk := strings.Repeat("JUNK+1'", 10)
	_, err := ParseText(junk+"UNB+a'UNZ+0'", nil, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more")
}
