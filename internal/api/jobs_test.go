package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	rferrors "github.com/FocuswithJustin/RefFinder/core/errors"
	"github.com/FocuswithJustin/RefFinder/core/scripture"
	"github.com/FocuswithJustin/RefFinder/internal/config"
)

func fakeScan(ctx context.Context, text string, _ bool) (string, []scripture.Reference, error) {
	if text == "boom" {
		return "h", nil, errors.New("database is locked")
	}
	return "h-" + text, []scripture.Reference{{ID: text}}, nil
}

func TestJobStoreRun(t *testing.T) {
	store := NewJobStore(context.Background(), JobStoreConfig{Workers: 2})
	job := store.Create(JobRequest{Texts: []string{"a", "boom", ""}})
	if job.Status != JobStatusPending || job.Total != 3 {
		t.Fatalf("created job = %+v", job)
	}

	var updates []Job
	store.Run(job.ID, fakeScan, func(j Job) { updates = append(updates, j) })

	got, err := store.Get(job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != JobStatusCompleted || got.Progress != 100 || got.Completed != 3 || got.CompletedAt == "" {
		t.Errorf("finished job = %+v", got)
	}
	if len(got.Results) != 3 {
		t.Fatalf("results = %+v", got.Results)
	}
	if got.Results[0].TextHash != "h-a" || len(got.Results[0].References) != 1 {
		t.Errorf("results[0] = %+v", got.Results[0])
	}
	if got.Results[1].Error != "database is locked" {
		t.Errorf("results[1] = %+v", got.Results[1])
	}
	if got.Results[2].Error == "" || got.Results[2].References == nil {
		t.Errorf("empty text should fail validation with an empty list: %+v", got.Results[2])
	}

	// One update per text plus the final one.
	if len(updates) != 4 {
		t.Fatalf("got %d progress updates, want 4", len(updates))
	}
	if updates[0].Progress != 33 || updates[1].Progress != 66 || updates[3].Status != JobStatusCompleted {
		t.Errorf("progress updates = %+v", updates)
	}
}

func TestJobStoreCancel(t *testing.T) {
	store := NewJobStore(context.Background(), JobStoreConfig{Workers: 1})
	job := store.Create(JobRequest{Texts: []string{"a"}})

	if err := store.Cancel(job.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	// A canceled job never starts.
	store.Run(job.ID, fakeScan, nil)
	got, _ := store.Get(job.ID)
	if got.Status != JobStatusCancelled || len(got.Results) != 0 {
		t.Errorf("canceled job = %+v", got)
	}

	err := store.Cancel(job.ID)
	if !rferrors.Is(err, rferrors.ErrInvalidInput) {
		t.Errorf("second Cancel() error = %v, want invalid input", err)
	}
	if err := store.Cancel("missing"); !rferrors.Is(err, rferrors.ErrNotFound) {
		t.Errorf("Cancel(missing) error = %v, want not found", err)
	}
	if _, err := store.Get("missing"); !rferrors.Is(err, rferrors.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want not found", err)
	}
}

func TestJobStoreCancelWhileRunning(t *testing.T) {
	store := NewJobStore(context.Background(), JobStoreConfig{Workers: 1})
	job := store.Create(JobRequest{Texts: []string{"a", "b", "c"}})

	started := make(chan struct{})
	release := make(chan struct{})
	scan := func(ctx context.Context, text string, inv bool) (string, []scripture.Reference, error) {
		if text == "b" {
			close(started)
			<-release
			return "", nil, ctx.Err()
		}
		return fakeScan(ctx, text, inv)
	}

	done := make(chan struct{})
	go func() {
		store.Run(job.ID, scan, nil)
		close(done)
	}()
	<-started
	if err := store.Cancel(job.ID); err != nil {
		t.Fatal(err)
	}
	close(release)
	<-done

	got, _ := store.Get(job.ID)
	if got.Status != JobStatusCancelled || got.Completed != 1 {
		t.Errorf("job = %+v, want cancelled after 1 text", got)
	}
}

func TestJobStoreShutdown(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	store := NewJobStore(base, JobStoreConfig{Workers: 1})
	job := store.Create(JobRequest{Texts: []string{"a"}})
	cancel()
	store.Run(job.ID, fakeScan, nil)

	got, _ := store.Get(job.ID)
	if got.Status != JobStatusCancelled || got.Error != "server shutting down" {
		t.Errorf("job = %+v", got)
	}
}

func TestJobStoreWorkerLimit(t *testing.T) {
	store := NewJobStore(context.Background(), JobStoreConfig{Workers: 2})
	var (
		mu      sync.Mutex
		running int
		peak    int
	)
	scan := func(ctx context.Context, text string, inv bool) (string, []scripture.Reference, error) {
		mu.Lock()
		running++
		peak = max(peak, running)
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		running--
		mu.Unlock()
		return fakeScan(ctx, text, inv)
	}

	var wg sync.WaitGroup
	for range 6 {
		job := store.Create(JobRequest{Texts: []string{"x"}})
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Run(job.ID, scan, nil)
		}()
	}
	wg.Wait()
	if peak > 2 {
		t.Errorf("%d jobs ran at once, want at most 2", peak)
	}
}

func TestJobStoreRetention(t *testing.T) {
	store := NewJobStore(context.Background(), JobStoreConfig{Retention: time.Hour})
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return now }

	old := store.Create(JobRequest{Texts: []string{"a"}})
	store.Run(old.ID, fakeScan, nil)
	pending := store.Create(JobRequest{Texts: []string{"b"}})

	now = now.Add(2 * time.Hour)
	jobs := store.List()
	if len(jobs) != 1 || jobs[0].ID != pending.ID {
		t.Errorf("List() = %+v, want only the pending job", jobs)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func waitForJob(t *testing.T, s *Server, id string) Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := s.jobs.Get(id)
		if err != nil {
			t.Fatal(err)
		}
		if job.Status.done() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return Job{}
}

func TestJobsAPI(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()

	body, _ := json.Marshal(JobRequest{Texts: []string{"John 3:16 and Rev 22:21", "nothing here", "Jude 2:1"}})
	var created Job
	w, _ := do(t, h, http.MethodPost, "/jobs", string(body), &created)
	if w.Code != http.StatusCreated || created.ID == "" {
		t.Fatalf("POST /jobs = %d %+v", w.Code, created)
	}

	waitForJob(t, s, created.ID)

	var job Job
	w, _ = do(t, h, http.MethodGet, "/jobs/"+created.ID, "", &job)
	if w.Code != http.StatusOK || job.Status != JobStatusCompleted {
		t.Fatalf("GET /jobs/{id} = %d %+v", w.Code, job)
	}
	counts := []int{len(job.Results[0].References), len(job.Results[1].References), len(job.Results[2].References)}
	if counts[0] != 2 || counts[1] != 0 || counts[2] != 0 {
		t.Errorf("reference counts = %v, want [2 0 0]", counts)
	}

	var jobs []Job
	_, resp := do(t, h, http.MethodGet, "/jobs", "", &jobs)
	if len(jobs) != 1 || resp.Meta.Total != 1 || jobs[0].Results != nil {
		t.Errorf("GET /jobs = %+v", jobs)
	}

	w, resp = do(t, h, http.MethodDelete, "/jobs/"+created.ID, "", nil)
	if w.Code != http.StatusConflict || resp.Error.Code != "CANCEL_FAILED" {
		t.Errorf("DELETE finished job = %d %+v", w.Code, resp.Error)
	}
	if w, _ := do(t, h, http.MethodGet, "/jobs/nope", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("GET unknown job = %d, want 404", w.Code)
	}
	if w, _ := do(t, h, http.MethodDelete, "/jobs/nope", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("DELETE unknown job = %d, want 404", w.Code)
	}
}

func TestJobsAPIValidation(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) {
		c.Jobs.MaxTexts = 2
		c.Finder.MaxTextBytes = 10
	}).Handler()
	tests := []struct {
		name string
		body string
	}{
		{"empty batch", `{"texts":[]}`},
		{"too many texts", `{"texts":["a","b","c"]}`},
		{"text too large", `{"texts":["` + strings.Repeat("a", 11) + `"]}`},
		{"bad json", `{"texts":"a"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w, _ := do(t, h, http.MethodPost, "/jobs", tt.body, nil); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}
