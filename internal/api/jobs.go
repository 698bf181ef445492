package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	rferrors "github.com/FocuswithJustin/RefFinder/core/errors"
	"github.com/FocuswithJustin/RefFinder/core/scripture"
	"github.com/FocuswithJustin/RefFinder/internal/logging"
	"github.com/FocuswithJustin/RefFinder/internal/validation"
)

// JobStatus represents the current state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

func (s JobStatus) done() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// JobRequest is the body of POST /jobs.
type JobRequest struct {
	Texts          []string `json:"texts"`
	IncludeInvalid bool     `json:"include_invalid,omitempty"`
}

// TextResult is the outcome of scanning one text of a job.
type TextResult struct {
	Index      int                   `json:"index"`
	TextHash   string                `json:"text_hash"`
	References []scripture.Reference `json:"references"`
	Error      string                `json:"error,omitempty"`
}

// Job is an asynchronous batch scan.
type Job struct {
	ID          string       `json:"id"`
	Status      JobStatus    `json:"status"`
	Progress    int          `json:"progress"` // 0-100
	Total       int          `json:"total"`
	Completed   int          `json:"completed"`
	Results     []TextResult `json:"results,omitempty"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
	CompletedAt string       `json:"completed_at,omitempty"`

	texts          []string
	includeInvalid bool
	finishedAt     time.Time
	ctx            context.Context
	cancel         context.CancelFunc
}

// JobStoreConfig bounds the job store.
type JobStoreConfig struct {
	// Workers is the number of jobs scanned at once.
	Workers int
	// Retention is how long finished jobs stay visible. Zero keeps them.
	Retention time.Duration
	// MaxTextBytes bounds each text; zero selects validation.MaxTextSize.
	MaxTextBytes int
}

// JobStore manages batch scan jobs in memory.
type JobStore struct {
	mu        sync.RWMutex
	jobs      map[string]*Job
	base      context.Context
	sem       chan struct{}
	retention time.Duration
	maxText   int
	now       func() time.Time
}

// NewJobStore creates a job store. Jobs are canceled when base is.
func NewJobStore(base context.Context, cfg JobStoreConfig) *JobStore {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &JobStore{
		jobs:      make(map[string]*Job),
		base:      base,
		sem:       make(chan struct{}, workers),
		retention: cfg.Retention,
		maxText:   cfg.MaxTextBytes,
		now:       time.Now,
	}
}

func (s *JobStore) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// Create registers a pending job.
func (s *JobStore) Create(req JobRequest) Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()

	ctx, cancel := context.WithCancel(s.base)
	now := s.stamp()
	job := &Job{
		ID:             uuid.NewString(),
		Status:         JobStatusPending,
		Total:          len(req.Texts),
		CreatedAt:      now,
		UpdatedAt:      now,
		texts:          slices.Clone(req.Texts),
		includeInvalid: req.IncludeInvalid,
		ctx:            ctx,
		cancel:         cancel,
	}
	s.jobs[job.ID] = job
	logging.JobEvent(job.ID, string(job.Status), "texts", job.Total)
	return job.snapshot()
}

// snapshot copies the exported state so callers can read it unlocked.
func (j *Job) snapshot() Job {
	return Job{
		ID:          j.ID,
		Status:      j.Status,
		Progress:    j.Progress,
		Total:       j.Total,
		Completed:   j.Completed,
		Results:     slices.Clone(j.Results),
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		CompletedAt: j.CompletedAt,
	}
}

// Get returns a copy of the job.
func (s *JobStore) Get(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, rferrors.NewNotFound("job", id)
	}
	return job.snapshot(), nil
}

// List returns copies of all jobs, oldest first, without their results.
func (s *JobStore) List() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()

	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		j := job.snapshot()
		j.Results = nil
		jobs = append(jobs, j)
	}
	slices.SortFunc(jobs, func(a, b Job) int {
		if a.CreatedAt != b.CreatedAt {
			if a.CreatedAt < b.CreatedAt {
				return -1
			}
			return 1
		}
		if a.ID < b.ID {
			return -1
		}
		return 1
	})
	return jobs
}

// Len returns the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Cancel stops a pending or running job.
func (s *JobStore) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return rferrors.NewNotFound("job", id)
	}
	if job.Status.done() {
		return &rferrors.ValidationError{Field: "job", Value: id, Message: "job is already " + string(job.Status)}
	}
	job.cancel()
	s.finishLocked(job, JobStatusCancelled, "job cancelled")
	return nil
}

// update applies f to a job that has not finished yet.
func (s *JobStore) update(id string, f func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok && !job.Status.done() {
		f(job)
		job.UpdatedAt = s.stamp()
	}
}

func (s *JobStore) finishLocked(job *Job, status JobStatus, msg string) {
	job.Status = status
	job.Error = msg
	job.UpdatedAt = s.stamp()
	job.CompletedAt = job.UpdatedAt
	job.finishedAt = s.now()
	logging.JobEvent(job.ID, string(status), "completed", job.Completed, "total", job.Total)
}

// pruneLocked drops finished jobs older than the retention period.
func (s *JobStore) pruneLocked() {
	if s.retention <= 0 {
		return
	}
	cutoff := s.now().Add(-s.retention)
	for id, job := range s.jobs {
		if job.Status.done() && job.finishedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}

// abandon marks a job whose context ended before it finished. Jobs canceled
// through Cancel are already final.
func (s *JobStore) abandon(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !job.Status.done() {
		s.finishLocked(job, JobStatusCancelled, "server shutting down")
	}
}

// Progress is reported after every text of a job.
type Progress func(job Job)

// Run scans the job's texts once a worker slot is free. It returns when the
// job finishes or is canceled.
func (s *JobStore) Run(id string, scan func(ctx context.Context, text string, includeInvalid bool) (string, []scripture.Reference, error), progress Progress) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-job.ctx.Done():
		s.abandon(job)
		return
	}

	s.update(id, func(j *Job) { j.Status = JobStatusRunning })
	logging.JobEvent(id, string(JobStatusRunning))

	for i, text := range job.texts {
		if job.ctx.Err() != nil {
			s.abandon(job)
			return
		}
		res := TextResult{Index: i, References: []scripture.Reference{}}
		if err := validation.ValidateText(text, s.maxText); err != nil {
			res.Error = err.Error()
		} else {
			hash, refs, err := scan(job.ctx, text, job.includeInvalid)
			res.TextHash = hash
			switch {
			case errors.Is(err, context.Canceled):
				s.abandon(job)
				return
			case err != nil:
				res.Error = err.Error()
			default:
				res.References = refs
			}
		}

		var snap Job
		s.update(id, func(j *Job) {
			j.Results = append(j.Results, res)
			j.Completed = i + 1
			j.Progress = j.Completed * 100 / j.Total
			snap = j.snapshot()
		})
		if progress != nil && snap.ID != "" {
			progress(snap)
		}
	}

	s.mu.Lock()
	if !job.Status.done() {
		s.finishLocked(job, JobStatusCompleted, "")
	}
	snap := job.snapshot()
	s.mu.Unlock()
	job.cancel()
	if progress != nil {
		progress(snap)
	}
}

// handleCreateJob handles POST /jobs.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req JobRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateBatch(len(req.Texts), s.cfg.Jobs.MaxTexts); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	for _, text := range req.Texts {
		if len(text) > s.maxTextBytes() {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT", validation.ErrTextTooLarge.Error())
			return
		}
	}
	req.IncludeInvalid = req.IncludeInvalid || s.cfg.Finder.IncludeInvalid

	job := s.jobs.Create(req)
	go s.jobs.Run(job.ID, s.scan, s.broadcastJob)
	respond(w, http.StatusCreated, job)
}

// handleListJobs handles GET /jobs.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobs.List()
	respondList(w, jobs, len(jobs))
}

// handleGetJob handles GET /jobs/{id}.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Get(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	respond(w, http.StatusOK, job)
}

// handleCancelJob handles DELETE /jobs/{id}.
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.jobs.Cancel(id); err != nil {
		if rferrors.Is(err, rferrors.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		respondError(w, http.StatusConflict, "CANCEL_FAILED", err.Error())
		return
	}
	job, _ := s.jobs.Get(id)
	s.broadcastJob(job)
	respond(w, http.StatusOK, job)
}
