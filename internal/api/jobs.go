package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/youruser/cardinserts/internal/pipeline"
	"github.com/youruser/cardinserts/internal/progress"
)

const (
	statusQueued    = "queued"
	statusRunning   = "running"
	statusDone      = "done"
	statusFailed    = "failed"
	statusCancelled = "cancelled"
)

// Job is one asynchronous pipeline run.
type Job struct {
	ID           string
	URL          string
	Set          string
	InsertsDir   string
	DocumentPath string
	Created      time.Time
	Events       *progress.Recorder

	mu       sync.Mutex
	status   string
	err      string
	report   *pipeline.Report
	finished time.Time
	cancel   context.CancelFunc
}

type jobState struct {
	Status   string
	Err      string
	Report   *pipeline.Report
	Finished time.Time
}

func (j *Job) state() jobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return jobState{Status: j.status, Err: j.err, Report: j.report, Finished: j.finished}
}

func (j *Job) setRunning() {
	j.mu.Lock()
	j.status = statusRunning
	j.mu.Unlock()
}

func (j *Job) finish(rep *pipeline.Report, err error, cancelled bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.finished = time.Now()
	j.report = rep
	switch {
	case cancelled:
		j.status = statusCancelled
	case err != nil:
		j.status = statusFailed
		j.err = err.Error()
	default:
		j.status = statusDone
	}
}

// Cancel stops a queued or running job.
func (j *Job) Cancel() {
	j.mu.Lock()
	c := j.cancel
	j.mu.Unlock()
	if c != nil {
		c()
	}
}

// Jobs is the in-memory job registry.
type Jobs struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewJobs() *Jobs {
	return &Jobs{jobs: map[string]*Job{}}
}

func (js *Jobs) New(url, set string, cancel context.CancelFunc) *Job {
	j := &Job{
		ID:      uuid.New().String(),
		URL:     url,
		Set:     set,
		Created: time.Now(),
		Events:  &progress.Recorder{},
		status:  statusQueued,
		cancel:  cancel,
	}
	js.mu.Lock()
	js.jobs[j.ID] = j
	js.mu.Unlock()
	return j
}

func (js *Jobs) Get(id string) (*Job, bool) {
	js.mu.RLock()
	defer js.mu.RUnlock()
	j, ok := js.jobs[id]
	return j, ok
}
