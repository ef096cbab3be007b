package reliability

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"lanscape/internal/config"
	"lanscape/internal/core/scanmanager"
)

const (
	minRepeat = 1
	maxRepeat = 50
)

// Queue is the single-worker FIFO ReliabilityQueue. One worker goroutine
// drains jobs in submission order; Enqueue never blocks the caller.
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pending  []string
	jobs     map[string]*Job
	manager  *scanmanager.Manager
	stopped  bool
}

func New(manager *scanmanager.Manager) *Queue {
	q := &Queue{
		jobs:    make(map[string]*Job),
		manager: manager,
	}
	q.cond = sync.NewCond(&q.mu)
	go q.worker()
	return q
}

// Enqueue schedules repeat runs of cfg (clamped to [1,50] per spec
// §4.7) under label, returning the new Job immediately in "queued"
// state.
func (q *Queue) Enqueue(cfg config.ScanConfig, label string, repeat int) *Job {
	if repeat < minRepeat {
		repeat = minRepeat
	}
	if repeat > maxRepeat {
		repeat = maxRepeat
	}

	job := &Job{
		ID:         uuid.NewString(),
		Label:      label,
		Config:     cfg.Clone(),
		Repeat:     repeat,
		Status:     StatusQueued,
		EnqueuedAt: time.Now(),
	}

	q.mu.Lock()
	q.jobs[job.ID] = job
	q.pending = append(q.pending, job.ID)
	q.mu.Unlock()
	q.cond.Signal()

	return job
}

// Get returns a job by ID.
func (q *Queue) Get(id string) (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	return j, ok
}

// List returns every job this process has ever seen, queued or
// finished — matching ScanManager's "retained, not expired" policy.
func (q *Queue) List() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Job, 0, len(q.jobs))
	for _, j := range q.jobs {
		out = append(out, j)
	}
	return out
}

// Cancel removes a still-queued job. A job already running or finished
// cannot be cancelled (spec §4.7: "cancellation only removes queued
// work, it never interrupts a running repetition").
func (q *Queue) Cancel(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.jobs[id]
	if !ok || job.Status != StatusQueued {
		return false
	}

	for i, pid := range q.pending {
		if pid == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			break
		}
	}
	job.Status = StatusCancelled
	job.FinishedAt = time.Now()
	return true
}

// StatusCounts tallies jobs by status, for /api/reliability/metrics.
func (q *Queue) StatusCounts() map[Status]int {
	q.mu.Lock()
	defer q.mu.Unlock()
	counts := make(map[Status]int)
	for _, j := range q.jobs {
		counts[j.Status]++
	}
	return counts
}

// QueuePosition reports a still-queued job's 1-based position, or 0 if
// it is not currently queued.
func (q *Queue) QueuePosition(id string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, pid := range q.pending {
		if pid == id {
			return i + 1
		}
	}
	return 0
}

// Stop signals the worker to exit after draining no further jobs; it
// does not cancel an in-flight repetition.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()
	q.cond.Signal()
}

func (q *Queue) worker() {
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.stopped {
			q.cond.Wait()
		}
		if q.stopped {
			q.mu.Unlock()
			return
		}
		id := q.pending[0]
		q.pending = q.pending[1:]
		job := q.jobs[id]
		job.Status = StatusRunning
		job.StartedAt = time.Now()
		q.mu.Unlock()

		q.runJob(job)
	}
}

// runJob executes every repetition of a job that the worker has already
// marked running. Get/List/StatusCounts read a Job's fields under q.mu,
// so every mutation here takes the same lock (spec §4.8: "pops under the
// same lock but only after transitioning its status to running").
func (q *Queue) runJob(job *Job) {
	ctx := context.Background()
	var lastErr error
	var lastSummary *Summary
	var scanUID string

	for i := 0; i < job.Repeat; i++ {
		s, err := q.manager.NewScan(job.Config)
		if err != nil {
			lastErr = err
			break
		}
		scanUID = s.Results().UID

		q.mu.Lock()
		job.ScanUID = scanUID
		q.mu.Unlock()

		s.Start(ctx)

		exp := s.Results().ExportSnapshot()
		openPorts := 0
		for _, d := range exp.Devices {
			openPorts += len(d.Ports)
		}
		lastSummary = &Summary{
			DevicesTotal:   exp.DevicesTotal,
			DevicesAlive:   len(exp.Devices),
			OpenPorts:      openPorts,
			RuntimeSeconds: s.Results().Runtime().Seconds(),
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	job.FinishedAt = time.Now()
	job.Result = lastSummary
	if lastErr != nil {
		job.Status = StatusError
		job.Error = lastErr.Error()
		return
	}
	job.Status = StatusCompleted
}
