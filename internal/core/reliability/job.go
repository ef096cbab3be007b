// Package reliability implements ReliabilityQueue (spec §4.7, §6): a
// single-worker FIFO that re-runs a ScanConfig some number of times,
// decoupling "schedule a repeated scan" from whatever is driving the
// HTTP API, the same way the teacher's ingestor.ResultQueue decouples
// submission from processing rate.
package reliability

import (
	"time"

	"lanscape/internal/config"
)

// Status is a Job's lifecycle state. Transitions are one-way:
// queued -> running -> (completed | error) , or queued -> cancelled.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// Job is one scheduled repetition of a scan (spec §4.7's "Job" entity).
// Config is cloned at Enqueue time so later caller-side mutation of the
// original ScanConfig can never race with a queued or running job.
type Job struct {
	ID     string            `json:"id"`
	Label  string            `json:"label"`
	Config config.ScanConfig `json:"config"`
	Repeat int               `json:"count"`

	Status  Status `json:"status"`
	ScanUID string `json:"scan_uid"` // populated once the job's Scanner has been created
	Error   string `json:"error,omitempty"`
	Result  *Summary `json:"result,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Summary is the compact result snapshot recorded on a finished Job —
// deliberately smaller than a full scanmodel.Export so /api/reliability
// responses stay light even with a long job history.
type Summary struct {
	DevicesTotal   int     `json:"devices_total"`
	DevicesAlive   int     `json:"devices_alive"`
	OpenPorts      int     `json:"open_ports"`
	RuntimeSeconds float64 `json:"runtime_seconds"`
}
