package scanmodel

import (
	"sync"
	"time"
)

// JobStats is the process-wide (spec §3) statistics singleton: running
// counts, cumulative finished counts, and a running-mean timing per job
// name. It is guarded by a single mutex; StartJob/FinishJob/Clear
// are the only write paths, matching spec §5's shared-resource rule.
type JobStats struct {
	mu      sync.Mutex
	running  map[string]int
	finished map[string]int
	timing   map[string]float64 // running-mean seconds
	samples  map[string]int
}

var (
	defaultJobStats     *JobStats
	defaultJobStatsOnce sync.Once
)

// Default returns the process-wide JobStats instance.
func Default() *JobStats {
	defaultJobStatsOnce.Do(func() {
		defaultJobStats = NewJobStats()
	})
	return defaultJobStats
}

func NewJobStats() *JobStats {
	return &JobStats{
		running:  make(map[string]int),
		finished: make(map[string]int),
		timing:   make(map[string]float64),
		samples:  make(map[string]int),
	}
}

// StartJob increments the in-flight counter for name.
func (j *JobStats) StartJob(name string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.running[name]++
}

// FinishJob decrements the in-flight counter (never below zero, per spec
// §3's invariant), increments the cumulative count, and folds elapsed
// into the running mean.
func (j *JobStats) FinishJob(name string, elapsed time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running[name] > 0 {
		j.running[name]--
	}
	j.finished[name]++

	n := j.samples[name]
	mean := j.timing[name]
	n++
	mean += (elapsed.Seconds() - mean) / float64(n)
	j.timing[name] = mean
	j.samples[name] = n
}

// Running reports the current in-flight count for name.
func (j *JobStats) Running(name string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running[name]
}

// Finished reports the cumulative completed count for name — used by
// progress estimation's "work already done" term.
func (j *JobStats) Finished(name string) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.finished[name]
}

// RunningTotal returns the non-zero in-flight count of each job name —
// used by Scanner.Terminate's drain poll.
func (j *JobStats) RunningTotal() map[string]int {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make(map[string]int, len(j.running))
	for k, v := range j.running {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}

// AverageTiming returns the running-mean duration for name, or def if
// fewer than minSamples observations have been recorded (spec §4.6's
// "initial skew guard").
func (j *JobStats) AverageTiming(name string, minSamples int, def time.Duration) time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.samples[name] < minSamples {
		return def
	}
	return time.Duration(j.timing[name] * float64(time.Second))
}

// Copy returns a point-in-time snapshot of all three maps.
func (j *JobStats) Copy() (running, finished map[string]int, timing map[string]float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	running = make(map[string]int, len(j.running))
	for k, v := range j.running {
		running[k] = v
	}
	finished = make(map[string]int, len(j.finished))
	for k, v := range j.finished {
		finished[k] = v
	}
	timing = make(map[string]float64, len(j.timing))
	for k, v := range j.timing {
		timing[k] = v
	}
	return
}

// Clear resets all stats — exposed as a test reset hook per spec §9's
// "explicit reset hook" note.
func (j *JobStats) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.running = make(map[string]int)
	j.finished = make(map[string]int)
	j.timing = make(map[string]float64)
	j.samples = make(map[string]int)
}

// Measured re-expresses the teacher's @job_tracker decorator as an
// explicit wrapper: it reports start/finish timing to stats around fn.
func Measured(stats *JobStats, name string, fn func() error) error {
	stats.StartJob(name)
	start := time.Now()
	defer func() {
		stats.FinishJob(name, time.Since(start))
	}()
	return fn()
}
