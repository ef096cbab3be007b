package reliability

import (
	"testing"
	"time"

	"lanscape/internal/config"
	"lanscape/internal/core/scanmanager"
	"lanscape/internal/core/scanmodel"
)

func newTestQueue() *Queue {
	manager := scanmanager.New(nil, nil, nil, scanmodel.NewJobStats())
	return New(manager)
}

func TestQueue_EnqueueClampsRepeat(t *testing.T) {
	q := newTestQueue()
	defer q.Stop()

	job := q.Enqueue(config.ScanConfig{}, "too-low", 0)
	if job.Repeat != minRepeat {
		t.Errorf("Repeat = %d, want clamped to %d", job.Repeat, minRepeat)
	}

	job2 := q.Enqueue(config.ScanConfig{}, "too-high", 1000)
	if job2.Repeat != maxRepeat {
		t.Errorf("Repeat = %d, want clamped to %d", job2.Repeat, maxRepeat)
	}
}

func TestQueue_EnqueueClonesConfig(t *testing.T) {
	q := newTestQueue()
	defer q.Stop()

	cfg := config.DefaultScanConfig()
	job := q.Enqueue(cfg, "clone-check", 1)

	cfg.LookupType[0] = config.LookupPoke
	if job.Config.LookupType[0] == config.LookupPoke {
		t.Error("Enqueue should clone cfg, not alias the caller's slice backing array")
	}
}

func TestQueue_CancelOnlyRemovesQueuedJobs(t *testing.T) {
	q := newTestQueue()
	defer q.Stop()

	// An empty Subnet fails scanner.New immediately, so this job reaches
	// a terminal (errored) state quickly without touching the network.
	job := q.Enqueue(config.ScanConfig{Subnet: ""}, "fails-fast", 1)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		j, _ := q.Get(job.ID)
		if j.Status == StatusError || j.Status == StatusCompleted {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if ok := q.Cancel(job.ID); ok {
		t.Error("Cancel should return false for a job that already started running")
	}
}

func TestQueue_CancelRemovesStillQueuedJob(t *testing.T) {
	q := newTestQueue()
	defer q.Stop()

	// Queue a slow-to-drain job first so the second enqueue stays queued
	// long enough for Cancel to observe it before the worker picks it up.
	q.Enqueue(config.ScanConfig{Subnet: "192.168.100.1"}, "occupies-worker", 1)
	second := q.Enqueue(config.ScanConfig{Subnet: ""}, "cancel-me", 1)

	if ok := q.Cancel(second.ID); !ok {
		t.Fatal("Cancel should succeed for a job still in the pending queue")
	}

	j, _ := q.Get(second.ID)
	if j.Status != StatusCancelled {
		t.Errorf("Status = %v, want %v", j.Status, StatusCancelled)
	}
	if pos := q.QueuePosition(second.ID); pos != 0 {
		t.Errorf("QueuePosition after cancel = %d, want 0", pos)
	}
}

func TestQueue_StatusCounts(t *testing.T) {
	q := newTestQueue()
	defer q.Stop()

	job := q.Enqueue(config.ScanConfig{Subnet: ""}, "count-me", 1)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		counts := q.StatusCounts()
		if counts[StatusError]+counts[StatusCompleted] > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	j, _ := q.Get(job.ID)
	counts := q.StatusCounts()
	if counts[j.Status] == 0 {
		t.Errorf("StatusCounts()[%v] = 0, want at least 1", j.Status)
	}
}

func TestQueue_StopDrainsNoFurtherJobs(t *testing.T) {
	q := newTestQueue()
	q.Stop()
	q.Stop() // idempotent

	job := q.Enqueue(config.ScanConfig{Subnet: ""}, "after-stop", 1)
	time.Sleep(50 * time.Millisecond)

	j, _ := q.Get(job.ID)
	if j.Status != StatusQueued {
		t.Errorf("job enqueued after Stop should remain queued forever, got %v", j.Status)
	}
}
