package batch

import "sync"

// ProgressTracker counts finished jobs.
type ProgressTracker struct {
	total     int
	completed int
	failed    int
	mu        sync.RWMutex
}

// NewProgressTracker creates a tracker for total jobs.
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{
		total: total,
	}
}

func (t *ProgressTracker) IncrementCompleted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
}

func (t *ProgressTracker) IncrementFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failed++
}

// GetProgress returns the completed, failed and total job counts.
func (t *ProgressTracker) GetProgress() (completed, failed, total int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.completed, t.failed, t.total
}

// GetPercentage returns finished jobs as a percentage of total.
func (t *ProgressTracker) GetPercentage() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.total == 0 {
		return 0
	}
	return float64(t.completed+t.failed) / float64(t.total) * 100
}

// Done reports whether every job has finished.
func (t *ProgressTracker) Done() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.completed+t.failed >= t.total
}
