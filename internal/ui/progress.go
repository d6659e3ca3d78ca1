package ui

import (
	"sync"
	"time"
)

// ProgressTracker holds the current stage and its progress.
// It is safe for concurrent use.
type ProgressTracker struct {
	mu         sync.Mutex
	stage      Stage
	current    int
	total      int
	startTime  time.Time
	stageStart time.Time

	// lastETA is the previous estimate, for smoothing.
	lastETA time.Duration

	now func() time.Time
}

// ProgressStats is a snapshot of a ProgressTracker.
type ProgressStats struct {
	Stage    Stage
	Current  int
	Total    int
	Progress float64
	ETA      time.Duration
	// Rate is items per second in the current stage.
	Rate float64
}

// NewProgressTracker creates a tracker in StageCopy.
func NewProgressTracker() *ProgressTracker {
	return newProgressTracker(time.Now)
}

func newProgressTracker(now func() time.Time) *ProgressTracker {
	start := now()
	return &ProgressTracker{
		stage:      StageCopy,
		startTime:  start,
		stageStart: start,
		now:        now,
	}
}

// Update records event. Moving to a different stage resets the stage clock
// and the ETA smoothing.
func (p *ProgressTracker) Update(event ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.Stage != p.stage {
		p.stage = event.Stage
		p.stageStart = p.now()
		p.lastETA = 0
	}
	p.current = event.Current
	p.total = event.Total
}

// Elapsed returns time since tracker creation.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.now().Sub(p.startTime)
}

// Stats returns a snapshot. It updates the ETA smoothing state.
func (p *ProgressTracker) Stats() ProgressStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := ProgressStats{
		Stage:   p.stage,
		Current: p.current,
		Total:   p.total,
	}
	if p.total > 0 {
		stats.Progress = min(float64(p.current)/float64(p.total), 1.0)
	}
	if elapsed := p.now().Sub(p.stageStart); elapsed > 0 {
		stats.Rate = float64(p.current) / elapsed.Seconds()
	}
	stats.ETA = p.calculateETA(stats.Progress)

	return stats
}

// etaSmoothingFactor weights a new ETA against the previous one.
const etaSmoothingFactor = 0.3

// calculateETA must be called with the lock held.
func (p *ProgressTracker) calculateETA(progress float64) time.Duration {
	if progress <= 0 || progress >= 1.0 {
		return 0
	}

	elapsed := p.now().Sub(p.stageStart)
	remaining := time.Duration(float64(elapsed)/progress) - elapsed
	if remaining < 0 {
		return 0
	}

	if p.lastETA == 0 {
		p.lastETA = remaining
		return remaining
	}

	smoothed := time.Duration(
		etaSmoothingFactor*float64(remaining) +
			(1-etaSmoothingFactor)*float64(p.lastETA),
	)
	p.lastETA = smoothed
	return smoothed
}
