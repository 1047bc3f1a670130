package renewal

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the period between renewals.
const DefaultInterval = 5 * time.Minute

// Task is invoked on every tick. Its context is cancelled when the schedule that
// produced the tick is stopped or replaced.
type Task func(ctx context.Context)

// Scheduler owns at most one recurring timer. Start replaces any running
// schedule, so a Start/Start sequence never leaves two timers behind.
type Scheduler struct {
	interval time.Duration
	task     Task

	lock   sync.Mutex
	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(interval time.Duration, task Task) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		interval: interval,
		task:     task,
	}
}

// Interval returns the period between ticks.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start begins ticking every interval until Stop is called or ctx is done.
// The first tick fires one interval after Start.
func (s *Scheduler) Start(ctx context.Context) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.runCtx, s.cancel = runCtx, cancel

	s.wg.Add(1)
	go s.run(runCtx)
}

// Stop cancels the current schedule. It does not wait for an in-flight task,
// so it is safe to call from within the task itself.
func (s *Scheduler) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.runCtx, s.cancel = nil, nil
	}
}

// Running reports whether a schedule is active. A schedule whose parent context
// is done is not running.
func (s *Scheduler) Running() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.runCtx != nil && s.runCtx.Err() == nil
}

// Wait blocks until every schedule goroutine has exited. Call it after Stop.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A tick may race with Stop; never run the task for a cancelled schedule.
			if ctx.Err() != nil {
				return
			}
			s.task(ctx)
		}
	}
}
