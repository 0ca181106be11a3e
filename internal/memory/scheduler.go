package memory

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Task is a handle to a scheduled callback.
type Task interface {
	Cancel()
}

// Scheduler runs callbacks after a delay or on a fixed interval.
type Scheduler interface {
	After(d time.Duration, fn func()) Task
	Every(d time.Duration, fn func()) Task
}

// RealScheduler schedules on the wall clock.
type RealScheduler struct{}

type timerTask struct {
	timer *time.Timer
}

func (t timerTask) Cancel() { t.timer.Stop() }

type cancelTask struct {
	cancel context.CancelFunc
}

func (t cancelTask) Cancel() { t.cancel() }

// After runs fn once, d from now, on its own goroutine.
func (RealScheduler) After(d time.Duration, fn func()) Task {
	return timerTask{timer: time.AfterFunc(d, fn)}
}

// Every runs fn each d until the returned task is cancelled.
func (RealScheduler) Every(d time.Duration, fn func()) Task {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-ctx.Done():
				return
			}
		}
	}()
	return cancelTask{cancel: cancel}
}

// ManualScheduler runs tasks on a virtual clock that only moves when Advance
// is called. Callbacks run on the caller's goroutine.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	s         *ManualScheduler
	seq       uint64
	at        time.Duration
	every     time.Duration
	fn        func()
	cancelled bool
}

func (t *manualTask) Cancel() {
	t.s.mu.Lock()
	t.cancelled = true
	t.s.mu.Unlock()
}

// NewManualScheduler returns a scheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) After(d time.Duration, fn func()) Task {
	return s.add(d, 0, fn)
}

// Every panics if d is not positive, since Advance could never finish.
func (s *ManualScheduler) Every(d time.Duration, fn func()) Task {
	if d <= 0 {
		panic("memory: non-positive interval")
	}
	return s.add(d, d, fn)
}

func (s *ManualScheduler) add(d, every time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{s: s, seq: s.seq, at: s.now + d, every: every, fn: fn}
	s.seq++
	s.tasks = append(s.tasks, t)
	return t
}

// Now reports the virtual time elapsed since creation.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending counts live tasks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compact()
	return len(s.tasks)
}

// Advance moves the clock forward by d, firing every task that falls due in
// deadline order. Ties fire in scheduling order.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		s.compact()
		sort.SliceStable(s.tasks, func(i, j int) bool {
			if s.tasks[i].at != s.tasks[j].at {
				return s.tasks[i].at < s.tasks[j].at
			}
			return s.tasks[i].seq < s.tasks[j].seq
		})
		if len(s.tasks) == 0 || s.tasks[0].at > target {
			s.now = target
			s.mu.Unlock()
			return
		}
		next := s.tasks[0]
		s.now = next.at
		if next.every > 0 {
			next.at += next.every
		} else {
			next.cancelled = true
		}
		s.mu.Unlock()

		next.fn()
	}
}

func (s *ManualScheduler) compact() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	s.tasks = live
}
