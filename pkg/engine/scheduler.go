package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// SchedulerState is the lifecycle state of the timed-unlock scheduler.
type SchedulerState int

const (
	StateIdle SchedulerState = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// UnlockFunc performs one achievement unlock. It must treat an achievement
// already unlocked upstream as success without re-issuing the write.
type UnlockFunc func(id string) error

// ProgressFunc observes each successful unlock.
type ProgressFunc func(id string, completed, planned int)

// Scheduler plans and executes a randomized, bounded-duration release
// sequence for a batch of locked achievements. It spawns no goroutines: an
// external driver calls Tick at a fixed cadence, and all mutation happens
// on that caller's thread.
type Scheduler struct {
	unlock   UnlockFunc
	now      func() time.Time
	rng      *rand.Rand
	status   func(string)
	progress ProgressFunc

	state      SchedulerState
	ids        []string
	delays     []time.Duration
	idx        int
	next       time.Time
	inTick     bool
	lastStatus time.Time
	failure    error
}

// SchedulerOption adjusts a Scheduler.
type SchedulerOption func(*Scheduler)

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// WithRand injects the randomness source used for interval jitter and
// candidate shuffling, making plans reproducible.
func WithRand(rng *rand.Rand) SchedulerOption {
	return func(s *Scheduler) { s.rng = rng }
}

// WithStatusSink receives human-readable countdown text, refreshed at most
// once per second while waiting.
func WithStatusSink(sink func(string)) SchedulerOption {
	return func(s *Scheduler) { s.status = sink }
}

// WithProgressSink observes successful unlocks.
func WithProgressSink(sink ProgressFunc) SchedulerOption {
	return func(s *Scheduler) { s.progress = sink }
}

// NewScheduler creates an idle scheduler that unlocks through unlock.
func NewScheduler(unlock UnlockFunc, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		unlock: unlock,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Start parses the requested duration, plans the release sequence and
// transitions to Running. Starting while already Running is rejected.
// Candidates are deduplicated; their unlock order is shuffled while the
// delay sequence keeps its computed order.
func (s *Scheduler) Start(durationText string, candidates []string) error {
	if s.state == StateRunning {
		return ErrAlreadyRunning
	}

	total, err := ParseDurationText(durationText)
	if err != nil {
		return err
	}

	ids := dedupe(candidates)
	if len(ids) == 0 {
		return ErrNothingToDo
	}

	s.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	s.ids = ids
	s.delays = BuildIntervals(len(ids), total, s.rng)
	s.idx = 0
	s.failure = nil
	s.state = StateRunning
	s.next = s.now().Add(s.delays[0])
	s.lastStatus = time.Time{}
	return nil
}

// Tick advances the plan. It is non-reentrant: a call arriving while a
// previous tick still executes returns immediately. Before the scheduled
// fire time it only refreshes the countdown status; at or past it, exactly
// one achievement is unlocked. An unlock failure is fatal to the run: the
// plan is cleared and no later unlock executes.
func (s *Scheduler) Tick() error {
	if s.state != StateRunning || s.inTick {
		return nil
	}
	s.inTick = true
	defer func() { s.inTick = false }()

	now := s.now()
	if now.Before(s.next) {
		if s.status != nil && now.Sub(s.lastStatus) >= time.Second {
			s.lastStatus = now
			s.status(fmt.Sprintf("next unlock in %s (%d of %d done)",
				s.next.Sub(now).Round(time.Second), s.idx, len(s.ids)))
		}
		return nil
	}

	if s.idx >= len(s.ids) {
		s.complete()
		return nil
	}

	id := s.ids[s.idx]
	if err := s.unlock(id); err != nil {
		s.failure = fmt.Errorf("timed unlock of %q failed: %w", id, err)
		s.state = StateFailed
		s.clearPlan()
		return s.failure
	}

	s.idx++
	if s.progress != nil {
		s.progress(id, s.idx, len(s.ids))
	}

	if s.idx == len(s.ids) {
		s.complete()
		return nil
	}

	// Fire times are cumulative from the start time, so a late tick does
	// not stretch the overall duration.
	s.next = s.next.Add(s.delays[s.idx])
	return nil
}

// Stop abandons any pending plan and returns to Idle. Safe to call in any
// state.
func (s *Scheduler) Stop() {
	s.state = StateIdle
	s.clearPlan()
}

func (s *Scheduler) complete() {
	s.state = StateCompleted
	if s.status != nil {
		s.status(fmt.Sprintf("timed unlock completed: %d achievements", s.idx))
	}
	s.clearPlan()
}

func (s *Scheduler) clearPlan() {
	s.ids = nil
	s.delays = nil
	s.next = time.Time{}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() SchedulerState {
	return s.state
}

// Completed returns how many unlocks the current or last run performed.
func (s *Scheduler) Completed() int {
	return s.idx
}

// Remaining returns how many unlocks the active plan still holds.
func (s *Scheduler) Remaining() int {
	if s.state != StateRunning {
		return 0
	}
	return len(s.ids) - s.idx
}

// NextFireTime returns the scheduled time of the next unlock; the zero
// time when no plan is active.
func (s *Scheduler) NextFireTime() time.Time {
	return s.next
}

// Err returns the failure that ended the last run, if any.
func (s *Scheduler) Err() error {
	return s.failure
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
