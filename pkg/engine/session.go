// Package engine owns one game's achievement and statistic state: it loads
// typed definitions, combines them with live platform state into view
// records, and applies bulk, filtered and time-paced mutations back through
// the platform client.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/achtool/achtool/pkg/icons"
	"github.com/achtool/achtool/pkg/ledger"
	"github.com/achtool/achtool/pkg/platform"
	"github.com/achtool/achtool/pkg/schema"
)

// Session is the synchronization engine for one game. All of its methods
// must be called from one logical thread; the only asynchronous boundary
// is the icon queue, whose completions are re-marshaled through Tick.
type Session struct {
	client      platform.Client
	gameID      uint64
	gameName    string
	language    string
	installPath string

	schema       *schema.GameSchema
	achievements []*AchievementInfo
	intStats     []*IntStatInfo
	floatStats   []*FloatStatInfo

	icons  *icons.Queue
	ledger *ledger.Ledger
	sched  *Scheduler

	now        func() time.Time
	rng        *rand.Rand
	onChange   func(id string)
	statusSink func(string)
	loadSchema func() (*schema.GameSchema, error)
}

// SessionOption adjusts a Session.
type SessionOption func(*Session)

// WithLanguage selects the localization language for display strings.
func WithLanguage(language string) SessionOption {
	return func(s *Session) { s.language = language }
}

// WithGameName sets the display name recorded in the ledger.
func WithGameName(name string) SessionOption {
	return func(s *Session) { s.gameName = name }
}

// WithLedger attaches the best-effort progress ledger. Without one, no
// progress is persisted.
func WithLedger(l *ledger.Ledger) SessionOption {
	return func(s *Session) { s.ledger = l }
}

// WithIconQueue attaches the icon fetch queue. Without one, no icons are
// downloaded.
func WithIconQueue(q *icons.Queue) SessionOption {
	return func(s *Session) { s.icons = q }
}

// WithSessionClock injects the time source, for tests.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithSessionRand injects the randomness source shared with the scheduler.
func WithSessionRand(rng *rand.Rand) SessionOption {
	return func(s *Session) { s.rng = rng }
}

// WithSchemaLoader overrides where definitions come from. The default
// reads the cached blob under the install path.
func WithSchemaLoader(load func() (*schema.GameSchema, error)) SessionOption {
	return func(s *Session) { s.loadSchema = load }
}

// WithSessionStatusSink receives the scheduler's human-readable countdown
// lines.
func WithSessionStatusSink(sink func(string)) SessionOption {
	return func(s *Session) { s.statusSink = sink }
}

// WithChangeListener receives the identifier of every view record mutated
// by an unlock operation. The presentation layer maps identifiers to rows
// itself; the engine never reaches into presentation objects.
func WithChangeListener(fn func(id string)) SessionOption {
	return func(s *Session) { s.onChange = fn }
}

// NewSession creates the engine for one game using client for all platform
// state. installPath locates the cached definition blobs.
func NewSession(client platform.Client, gameID uint64, installPath string, opts ...SessionOption) *Session {
	s := &Session{
		client:      client,
		gameID:      gameID,
		installPath: installPath,
		language:    "english",
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.gameName == "" {
		s.gameName = "App " + strconv.FormatUint(gameID, 10)
	}
	if s.loadSchema == nil {
		s.loadSchema = func() (*schema.GameSchema, error) {
			return schema.Load(s.installPath, s.gameID, s.language)
		}
	}
	schedOpts := []SchedulerOption{
		WithClock(s.now),
		WithRand(s.rng),
	}
	if s.statusSink != nil {
		schedOpts = append(schedOpts, WithStatusSink(s.statusSink))
	}
	s.sched = NewScheduler(s.timedUnlock, schedOpts...)
	return s
}

// Scheduler exposes the timed-unlock scheduler for status wiring.
func (s *Session) Scheduler() *Scheduler {
	return s.sched
}

// ─────────────────────────────────────────────────────────────
// Refresh cycle
// ─────────────────────────────────────────────────────────────

// RequestRefresh asks the platform for fresh user stats. The result
// arrives as a stats-received notification; use WaitForStats or feed the
// event to OnStatsReceived.
func (s *Session) RequestRefresh() error {
	if _, err := s.client.RequestUserStats(s.client.UserID()); err != nil {
		return fmt.Errorf("request user stats: %w", err)
	}
	return nil
}

// WaitForStats blocks until the stats-received notification for this
// session's game arrives, then applies it. Notifications for other games
// are ignored.
func (s *Session) WaitForStats(ctx context.Context) error {
	for {
		select {
		case ev := <-s.client.StatsReceived():
			if ev.GameID != s.gameID {
				continue
			}
			return s.OnStatsReceived(ev)
		case <-ctx.Done():
			return fmt.Errorf("waiting for user stats: %w", ctx.Err())
		}
	}
}

// Refresh runs one full request/wait/rebuild cycle.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.RequestRefresh(); err != nil {
		return err
	}
	return s.WaitForStats(ctx)
}

// OnStatsReceived applies a stats-received notification: it reloads the
// schema and rebuilds every view record. Any running timed unlock stops
// and pending icon fetches are discarded, so no stale consumer sees a late
// result.
func (s *Session) OnStatsReceived(ev platform.StatsReceived) error {
	if ev.Result != 1 {
		return &StatsResultError{Result: ev.Result}
	}

	gs, err := s.loadSchema()
	if err != nil {
		if errors.Is(err, schema.ErrNotCached) {
			return ErrSchemaUnavailable
		}
		return err
	}

	s.sched.Stop()
	if s.icons != nil {
		s.icons.Reset()
	}

	s.schema = gs
	s.achievements = BuildAchievementViews(gs.Achievements, s.client, Filter{})
	s.intStats, s.floatStats = BuildStatViews(gs, s.client)

	if s.icons != nil {
		for _, a := range s.achievements {
			if a.Icon == "" {
				continue
			}
			a := a
			s.icons.Enqueue(a.Icon, func(index int) {
				a.IconIndex = index
				s.notify(a.ID)
			})
		}
	}

	return nil
}

// Tick drives the cooperative work of the session: the timed-unlock plan
// and icon fetch completions. Call it at a fixed cadence from one thread.
func (s *Session) Tick() error {
	if s.icons != nil {
		for s.icons.Poll() {
		}
	}
	return s.sched.Tick()
}

// ─────────────────────────────────────────────────────────────
// Views
// ─────────────────────────────────────────────────────────────

// Achievements returns the view records matching a filter. The records are
// the session's own: mutating them through session operations updates the
// same instances.
func (s *Session) Achievements(f Filter) []*AchievementInfo {
	return FilterAchievements(s.achievements, f)
}

// IntStats returns the integer statistic records.
func (s *Session) IntStats() []*IntStatInfo {
	return s.intStats
}

// FloatStats returns the floating-point statistic records.
func (s *Session) FloatStats() []*FloatStatInfo {
	return s.floatStats
}

// Progress returns how many achievements are unlocked out of the total.
func (s *Session) Progress() (unlocked, total int) {
	for _, a := range s.achievements {
		if a.Achieved {
			unlocked++
		}
	}
	return unlocked, len(s.achievements)
}

// UnlockBlocked reports whether every known achievement is protected, in
// which case no user-initiated unlock can ever apply.
func (s *Session) UnlockBlocked() bool {
	if len(s.achievements) == 0 {
		return false
	}
	for _, a := range s.achievements {
		if !a.Protected() {
			return false
		}
	}
	return true
}

// ─────────────────────────────────────────────────────────────
// Bulk operations
// ─────────────────────────────────────────────────────────────

// UnlockAll marks every unprotected achievement achieved in the view.
// Nothing reaches the platform until Store.
func (s *Session) UnlockAll() (changed, skippedProtected int) {
	return s.bulkSet(true)
}

// LockAll marks every unprotected achievement locked in the view.
func (s *Session) LockAll() (changed, skippedProtected int) {
	return s.bulkSet(false)
}

func (s *Session) bulkSet(achieved bool) (changed, skippedProtected int) {
	for _, a := range s.achievements {
		if a.Protected() {
			skippedProtected++
			continue
		}
		if a.Achieved != achieved {
			a.Achieved = achieved
			changed++
			s.notify(a.ID)
		}
	}
	return changed, skippedProtected
}

// InvertAll flips every unprotected achievement in the view.
func (s *Session) InvertAll() (changed, skippedProtected int) {
	for _, a := range s.achievements {
		if a.Protected() {
			skippedProtected++
			continue
		}
		a.Achieved = !a.Achieved
		changed++
		s.notify(a.ID)
	}
	return changed, skippedProtected
}

// AutoSelect marks up to n random locked unprotected achievements achieved.
func (s *Session) AutoSelect(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("count must be positive, got %d", n)
	}

	candidates := s.lockedUnprotected()
	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if n > len(candidates) {
		n = len(candidates)
	}

	for _, a := range candidates[:n] {
		a.Achieved = true
		s.notify(a.ID)
	}
	return n, nil
}

// SetAchievementState flips one achievement in the view. Protected entries
// are rejected and left unchanged.
func (s *Session) SetAchievementState(id string, achieved bool) error {
	a := s.find(id)
	if a == nil {
		return &UnknownAchievementError{ID: id}
	}
	if a.Protected() {
		return &ProtectedError{ID: id}
	}
	if a.Achieved != achieved {
		a.Achieved = achieved
		s.notify(id)
	}
	return nil
}

// SetIntStat edits an integer statistic in the view.
func (s *Session) SetIntStat(id string, value int32) error {
	for _, st := range s.intStats {
		if st.ID == id {
			if st.Protected() {
				return &ProtectedError{ID: id}
			}
			st.Value = value
			return nil
		}
	}
	return fmt.Errorf("unknown stat %q", id)
}

// SetFloatStat edits a floating-point statistic in the view.
func (s *Session) SetFloatStat(id string, value float32) error {
	for _, st := range s.floatStats {
		if st.ID == id {
			if st.Protected() {
				return &ProtectedError{ID: id}
			}
			st.Value = value
			return nil
		}
	}
	return fmt.Errorf("unknown stat %q", id)
}

// Store pushes every changed achievement and modified statistic through
// the platform client and commits them. The first platform failure aborts
// with the failing identifier; earlier writes stay applied.
func (s *Session) Store() (changed int, err error) {
	for _, a := range s.achievements {
		if !a.Changed() {
			continue
		}
		if !s.client.SetAchievement(a.ID, a.Achieved) {
			return changed, &WriteError{ID: a.ID, Op: "set achievement"}
		}
		changed++
	}
	for _, st := range s.intStats {
		if !st.Modified() {
			continue
		}
		if !s.client.SetStatInt(st.ID, st.Value) {
			return changed, &WriteError{ID: st.ID, Op: "set stat"}
		}
		changed++
	}
	for _, st := range s.floatStats {
		if !st.Modified() {
			continue
		}
		if !s.client.SetStatFloat(st.ID, st.Value) {
			return changed, &WriteError{ID: st.ID, Op: "set stat"}
		}
		changed++
	}

	if !s.client.StoreStats() {
		return changed, ErrStoreFailed
	}

	now := s.now()
	for _, a := range s.achievements {
		if a.Changed() {
			if a.Achieved {
				a.UnlockTime = now
			} else {
				a.UnlockTime = time.Time{}
			}
			a.original = a.Achieved
		}
	}
	for _, st := range s.intStats {
		st.Original = st.Value
	}
	for _, st := range s.floatStats {
		st.Original = st.Value
	}

	s.recordProgress()
	return changed, nil
}

// ResetAll clears all statistics, and achievements too when asked. The
// view is stale afterwards; callers refresh to rebuild it.
func (s *Session) ResetAll(alsoAchievements bool) error {
	s.sched.Stop()
	if !s.client.ResetAllStats(alsoAchievements) {
		return fmt.Errorf("platform rejected the stats reset")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────
// Timed unlock
// ─────────────────────────────────────────────────────────────

// StartTimedUnlock plans a randomized release of every currently locked
// unprotected achievement across the requested duration and starts the
// scheduler.
func (s *Session) StartTimedUnlock(durationText string) error {
	candidates := make([]string, 0, len(s.achievements))
	for _, a := range s.lockedUnprotected() {
		candidates = append(candidates, a.ID)
	}
	return s.sched.Start(durationText, candidates)
}

// StopTimedUnlock abandons any pending plan.
func (s *Session) StopTimedUnlock() {
	s.sched.Stop()
}

// timedUnlock is the scheduler's unlock primitive: one synchronous
// set+store for one achievement. An achievement already unlocked upstream
// counts as success without re-issuing the write.
func (s *Session) timedUnlock(id string) error {
	a := s.find(id)
	if a == nil {
		return &UnknownAchievementError{ID: id}
	}

	found, achieved, unlockTime := s.client.GetAchievementAndUnlockTime(id)
	if found && achieved {
		a.Achieved = true
		a.original = true
		if unlockTime != 0 {
			a.UnlockTime = time.Unix(int64(unlockTime), 0)
		}
		s.notify(id)
		s.recordProgress()
		return nil
	}

	if !s.client.SetAchievement(id, true) {
		return &WriteError{ID: id, Op: "set achievement"}
	}
	if !s.client.StoreStats() {
		return ErrStoreFailed
	}

	a.Achieved = true
	a.original = true
	a.UnlockTime = s.now()
	s.notify(id)
	s.recordProgress()
	return nil
}

// ─────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────

func (s *Session) find(id string) *AchievementInfo {
	for _, a := range s.achievements {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *Session) lockedUnprotected() []*AchievementInfo {
	out := make([]*AchievementInfo, 0, len(s.achievements))
	for _, a := range s.achievements {
		if !a.Achieved && !a.Protected() {
			out = append(out, a)
		}
	}
	return out
}

func (s *Session) notify(id string) {
	if s.onChange != nil {
		s.onChange(id)
	}
}

// RecordProgress persists the current progress to the ledger without any
// platform write. Scan-only callers use it after a refresh.
func (s *Session) RecordProgress() {
	s.recordProgress()
}

// recordProgress persists the ledger entry for this game. The ledger is a
// best-effort side record: failures are swallowed and never affect the
// achievement state itself.
func (s *Session) recordProgress() {
	if s.ledger == nil {
		return
	}
	unlocked, total := s.Progress()
	blocked := s.UnlockBlocked()
	_ = s.ledger.Record(s.gameID, s.gameName, unlocked, total, &blocked)
}
