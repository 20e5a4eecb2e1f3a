package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning rejects starting a timed-unlock plan while one is
	// active.
	ErrAlreadyRunning = errors.New("a timed unlock is already running")

	// ErrNothingToDo reports an empty candidate set.
	ErrNothingToDo = errors.New("no locked unprotected achievements to unlock")

	// ErrSchemaUnavailable reports that the game's definition blob is not
	// cached yet.
	ErrSchemaUnavailable = errors.New("schema unavailable")

	// ErrStoreFailed reports that the platform refused to persist pending
	// writes.
	ErrStoreFailed = errors.New("store stats failed")
)

// ProtectedError rejects a mutation of a platform-managed achievement.
type ProtectedError struct {
	ID string
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("achievement %q is protected and cannot be modified", e.ID)
}

// UnknownAchievementError reports an identifier absent from the view.
type UnknownAchievementError struct {
	ID string
}

func (e *UnknownAchievementError) Error() string {
	return fmt.Sprintf("unknown achievement %q", e.ID)
}

// WriteError identifies the entry whose platform write failed. Changes
// applied before it stay applied; there is no rollback.
type WriteError struct {
	ID string
	Op string
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("platform rejected %s for %q", e.Op, e.ID)
}

// StatsResultError reports a stats-received notification carrying a
// non-success result code.
type StatsResultError struct {
	Result int32
}

func (e *StatsResultError) Error() string {
	return fmt.Sprintf("user stats request failed with result %d", e.Result)
}
