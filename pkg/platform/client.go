// Package platform abstracts the game platform client that owns the real
// achievement and statistic state. The engine only consumes this surface;
// the transport behind it is a driver concern.
package platform

// StatsReceived is the out-of-band notification completing a
// RequestUserStats call. Result 1 means success.
type StatsReceived struct {
	GameID uint64
	Result int32
}

// Client is the capability surface the engine consumes. Implementations are
// not required to be safe for concurrent use; the engine drives all calls
// from one logical thread.
type Client interface {
	// RequestUserStats asks the platform to refresh the user's stats.
	// Completion arrives on the StatsReceived channel.
	RequestUserStats(userID uint64) (uint64, error)

	// StatsReceived delivers completion notifications for
	// RequestUserStats calls.
	StatsReceived() <-chan StatsReceived

	// GetAchievementAndUnlockTime reports the live state of one
	// achievement. unlockTime is unix seconds, zero when locked.
	GetAchievementAndUnlockTime(id string) (found, achieved bool, unlockTime uint32)

	SetAchievement(id string, achieved bool) bool

	GetNumAchievements() int
	GetAchievementName(index int) string

	GetStatInt(id string) (int32, bool)
	SetStatInt(id string, value int32) bool
	GetStatFloat(id string) (float32, bool)
	SetStatFloat(id string, value float32) bool

	// StoreStats pushes pending achievement/stat writes to the platform.
	StoreStats() bool

	// ResetAllStats clears all stats, and achievements too when asked.
	ResetAllStats(alsoAchievements bool) bool

	// UserID identifies the signed-in user owning the state.
	UserID() uint64

	// Close releases the client binding.
	Close() error
}
