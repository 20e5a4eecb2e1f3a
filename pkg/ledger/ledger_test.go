package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.json")
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return New(path, "76561198000000000", "full", WithClock(func() time.Time { return fixed }))
}

func TestRecord_CreatesEntry(t *testing.T) {
	l := testLedger(t)

	require.NoError(t, l.Record(400, "Portal", 12, 15, nil))

	doc := l.Read()
	require.Len(t, doc.Games, 1)

	e := doc.Games[0]
	assert.Equal(t, uint64(400), e.AppID)
	assert.Equal(t, "Portal", e.Name)
	assert.Equal(t, DefaultEntryType, e.Type)
	assert.Equal(t, 12, e.AchievementUnlocked)
	assert.Equal(t, 15, e.AchievementTotal)
	assert.True(t, e.HasProgress)
	assert.True(t, e.HasIncompleteAchievements)

	assert.Equal(t, "2024-03-01T12:00:00Z", doc.GeneratedAt)
	assert.Equal(t, "76561198000000000", doc.UserID)
	assert.Equal(t, "full", doc.ScanMode)
}

func TestRecord_UpdatesEntryInPlace(t *testing.T) {
	l := testLedger(t)

	require.NoError(t, l.Record(400, "Portal", 12, 15, nil))
	require.NoError(t, l.Record(400, "Portal", 15, 15, nil))

	doc := l.Read()
	require.Len(t, doc.Games, 1)
	assert.Equal(t, 15, doc.Games[0].AchievementUnlocked)
	assert.False(t, doc.Games[0].HasIncompleteAchievements)
}

func TestRecord_PreservesEntryType(t *testing.T) {
	l := testLedger(t)

	require.NoError(t, l.Record(400, "Portal", 1, 15, nil))

	// Simulate an out-of-band type tag.
	doc := l.Read()
	doc.Games[0].Type = "demo"
	require.NoError(t, l.write(doc))

	require.NoError(t, l.Record(400, "Portal", 2, 15, nil))
	assert.Equal(t, "demo", l.Read().Games[0].Type)
}

func TestRecord_UnlockBlockedOnlyWhenSupplied(t *testing.T) {
	l := testLedger(t)

	blocked := true
	require.NoError(t, l.Record(400, "Portal", 0, 15, &blocked))
	assert.True(t, l.Read().Games[0].AchievementUnlockBlocked)

	// nil leaves the previous value untouched.
	require.NoError(t, l.Record(400, "Portal", 0, 15, nil))
	assert.True(t, l.Read().Games[0].AchievementUnlockBlocked)

	unblocked := false
	require.NoError(t, l.Record(400, "Portal", 0, 15, &unblocked))
	assert.False(t, l.Read().Games[0].AchievementUnlockBlocked)
}

func TestRecord_SortsByNameThenAppID(t *testing.T) {
	l := testLedger(t)

	require.NoError(t, l.Record(620, "portal 2", 0, 10, nil))
	require.NoError(t, l.Record(400, "Portal", 0, 15, nil))
	require.NoError(t, l.Record(730, "Counter-Strike", 0, 1, nil))
	require.NoError(t, l.Record(10, "Counter-Strike", 0, 1, nil))

	doc := l.Read()
	require.Len(t, doc.Games, 4)
	assert.Equal(t, uint64(10), doc.Games[0].AppID)
	assert.Equal(t, uint64(730), doc.Games[1].AppID)
	assert.Equal(t, uint64(400), doc.Games[2].AppID)
	assert.Equal(t, uint64(620), doc.Games[3].AppID)
}

func TestRead_MissingFileYieldsEmptyDocument(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "nope.json"), "u", "full")
	doc := l.Read()
	assert.Empty(t, doc.Games)
}

func TestRead_CorruptFileYieldsEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	l := New(path, "u", "full")
	assert.Empty(t, l.Read().Games)

	// Recording over a corrupt document starts fresh rather than failing.
	require.NoError(t, l.Record(400, "Portal", 1, 2, nil))
	assert.Len(t, l.Read().Games, 1)
}

func TestRecord_WriteFailureIsReportedNotFatal(t *testing.T) {
	dir := t.TempDir()
	// Path points at a directory, so the write cannot succeed.
	l := New(dir, "u", "full")

	err := l.Record(400, "Portal", 1, 2, nil)
	assert.Error(t, err)
}

func TestDocument_FieldNames(t *testing.T) {
	l := testLedger(t)
	require.NoError(t, l.Record(400, "Portal", 12, 15, nil))

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "generated_at")
	assert.Contains(t, raw, "user_id")
	assert.Contains(t, raw, "scan_mode")

	games := raw["games"].([]any)
	entry := games[0].(map[string]any)
	for _, field := range []string{
		"app_id", "name", "type", "achievement_unlocked", "achievement_total",
		"has_progress", "has_incomplete_achievements", "achievement_unlock_blocked",
	} {
		assert.Contains(t, entry, field)
	}
}
