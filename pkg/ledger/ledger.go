// Package ledger persists per-game achievement progress across runs. The
// ledger is a best-effort side record: readers tolerate a missing or corrupt
// document, and callers must not depend on writes succeeding.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultEntryType tags entries with no special classification.
const DefaultEntryType = "normal"

// Entry records one game's progress.
type Entry struct {
	AppID                     uint64 `json:"app_id"`
	Name                      string `json:"name"`
	Type                      string `json:"type"`
	AchievementUnlocked       int    `json:"achievement_unlocked"`
	AchievementTotal          int    `json:"achievement_total"`
	HasProgress               bool   `json:"has_progress"`
	HasIncompleteAchievements bool   `json:"has_incomplete_achievements"`
	AchievementUnlockBlocked  bool   `json:"achievement_unlock_blocked"`
}

// Document is the persisted ledger, one entry per game, sorted by display
// name (case-insensitive) with app id as tie-break.
type Document struct {
	GeneratedAt string  `json:"generated_at"`
	UserID      string  `json:"user_id"`
	ScanMode    string  `json:"scan_mode"`
	Games       []Entry `json:"games"`
}

// Ledger binds a document path to the identity stamped on every rewrite.
type Ledger struct {
	path     string
	userID   string
	scanMode string
	now      func() time.Time
}

// Option adjusts a Ledger.
type Option func(*Ledger)

// WithClock injects the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates a ledger bound to path, stamping documents with the owning
// user and scan mode.
func New(path, userID, scanMode string, opts ...Option) *Ledger {
	l := &Ledger{
		path:     path,
		userID:   userID,
		scanMode: scanMode,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the document location.
func (l *Ledger) Path() string {
	return l.path
}

// Read loads the persisted document. Absence or corruption yields an empty
// document, never an error escalation.
func (l *Ledger) Read() *Document {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return &Document{}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return &Document{}
	}
	return &doc
}

// Record merges one game's progress into the document and rewrites it.
// unlockBlocked is applied only when non-nil; an existing entry keeps its
// previous value otherwise. The returned error is informational: callers
// treat persistence as optional.
func (l *Ledger) Record(appID uint64, name string, unlocked, total int, unlockBlocked *bool) error {
	doc := l.Read()

	entry := findEntry(doc, appID)
	if entry == nil {
		doc.Games = append(doc.Games, Entry{AppID: appID, Type: DefaultEntryType})
		entry = &doc.Games[len(doc.Games)-1]
	}
	if entry.Type == "" {
		entry.Type = DefaultEntryType
	}

	entry.Name = name
	entry.AchievementUnlocked = unlocked
	entry.AchievementTotal = total
	entry.HasProgress = unlocked > 0
	entry.HasIncompleteAchievements = total > 0 && unlocked < total
	if unlockBlocked != nil {
		entry.AchievementUnlockBlocked = *unlockBlocked
	}

	sortEntries(doc.Games)

	doc.GeneratedAt = l.now().UTC().Format(time.RFC3339)
	doc.UserID = l.userID
	doc.ScanMode = l.scanMode

	return l.write(doc)
}

func (l *Ledger) write(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize ledger: %w", err)
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	return nil
}

func findEntry(doc *Document, appID uint64) *Entry {
	for i := range doc.Games {
		if doc.Games[i].AppID == appID {
			return &doc.Games[i]
		}
	}
	return nil
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a := strings.ToLower(entries[i].Name)
		b := strings.ToLower(entries[j].Name)
		if a != b {
			return a < b
		}
		return entries[i].AppID < entries[j].AppID
	})
}
