package engine

import (
	"strings"
	"time"

	"github.com/achtool/achtool/pkg/schema"
)

// protectedMask marks permission bits 0 and 1; either one means the entry
// is platform- or server-managed and excluded from user mutation.
const protectedMask = 0x3

// AchievementInfo is one display-ready achievement record. Records are
// created per schema reload and mutated in place by unlock operations.
type AchievementInfo struct {
	ID          string
	Name        string
	Description string
	Achieved    bool
	UnlockTime  time.Time
	Icon        string
	IconIndex   int
	Permission  int64
	Hidden      bool

	// achieved state at build/store time, used to detect pending changes
	original bool
}

// Protected reports whether the entry is excluded from bulk mutation.
func (a *AchievementInfo) Protected() bool {
	return a.Permission&protectedMask != 0
}

// Changed reports whether the record differs from the stored platform state.
func (a *AchievementInfo) Changed() bool {
	return a.Achieved != a.original
}

// IntStatInfo is one display-ready integer statistic record.
type IntStatInfo struct {
	ID            string
	DisplayName   string
	Value         int32
	Original      int32
	IncrementOnly bool
	Permission    int64
}

// Modified reports whether the value was edited since load.
func (s *IntStatInfo) Modified() bool {
	return s.Value != s.Original
}

// Protected reports whether the stat is platform-managed.
func (s *IntStatInfo) Protected() bool {
	return s.Permission&protectedMask != 0
}

// FloatStatInfo is one display-ready floating-point statistic record.
type FloatStatInfo struct {
	ID            string
	DisplayName   string
	Value         float32
	Original      float32
	IncrementOnly bool
	Permission    int64
}

func (s *FloatStatInfo) Modified() bool {
	return s.Value != s.Original
}

func (s *FloatStatInfo) Protected() bool {
	return s.Permission&protectedMask != 0
}

// Visibility selects which achievements a filtered view includes.
type Visibility int

const (
	VisibilityAll Visibility = iota
	VisibilityLocked
	VisibilityUnlocked
)

// Filter narrows a view to a visibility class and an optional
// case-insensitive substring match against name and description.
type Filter struct {
	Visibility Visibility
	Search     string
}

func (f Filter) matches(a *AchievementInfo) bool {
	switch f.Visibility {
	case VisibilityLocked:
		// The locked view feeds unlock selection, so entries that can
		// never be user-unlocked are left out.
		if a.Achieved || a.Protected() {
			return false
		}
	case VisibilityUnlocked:
		if !a.Achieved {
			return false
		}
	}

	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(a.Name), needle) ||
		strings.Contains(strings.ToLower(a.Description), needle)
}

// AchievementStateAccessor resolves live per-achievement state.
type AchievementStateAccessor interface {
	GetAchievementAndUnlockTime(id string) (found, achieved bool, unlockTime uint32)
}

// StatStateAccessor resolves live statistic values.
type StatStateAccessor interface {
	GetStatInt(id string) (int32, bool)
	GetStatFloat(id string) (float32, bool)
}

// BuildAchievementViews combines achievement definitions with live platform
// state into view records. Definitions with an empty identifier and entries
// the accessor cannot resolve are skipped.
func BuildAchievementViews(defs []*schema.AchievementDefinition, acc AchievementStateAccessor, f Filter) []*AchievementInfo {
	views := make([]*AchievementInfo, 0, len(defs))
	for _, def := range defs {
		if def.ID == "" {
			continue
		}
		found, achieved, unlockTime := acc.GetAchievementAndUnlockTime(def.ID)
		if !found {
			continue
		}

		info := &AchievementInfo{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Achieved:    achieved,
			Permission:  def.Permission,
			Hidden:      def.Hidden,
			original:    achieved,
		}
		if achieved {
			info.Icon = def.IconNormal
			if unlockTime != 0 {
				info.UnlockTime = time.Unix(int64(unlockTime), 0)
			}
		} else {
			info.Icon = def.IconLocked
		}

		if !f.matches(info) {
			continue
		}
		views = append(views, info)
	}
	return views
}

// FilterAchievements applies a filter over already-built records without
// copying them.
func FilterAchievements(records []*AchievementInfo, f Filter) []*AchievementInfo {
	out := make([]*AchievementInfo, 0, len(records))
	for _, a := range records {
		if f.matches(a) {
			out = append(out, a)
		}
	}
	return out
}

// BuildStatViews combines statistic definitions with live values. Stats the
// accessor cannot resolve are skipped.
func BuildStatViews(gs *schema.GameSchema, acc StatStateAccessor) ([]*IntStatInfo, []*FloatStatInfo) {
	ints := make([]*IntStatInfo, 0, len(gs.IntStats))
	for _, def := range gs.IntStats {
		if def.ID == "" {
			continue
		}
		v, ok := acc.GetStatInt(def.ID)
		if !ok {
			continue
		}
		ints = append(ints, &IntStatInfo{
			ID:            def.ID,
			DisplayName:   def.DisplayName,
			Value:         v,
			Original:      v,
			IncrementOnly: def.IncrementOnly,
			Permission:    def.Permission,
		})
	}

	floats := make([]*FloatStatInfo, 0, len(gs.FloatStats))
	for _, def := range gs.FloatStats {
		if def.ID == "" {
			continue
		}
		v, ok := acc.GetStatFloat(def.ID)
		if !ok {
			continue
		}
		floats = append(floats, &FloatStatInfo{
			ID:            def.ID,
			DisplayName:   def.DisplayName,
			Value:         v,
			Original:      v,
			IncrementOnly: def.IncrementOnly,
			Permission:    def.Permission,
		})
	}

	return ints, floats
}
