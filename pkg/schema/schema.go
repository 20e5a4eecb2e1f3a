package schema

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// ErrNotCached reports that the definition blob for a game has not been
// written by the platform client yet. Callers treat this as "no schema",
// not as a failure.
var ErrNotCached = errors.New("schema not cached")

// FormatError reports a definition blob whose content violates the schema
// format. A load that hits one is abandoned, not retried.
type FormatError struct {
	StatID string
	Tag    int64
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unknown stat type tag %d on stat %q", e.Tag, e.StatID)
}

// Stat type tags as stored in the definition blob. The tag is read from the
// type_int field, falling back to the legacy type field.
const (
	statTypeInvalid           = 0
	statTypeInteger           = 1
	statTypeFloat             = 2
	statTypeAverageRate       = 3
	statTypeAchievements      = 4
	statTypeGroupAchievements = 5
)

// IntStatDefinition describes one integer statistic of a game.
type IntStatDefinition struct {
	ID                 string
	DisplayName        string
	Min                int64
	Max                int64
	MaxChange          int64
	IncrementOnly      bool
	Default            int64
	Permission         int64
	SetByTrustedServer bool
}

// FloatStatDefinition describes one floating-point statistic of a game.
// Average-rate stats load through this variant as well.
type FloatStatDefinition struct {
	ID            string
	DisplayName   string
	Min           float64
	Max           float64
	MaxChange     float64
	IncrementOnly bool
	Default       float64
	Permission    int64
}

// AchievementDefinition describes one unlockable achievement of a game.
type AchievementDefinition struct {
	ID          string
	Name        string
	Description string
	IconNormal  string
	IconLocked  string
	Hidden      bool
	Permission  int64
}

// GameSchema is the typed result of loading a game's definition blob.
// The definition slices preserve document order and are replaced wholesale
// on every reload.
type GameSchema struct {
	GameID       uint64
	IntStats     []*IntStatDefinition
	FloatStats   []*FloatStatDefinition
	Achievements []*AchievementDefinition
}

// SchemaPath returns the deterministic location of the cached definition
// blob for a game under the platform client's install directory.
func SchemaPath(installPath string, gameID uint64) string {
	return filepath.Join(installPath, "appcache", "stats",
		fmt.Sprintf("UserGameStatsSchema_%d.bin", gameID))
}

// Load reads and parses the cached definition blob for a game. A missing
// blob returns ErrNotCached. Display strings resolve against the requested
// language.
func Load(installPath string, gameID uint64, language string) (*GameSchema, error) {
	path := SchemaPath(installPath, gameID)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotCached
		}
		return nil, fmt.Errorf("failed to open schema %s: %w", path, err)
	}
	defer f.Close()

	root, err := ParseKeyValue(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", path, err)
	}

	return Parse(root, gameID, language)
}

// Parse walks an already-decoded definition document and classifies its
// stats subtree into typed definitions.
func Parse(root *KeyValue, gameID uint64, language string) (*GameSchema, error) {
	gs := &GameSchema{GameID: gameID}

	stats := root.Child("stats")
	if stats == nil {
		return gs, nil
	}

	for _, stat := range stats.Children {
		tag := stat.IntValue("type_int", stat.IntValue("type", statTypeInvalid))

		switch tag {
		case statTypeInvalid:
			continue

		case statTypeInteger:
			gs.IntStats = append(gs.IntStats, parseIntStat(stat, language))

		case statTypeFloat, statTypeAverageRate:
			gs.FloatStats = append(gs.FloatStats, parseFloatStat(stat, language))

		case statTypeAchievements, statTypeGroupAchievements:
			bits := stat.Child("bits")
			if bits == nil {
				continue
			}
			for _, bit := range bits.Children {
				gs.Achievements = append(gs.Achievements, parseAchievement(bit, language))
			}

		default:
			return nil, &FormatError{StatID: stat.StringValue("name", stat.Name), Tag: tag}
		}
	}

	return gs, nil
}

func parseIntStat(stat *KeyValue, language string) *IntStatDefinition {
	id := stat.StringValue("name", "")
	return &IntStatDefinition{
		ID:                 id,
		DisplayName:        LocalizedString(stat.Child("display").Child("name"), language, id),
		Min:                stat.IntValue("min", math.MinInt32),
		Max:                stat.IntValue("max", math.MaxInt32),
		MaxChange:          stat.IntValue("maxchange", 0),
		IncrementOnly:      stat.BoolValue("incrementonly", false),
		Default:            stat.IntValue("default", 0),
		Permission:         stat.IntValue("permission", 0),
		SetByTrustedServer: stat.BoolValue("bSetByTrustedGS", false),
	}
}

func parseFloatStat(stat *KeyValue, language string) *FloatStatDefinition {
	id := stat.StringValue("name", "")
	return &FloatStatDefinition{
		ID:            id,
		DisplayName:   LocalizedString(stat.Child("display").Child("name"), language, id),
		Min:           stat.FloatValue("min", -math.MaxFloat32),
		Max:           stat.FloatValue("max", math.MaxFloat32),
		MaxChange:     stat.FloatValue("maxchange", 0),
		IncrementOnly: stat.BoolValue("incrementonly", false),
		Default:       stat.FloatValue("default", 0),
		Permission:    stat.IntValue("permission", 0),
	}
}

func parseAchievement(bit *KeyValue, language string) *AchievementDefinition {
	id := bit.StringValue("name", "")
	display := bit.Child("display")

	def := &AchievementDefinition{
		ID:          id,
		Name:        LocalizedString(display.Child("name"), language, id),
		Description: LocalizedString(display.Child("desc"), language, ""),
		IconNormal:  display.StringValue("icon", ""),
		IconLocked:  display.StringValue("icon_gray", ""),
		Hidden:      display.BoolValue("hidden", false),
		Permission:  bit.IntValue("permission", 0),
	}

	// A missing locked-state icon falls back to the unlocked one.
	if def.IconLocked == "" {
		def.IconLocked = def.IconNormal
	}

	return def
}

// LocalizedString resolves a display node to a string in the requested
// language, falling back to english, then the node's own raw value, then
// the supplied default.
func LocalizedString(node *KeyValue, language, def string) string {
	if node == nil {
		return def
	}
	if c := node.Child(language); c != nil {
		if s := c.asString(""); s != "" {
			return s
		}
	}
	if c := node.Child("english"); c != nil {
		if s := c.asString(""); s != "" {
			return s
		}
	}
	if s := node.asString(""); s != "" {
		return s
	}
	return def
}
