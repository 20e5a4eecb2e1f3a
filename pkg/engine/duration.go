package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseDurationText parses the duration accepted by the timed-unlock
// scheduler: a positive decimal number with an optional trailing unit
// letter h (hours, the default), m (minutes) or d (days).
func ParseDurationText(text string) (time.Duration, error) {
	s := strings.TrimSpace(strings.ToLower(text))
	if s == "" {
		return 0, fmt.Errorf("duration is empty")
	}

	unit := time.Hour
	switch s[len(s)-1] {
	case 'h':
		s = s[:len(s)-1]
	case 'm':
		unit = time.Minute
		s = s[:len(s)-1]
	case 'd':
		unit = 24 * time.Hour
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: expected a number with optional h, m or d suffix", text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("duration must be a positive number, got %q", text)
	}

	seconds := v * unit.Seconds()
	if seconds > MaxTimedDuration.Seconds() {
		return 0, fmt.Errorf("duration %q exceeds the one year maximum", text)
	}

	total := time.Duration(seconds * float64(time.Second))
	if total < MinTimedDuration {
		return 0, fmt.Errorf("duration %q is below the %s minimum", text, MinTimedDuration)
	}
	return total, nil
}
