package engine

import (
	"math"
	"math/rand"
	"time"
)

const (
	// MinTimedDuration is the absolute floor for a timed-unlock run and
	// for any single delay band.
	MinTimedDuration = 5 * time.Second

	// MaxTimedDuration caps a run at one year.
	MaxTimedDuration = 365 * 24 * time.Hour

	// Preferred per-unlock delay band. The band scales proportionally
	// when the average delay falls outside it.
	preferredMinDelay = 5 * time.Minute
	preferredMaxDelay = 40 * time.Minute
)

// BuildIntervals computes n per-unlock delays summing exactly to total.
// Delays are whole seconds except the last one, which absorbs any
// sub-second residue of total so the sum is exact.
//
// Each position draws from a feasible sub-range keeping the remaining
// positions inside the working band; an inverted sub-range collapses to an
// equal split. With n large relative to total this degenerates into runs of
// forced-equal delays, which is accepted behavior.
func BuildIntervals(n int, total time.Duration, rng *rand.Rand) []time.Duration {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []time.Duration{total}
	}

	floorSec := MinTimedDuration.Seconds()
	totalSec := total.Seconds()
	avg := totalSec / float64(n)

	minSec := preferredMinDelay.Seconds()
	maxSec := preferredMaxDelay.Seconds()
	switch {
	case avg < minSec:
		scale := avg / minSec
		minSec = math.Max(floorSec, minSec*scale)
		maxSec = maxSec * scale
	case avg > maxSec:
		scale := avg / maxSec
		minSec *= scale
		maxSec *= scale
	}

	// Feasibility correction: the per-position draw below assumes
	// n*min <= total <= n*max.
	if minSec > avg {
		minSec = avg
	}
	if maxSec < avg {
		maxSec = avg
	}
	if minSec < 1 {
		minSec = 1
	}

	delays := make([]time.Duration, n)
	remaining := total
	for i := 0; i < n; i++ {
		left := n - 1 - i
		if left == 0 {
			delays[i] = remaining
			break
		}

		remSec := remaining.Seconds()
		lo := int64(math.Ceil(math.Max(remSec-float64(left)*maxSec, minSec)))
		hi := int64(math.Floor(math.Min(remSec-float64(left)*minSec, maxSec)))

		var sec int64
		if lo > hi {
			// Infeasible range: force an equal split.
			sec = int64(remSec) / int64(left+1)
			if sec < 1 {
				sec = 1
			}
		} else {
			// Two-draw average biases toward the range's center.
			u := (rng.Float64() + rng.Float64()) / 2
			sec = lo + int64(math.Round(u*float64(hi-lo)))
		}

		d := time.Duration(sec) * time.Second
		if maxD := remaining - time.Duration(left)*time.Second; d > maxD {
			d = maxD
		}
		if d < time.Second {
			d = time.Second
		}

		delays[i] = d
		remaining -= d
	}

	return delays
}
