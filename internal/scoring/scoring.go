// Package scoring computes round scores and level timing.
package scoring

import (
	"math"
	"time"
)

// Speed tier names, fastest first.
const (
	TierLightning = "lightning"
	TierFast      = "fast"
	TierGood      = "good"
	TierNormal    = "normal"
)

// BaseScore returns the points for a round resolved correctly after the
// given number of attempts. Monotonically decreasing with attempts.
func BaseScore(attempts int) int {
	switch attempts {
	case 1:
		return 20
	case 2:
		return 10
	case 3:
		return 5
	default:
		return 2
	}
}

// SpeedTier maps the elapsed fraction of the deadline to a multiplier
// and a tier name. A value exactly on a boundary falls into the slower
// tier.
func SpeedTier(responseMs, deadlineMs int64) (float64, string) {
	if deadlineMs <= 0 {
		return 1.0, TierNormal
	}
	pct := float64(responseMs) / float64(deadlineMs) * 100
	switch {
	case pct < 30:
		return 2.0, TierLightning
	case pct < 50:
		return 1.5, TierFast
	case pct < 70:
		return 1.25, TierGood
	default:
		return 1.0, TierNormal
	}
}

// ComboMultiplier rewards consecutive first-try-correct rounds, clamped
// at five.
func ComboMultiplier(combo int) float64 {
	switch {
	case combo >= 5:
		return 1.5
	case combo == 4:
		return 1.3
	case combo == 3:
		return 1.2
	case combo == 2:
		return 1.1
	default:
		return 1.0
	}
}

// FinalScore combines the base score with speed and combo multipliers,
// rounded to the nearest point.
func FinalScore(base int, speedMult, comboMult float64) int {
	return int(math.Round(float64(base) * speedMult * comboMult))
}

// ObstacleTravelForLevel is the total obstacle travel time for a level.
// The obstacle speeds up by 400ms per level, floored at 2.5s.
func ObstacleTravelForLevel(level int) time.Duration {
	ms := 8000 - 400*(level-1)
	if ms < 2500 {
		ms = 2500
	}
	return time.Duration(ms) * time.Millisecond
}

// DeadlineForLevel is the time budget for a typed answer: the fraction
// of obstacle travel before it reaches the character's fixed position.
func DeadlineForLevel(level int) time.Duration {
	return ObstacleTravelForLevel(level) * 6 / 10
}
