package engine

import "time"

// RoundClock tracks one round's timing against a level-dependent
// deadline: when narration runs, when the obstacle starts approaching,
// and how much of the time budget remains.
type RoundClock struct {
	narrationStart time.Time
	narrationEnd   time.Time
	obstacleStart  time.Time
	deadline       time.Duration
	cancelled      bool
}

// NewRoundClock returns a clock for a round with the given deadline.
func NewRoundClock(deadline time.Duration) *RoundClock {
	return &RoundClock{deadline: deadline}
}

// StartNarration marks the start of word narration.
func (c *RoundClock) StartNarration(now time.Time) {
	c.narrationStart = now
}

// FinishNarration marks narration completion; the obstacle starts
// approaching at this moment.
func (c *RoundClock) FinishNarration(now time.Time) {
	c.narrationEnd = now
	c.obstacleStart = now
}

// Deadline returns the round's time budget.
func (c *RoundClock) Deadline() time.Duration {
	return c.deadline
}

// Running reports whether the obstacle is in motion.
func (c *RoundClock) Running() bool {
	return !c.obstacleStart.IsZero() && !c.cancelled
}

// Elapsed returns the time since the obstacle started approaching, or
// zero before that.
func (c *RoundClock) Elapsed(now time.Time) time.Duration {
	if c.obstacleStart.IsZero() {
		return 0
	}
	d := now.Sub(c.obstacleStart)
	if d < 0 {
		return 0
	}
	return d
}

// Remaining returns the unspent part of the deadline, clamped at zero.
func (c *RoundClock) Remaining(now time.Time) time.Duration {
	rem := c.deadline - c.Elapsed(now)
	if rem < 0 {
		return 0
	}
	return rem
}

// Expired reports whether the deadline has passed.
func (c *RoundClock) Expired(now time.Time) bool {
	return c.Running() && c.Elapsed(now) >= c.deadline
}

// Progress returns the elapsed fraction of the deadline in [0, 1].
func (c *RoundClock) Progress(now time.Time) float64 {
	if c.deadline <= 0 || c.obstacleStart.IsZero() {
		return 0
	}
	p := float64(c.Elapsed(now)) / float64(c.deadline)
	if p > 1 {
		return 1
	}
	return p
}

// Cancel stops the clock; a cancelled clock never expires. Submitting
// an answer cancels the armed deadline so a stale timeout cannot fire.
func (c *RoundClock) Cancel() {
	c.cancelled = true
}

// Cancelled reports whether the clock was cancelled.
func (c *RoundClock) Cancelled() bool {
	return c.cancelled
}
