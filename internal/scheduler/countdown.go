package scheduler

// Countdown is the display counter shown next to the refresh button. It
// ticks down once per Tick and wraps back to its period after reaching zero.
// It is never reset by fetch completion.
type Countdown struct {
	period int
	value  int
}

// NewCountdown starts a countdown at period. Periods below 1 are clamped.
func NewCountdown(period int) *Countdown {
	if period < 1 {
		period = 1
	}
	return &Countdown{period: period, value: period}
}

// Tick advances the countdown and returns the new value.
func (c *Countdown) Tick() int {
	if c.value <= 0 {
		c.value = c.period
	} else {
		c.value--
	}
	return c.value
}

// Value returns the current value
func (c *Countdown) Value() int {
	return c.value
}

// Period returns the wrap-around value
func (c *Countdown) Period() int {
	return c.period
}
