package core

import "time"

type Clock struct {
	start   time.Time
	elapsed time.Duration
	now     func() time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Update refreshes the elapsed time. Has no effect on a stopped clock.
func (c *Clock) Update() {
	if !c.start.IsZero() {
		c.elapsed = c.now().Sub(c.start)
	}
}

// Start resets the elapsed time.
func (c *Clock) Start() {
	c.start = c.now()
	c.elapsed = 0
}

// Stop keeps the last elapsed value.
func (c *Clock) Stop() {
	c.start = time.Time{}
}

// Elapsed returns seconds since Start as of the last Update.
func (c *Clock) Elapsed() float64 {
	return c.elapsed.Seconds()
}
