package memory

import "fmt"

// Clock is elapsed play time.
type Clock struct {
	Minutes int
	Seconds int
}

// Advance adds one second, rolling seconds over into minutes at 60.
func (c *Clock) Advance() {
	c.Seconds++
	if c.Seconds > 59 {
		c.Minutes++
		c.Seconds = 0
	}
}

// String formats the clock as M:SS.
func (c Clock) String() string {
	return fmt.Sprintf("%d:%02d", c.Minutes, c.Seconds)
}

// Total returns the clock in seconds.
func (c Clock) Total() int {
	return c.Minutes*60 + c.Seconds
}
