package engine

// Clock issues the seq numbers of results and reverts.
//
// It never moves backwards. A rewind spends one number per revert and the
// re-judged results continue after those, so seq order is the order in which
// the stream was produced. The engine is single-threaded and so is Clock.
type Clock struct {
	last int64
}

// NewClock returns a clock whose first number is 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next issues the next seq.
func (c *Clock) Next() int64 {
	c.last++
	return c.last
}

// Current is the last issued seq, 0 before the first.
func (c *Clock) Current() int64 {
	return c.last
}
