package clock

import "time"

// Backoff yields doubling delays starting at base. A zero max leaves the delay uncapped.
type Backoff struct {
	base time.Duration
	max  time.Duration
	next time.Duration
}

func NewBackoff(base, max time.Duration) *Backoff {
	return &Backoff{base: base, max: max, next: base}
}

// Next returns the current delay and doubles it for the following call.
func (b *Backoff) Next() time.Duration {
	d := b.next
	b.next *= 2
	if b.max > 0 && b.next > b.max {
		b.next = b.max
	}
	return d
}

// Reset restarts the sequence at base.
func (b *Backoff) Reset() {
	b.next = b.base
}
