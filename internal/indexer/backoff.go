package indexer

import "time"

// backoff yields the short interval until threshold consecutive failures have
// been counted, then the long interval until Reset.
type backoff struct {
	short     time.Duration
	long      time.Duration
	threshold int
	failures  int
}

func newBackoff(short, long time.Duration, threshold int) *backoff {
	return &backoff{short: short, long: long, threshold: threshold}
}

// Next records a failure and returns how long to wait before the next probe.
func (b *backoff) Next() time.Duration {
	b.failures++
	if b.failures > b.threshold {
		return b.long
	}
	return b.short
}

// Reset clears the failure count after a successful probe.
func (b *backoff) Reset() {
	b.failures = 0
}
