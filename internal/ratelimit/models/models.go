package models

import (
	"time"
)

// Class groups endpoints that share a limit.
type Class string

const (
	// ClassDirective covers directive construction, encoding and
	// classification.
	ClassDirective Class = "directive"
	// ClassRegistry covers registry reads.
	ClassRegistry Class = "registry"
)

// Limit is a request budget over a sliding window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result is the outcome of one limiter check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long a rejected caller should wait, rounded up to whole
// seconds.
func (r Result) RetryAfter(now time.Time) int {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return 1
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}

// Key builds the bucket key for a class and client identifier.
func Key(class Class, client string) string {
	return "ratelimit:" + string(class) + ":" + client
}
