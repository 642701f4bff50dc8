// internal/domain/order/numbers.go
package order

import (
	"fmt"
	"sync"
	"time"
)

// Clock produces the timestamps stamped onto orders and tracking
// records. Injected so tests can supply deterministic values.
type Clock func() time.Time

// NumberGenerator produces order numbers. Generated numbers must be
// globally unique; a collision at insert time is treated as a fatal
// configuration error, never retried.
type NumberGenerator interface {
	Next(now time.Time) string
}

// TimeNumberGenerator derives order numbers from the current time in
// milliseconds ("ORD" prefix) and bumps the value when two orders land
// on the same millisecond, so numbers are strictly monotonic within a
// process.
type TimeNumberGenerator struct {
	mu   sync.Mutex
	last int64
}

// NewTimeNumberGenerator creates a time-derived order number generator.
func NewTimeNumberGenerator() *TimeNumberGenerator {
	return &TimeNumberGenerator{}
}

// Next returns the next order number.
func (g *TimeNumberGenerator) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms

	return fmt.Sprintf("ORD%d", ms)
}
