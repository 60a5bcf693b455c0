// Package exchange correlates directed waves with the reflections that
// answer them: a wave id maps to a pending entry armed with a timer and
// a bounce-backs policy, and is retired once that policy is satisfied
// or the timer fires.
package exchange

import (
	"time"

	"github.com/starlane-io/starlane/pkg/wave"
)

// Timeouts resolves a WaitClass to a concrete duration.
type Timeouts struct {
	Fast time.Duration
	Med  time.Duration
	Slow time.Duration
}

// DefaultTimeouts mirrors the wait-class budget a star process runs
// with out of the box; callers load overrides from config the same way
// the teacher's scheduler loads its reconciliation interval.
var DefaultTimeouts = Timeouts{
	Fast: 500 * time.Millisecond,
	Med:  5 * time.Second,
	Slow: 30 * time.Second,
}

func (t Timeouts) Resolve(class wave.WaitClass) time.Duration {
	switch class {
	case wave.WaitFast:
		return t.Fast
	case wave.WaitSlow:
		return t.Slow
	default:
		return t.Med
	}
}
