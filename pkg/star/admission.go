package star

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/starlane-io/starlane/pkg/starerr"
	"github.com/starlane-io/starlane/pkg/starid"
)

// admission is a per-origin-point token bucket: every particle on this
// star shares it at the Field layer, the first stop a wave not already
// local to this star's traversal reaches (resolve()'s cases 1 and 4
// both route through Gravity into Field on arrival). Limits are keyed
// by the sending particle's point, not by transport address, since a
// fabric lane is shared by every particle a remote star hosts.
//
// Grounded on pkg/ingress/middleware.go's Middleware.CheckRateLimit:
// same lazily-created per-key *rate.Limiter map under one mutex, swapped
// from per-client-IP keys to per-origin-point keys.
type admission struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// newAdmission builds an admission controller. rps <= 0 disables rate
// limiting entirely (Allow always true), matching CheckRateLimit's
// nil-config passthrough.
func newAdmission(rps float64, burst int) *admission {
	return &admission{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (a *admission) allow(origin starid.Point) error {
	if a.rps <= 0 {
		return nil
	}
	key := origin.String()

	a.mu.Lock()
	limiter, ok := a.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(a.rps), a.burst)
		a.limiters[key] = limiter
	}
	a.mu.Unlock()

	if !limiter.Allow() {
		return starerr.RateLimited(key)
	}
	return nil
}

// sweep drops every tracked limiter once the table grows large enough
// to be a memory concern, the same blunt bound
// Middleware.CleanupRateLimiters uses rather than per-entry last-seen
// tracking.
func (a *admission) sweep() {
	const maxTracked = 10000
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.limiters) > maxTracked {
		a.limiters = make(map[string]*rate.Limiter)
	}
}
