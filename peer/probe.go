package peer

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"golang.org/x/time/rate"
)

// ErrProbeTimeout is returned when a readiness probe exhausts its retry
// budget. It is distinct from a single correlation wait timing out: here the
// endpoint never accepted a connection at all.
var ErrProbeTimeout = errors.New("peer: endpoint not ready before retry budget ran out")

// DefaultProbeInterval paces readiness probes; one-second polling is fast
// enough to notice a router coming up without hammering it.
const DefaultProbeInterval = time.Second

// Probe re-attempts fn until it succeeds or the retry budget runs out.
//
// Only a refused connection triggers a retry — that is the one failure that
// means "not listening yet". Any other error propagates immediately: a wrong
// address or a protocol failure will not fix itself by waiting.
func Probe(ctx context.Context, fn func() error, attempts int, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	for i := 0; i < attempts; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, syscall.ECONNREFUSED) {
			return err
		}
	}
	return fmt.Errorf("%w (%d attempts)", ErrProbeTimeout, attempts)
}
