// Package polling implements the bounded-retry contract every consumer of
// asynchronous approval state uses: poll on an interval, surface a non-fatal
// advisory partway through, and stop at a hard timeout. Timing out is its own
// outcome, never folded into a rejection.
package polling

import (
	"context"
	"log/slog"
	"time"
)

// Config bounds one polling session.
type Config struct {
	Interval      time.Duration // sleep between attempts
	AdvisoryAfter time.Duration // when to surface the "no response yet" advisory
	Timeout       time.Duration // hard stop
}

// DefaultConfig returns the standard bounds: 8s interval, 3m advisory, 7m stop.
func DefaultConfig() Config {
	return Config{
		Interval:      8 * time.Second,
		AdvisoryAfter: 3 * time.Minute,
		Timeout:       7 * time.Minute,
	}
}

type Outcome string

const (
	// OutcomeResolved means a check reported a terminal state.
	OutcomeResolved Outcome = "resolved"
	// OutcomeTimeout means the hard bound elapsed with every check still
	// pending. Callers must not present this as a rejection.
	OutcomeTimeout Outcome = "timeout"
)

// Check runs one poll attempt. Return done=true to end the loop with
// OutcomeResolved. Errors are logged and tolerated; the loop keeps going.
type Check func(ctx context.Context) (done bool, err error)

type Poller struct {
	cfg      Config
	advisory func()
	log      *slog.Logger
}

// New returns a Poller. advisory may be nil; it is invoked at most once, at
// the advisory mark, and the loop continues afterwards. Zero config fields
// fall back to DefaultConfig values.
func New(cfg Config, advisory func(), log *slog.Logger) *Poller {
	if log == nil {
		log = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.AdvisoryAfter <= 0 {
		cfg.AdvisoryAfter = def.AdvisoryAfter
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Poller{cfg: cfg, advisory: advisory, log: log}
}

// Run polls check until it reports done, the timeout elapses, or ctx is
// cancelled. Exactly one check is in flight at a time. All timers are
// released on every return path, so callers can cancel without leaks.
func (p *Poller) Run(ctx context.Context, check Check) (Outcome, error) {
	deadline := time.NewTimer(p.cfg.Timeout)
	defer deadline.Stop()
	advisoryTimer := time.NewTimer(p.cfg.AdvisoryAfter)
	defer advisoryTimer.Stop()
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	advisoryC := advisoryTimer.C

	for {
		done, err := check(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			p.log.Warn("poll attempt failed", "error", err)
		}
		if done {
			return OutcomeResolved, nil
		}

		for waited := false; !waited; {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-deadline.C:
				return OutcomeTimeout, nil
			case <-advisoryC:
				// Fire once, keep polling to the full bound.
				advisoryC = nil
				if p.advisory != nil {
					p.advisory()
				}
			case <-ticker.C:
				waited = true
			}
		}
	}
}
