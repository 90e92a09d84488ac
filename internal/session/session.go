// Package session ties acquisition, the fallback planner, and the region
// browser together under a per-session handle. Each browsing session owns
// its own selection state and at most one in-flight resolution chain; there
// is no process-wide current-location state.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dulegil/region-service/internal/browse"
	"github.com/dulegil/region-service/internal/geo"
	"github.com/dulegil/region-service/internal/location"
	"github.com/dulegil/region-service/internal/resolve"
	"github.com/jonboulle/clockwork"
)

// Resolution is the result of resolveCurrentLocation, surfaced to the UI.
// Exactly one of three shapes: a planner outcome, a location error with
// user guidance, or Cancelled when the session went away mid-chain.
type Resolution struct {
	Outcome       resolve.Outcome
	LocationError location.ErrorKind
	Message       string
	Cancelled     bool
}

// Session is one browsing session: a browser state machine plus the chain
// bookkeeping needed to cancel in-flight work when the session closes.
type Session struct {
	ID string

	acquirer *location.Acquirer
	planner  *resolve.Planner
	browser  *browse.Machine
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  sessionMetrics

	mu         sync.Mutex
	closed     bool
	cancel     context.CancelFunc // cancels the in-flight chain, nil when idle
	chainID    uint64             // identifies the chain s.cancel belongs to
	lastActive time.Time
}

type sessionMetrics interface {
	observeResolution(kind string, seconds float64)
}

// Browser returns the session's region browser.
func (s *Session) Browser() *browse.Machine {
	s.touch()
	return s.browser
}

// ResolveCurrentLocation runs the full chain: acquire a fix through the
// two-tier sensor procedure, run the fallback planner, and apply the outcome
// to the browser. Closing the session cancels the chain; a cancelled chain
// applies nothing and returns Cancelled.
func (s *Session) ResolveCurrentLocation(ctx context.Context) Resolution {
	chainCtx, id, ok := s.beginChain(ctx)
	if !ok {
		return Resolution{Cancelled: true}
	}
	defer s.endChain(id)

	start := s.clock.Now()

	coord, err := s.acquirer.Acquire(chainCtx)
	if err != nil {
		if chainCtx.Err() != nil {
			return Resolution{Cancelled: true}
		}
		kind := location.KindOf(err)
		s.logger.Info("location acquisition failed", "session", s.ID, "kind", kind)
		s.metrics.observeResolution("location_error", s.clock.Since(start).Seconds())
		return Resolution{LocationError: kind, Message: kind.Message()}
	}

	res := s.resolveAt(chainCtx, coord)
	if !res.Cancelled {
		s.metrics.observeResolution(string(res.Outcome.Kind), s.clock.Since(start).Seconds())
	}
	return res
}

// ResolveCoordinate runs the planner for a client-supplied fix (mobile apps
// acquire locally and post the coordinate) and applies the outcome.
func (s *Session) ResolveCoordinate(ctx context.Context, coord geo.Coordinate) Resolution {
	chainCtx, id, ok := s.beginChain(ctx)
	if !ok {
		return Resolution{Cancelled: true}
	}
	defer s.endChain(id)

	start := s.clock.Now()

	res := s.resolveAt(chainCtx, coord)
	if !res.Cancelled {
		s.metrics.observeResolution(string(res.Outcome.Kind), s.clock.Since(start).Seconds())
	}
	return res
}

func (s *Session) resolveAt(ctx context.Context, coord geo.Coordinate) Resolution {
	out := s.planner.Resolve(ctx, coord)
	if ctx.Err() != nil {
		// The session closed while the gateway calls were in flight; the
		// partial result must not touch a browser the user no longer sees.
		return Resolution{Cancelled: true}
	}
	s.browser.Apply(out)
	return Resolution{Outcome: out}
}

// beginChain starts a cancellable chain, replacing any chain already in
// flight. The returned id names the new chain so its cleanup cannot touch a
// later one. ok is false when the session is closed.
func (s *Session) beginChain(ctx context.Context) (context.Context, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, 0, false
	}
	if s.cancel != nil {
		s.cancel()
	}
	chainCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.chainID++
	s.lastActive = s.clock.Now()
	return chainCtx, s.chainID, true
}

// endChain releases the chain named by id. A chain that was already replaced
// must not cancel its replacement, so stale ids are ignored.
func (s *Session) endChain(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil && s.chainID == id {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = s.clock.Now()
	s.mu.Unlock()
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.browser.Reset()
}

func (s *Session) idleSince(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive) > ttl
}
