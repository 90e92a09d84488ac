package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dulegil/region-service/internal/browse"
	"github.com/dulegil/region-service/internal/content"
	"github.com/dulegil/region-service/internal/location"
	"github.com/dulegil/region-service/internal/observability"
	"github.com/dulegil/region-service/internal/resolve"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Manager creates and tracks browsing sessions and expires idle ones.
type Manager struct {
	gateway  content.Gateway
	acquirer *location.Acquirer
	planner  *resolve.Planner
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager. ttl bounds how long an untouched session
// survives before the janitor closes it.
func NewManager(gateway content.Gateway, acquirer *location.Acquirer, planner *resolve.Planner,
	clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, ttl time.Duration) *Manager {
	return &Manager{
		gateway:  gateway,
		acquirer: acquirer,
		planner:  planner,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Open creates a new session in the Korea view.
func (m *Manager) Open() *Session {
	s := &Session{
		ID:         uuid.NewString(),
		acquirer:   m.acquirer,
		planner:    m.planner,
		browser:    browse.NewMachine(m.gateway, m.logger, m.metrics),
		clock:      m.clock,
		logger:     m.logger,
		metrics:    managerMetrics{m.metrics},
		lastActive: m.clock.Now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.metrics.ActiveSessions.Inc()
	m.logger.Debug("session opened", "session", s.ID)
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close tears down a session: the in-flight resolution chain, if any, is
// cancelled and the browser selection discarded.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.close()
	m.metrics.ActiveSessions.Dec()
	m.logger.Debug("session closed", "session", id)
	return true
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// RunJanitor closes idle sessions every interval until ctx is cancelled.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.clock.After(interval):
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	now := m.clock.Now()

	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if s.idleSince(now, m.ttl) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.logger.Info("session expired", "session", id)
		m.Close(id)
	}
}

// managerMetrics adapts observability.Metrics to the narrow session view.
type managerMetrics struct {
	m *observability.Metrics
}

func (mm managerMetrics) observeResolution(kind string, seconds float64) {
	// Planner outcomes are counted by the planner itself; only acquisition
	// failures never reach it.
	if kind == "location_error" {
		mm.m.ResolutionOutcomes.WithLabelValues(kind).Inc()
	}
	mm.m.ResolutionDuration.Observe(seconds)
}
