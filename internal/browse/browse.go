// Package browse implements the manual region drill-down: country view →
// province view → trail view, with back-navigation. Transition legality is
// enforced here, not in button handlers, so it is testable without any UI.
package browse

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dulegil/region-service/internal/content"
	"github.com/dulegil/region-service/internal/observability"
	"github.com/dulegil/region-service/internal/region"
	"github.com/dulegil/region-service/internal/resolve"
)

// Mode is the browser's current view level.
type Mode string

const (
	// ModeKorea shows all provinces (content-bearing ones highlighted).
	ModeKorea Mode = "korea"
	// ModeProvince shows the cities of the selected province.
	ModeProvince Mode = "province"
	// ModeTrails shows the trail list of the selected city.
	ModeTrails Mode = "trails"
)

// Selection is the browser's drill-down state. Invariants:
// mode=province ⇒ Province set; mode=trails ⇒ Province and City set.
type Selection struct {
	Mode     Mode        `json:"mode"`
	Province region.Code `json:"province,omitempty"`
	City     region.Code `json:"city,omitempty"`
}

// Machine owns one session's Selection and validates every transition
// against current content availability. Selection is mutated only through
// transition methods; illegal transitions are no-ops.
type Machine struct {
	gateway content.Gateway
	logger  *slog.Logger
	metrics *observability.Metrics

	mu       sync.Mutex
	sel      Selection
	advisory []region.Code // content-bearing cities suggested by a relaxed resolution
}

// NewMachine creates a Machine in the Korea view.
func NewMachine(gateway content.Gateway, logger *slog.Logger, metrics *observability.Metrics) *Machine {
	return &Machine{
		gateway: gateway,
		logger:  logger,
		metrics: metrics,
		sel:     Selection{Mode: ModeKorea},
	}
}

// Selection returns the current drill-down state.
func (m *Machine) Selection() Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sel
}

// Advisory returns the city suggestions from the last relaxed resolution,
// in catalog order. Cleared by any transition away from the province view.
func (m *Machine) Advisory() []region.Code {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]region.Code(nil), m.advisory...)
}

// SelectProvince moves Korea → Province. Legal only from the Korea view and
// only for a province with content; availability is re-checked at call time
// because the caller's view may be stale. Returns whether the state changed;
// a gateway failure is returned as an error with no state change.
func (m *Machine) SelectProvince(ctx context.Context, code region.Code) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sel.Mode != ModeKorea {
		m.record("select_province", "noop")
		return false, nil
	}

	avail, err := m.gateway.Availability(ctx)
	if err != nil {
		m.record("select_province", "noop")
		return false, err
	}
	if !avail.HasProvince(code) {
		m.logger.Debug("province selection rejected, no content", "province", code)
		m.record("select_province", "noop")
		return false, nil
	}

	m.sel = Selection{Mode: ModeProvince, Province: code}
	m.advisory = nil
	m.record("select_province", "ok")
	return true, nil
}

// SelectCity moves Province → Trails. Legal only from the province view and
// only for a content-bearing city of the current province.
func (m *Machine) SelectCity(ctx context.Context, code region.Code) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sel.Mode != ModeProvince {
		m.record("select_city", "noop")
		return false, nil
	}

	avail, err := m.gateway.Availability(ctx)
	if err != nil {
		m.record("select_city", "noop")
		return false, err
	}
	if !avail.HasCity(m.sel.Province, code) {
		m.logger.Debug("city selection rejected, no content",
			"province", m.sel.Province, "city", code)
		m.record("select_city", "noop")
		return false, nil
	}

	m.sel.Mode = ModeTrails
	m.sel.City = code
	m.advisory = nil
	m.record("select_city", "ok")
	return true, nil
}

// Back moves one level up: Trails → Province → Korea. A no-op in the Korea
// view.
func (m *Machine) Back() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.sel.Mode {
	case ModeTrails:
		m.sel.Mode = ModeProvince
		m.sel.City = ""
	case ModeProvince:
		m.sel.Mode = ModeKorea
		m.sel.Province = ""
		m.advisory = nil
	default:
		m.record("back", "noop")
		return false
	}
	m.record("back", "ok")
	return true
}

// Reset returns the browser to the Korea view and clears the selection.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sel = Selection{Mode: ModeKorea}
	m.advisory = nil
	m.record("reset", "ok")
}

// Apply feeds a resolution outcome into the browser. Resolved jumps straight
// to the trail view; RelaxedToProvince jumps to the province view with the
// content-bearing cities as advisory; everything else leaves the browser in
// the Korea view for manual selection.
func (m *Machine) Apply(out resolve.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch out.Kind {
	case resolve.KindResolved:
		m.sel = Selection{Mode: ModeTrails, Province: out.Region.Province, City: out.Region.City}
		m.advisory = nil
		m.record("apply", "ok")
	case resolve.KindRelaxedToProvince:
		m.sel = Selection{Mode: ModeProvince, Province: out.Region.Province}
		m.advisory = append([]region.Code(nil), out.Cities...)
		m.record("apply", "ok")
	default:
		m.sel = Selection{Mode: ModeKorea}
		m.advisory = nil
		m.record("apply", "noop")
	}
}

func (m *Machine) record(transition, result string) {
	m.metrics.BrowserTransitions.WithLabelValues(transition, result).Inc()
}
