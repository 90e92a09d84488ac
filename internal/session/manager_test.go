package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dulegil/region-service/internal/browse"
	"github.com/dulegil/region-service/internal/content"
	"github.com/dulegil/region-service/internal/geo"
	"github.com/dulegil/region-service/internal/location"
	"github.com/dulegil/region-service/internal/observability"
	"github.com/dulegil/region-service/internal/region"
	"github.com/dulegil/region-service/internal/resolve"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockGateway struct {
	avail  content.Availability
	trails []content.Trail
}

func (m *mockGateway) Availability(_ context.Context) (content.Availability, error) {
	return m.avail, nil
}

func (m *mockGateway) TrailsFor(_ context.Context, _, _ region.Code) ([]content.Trail, error) {
	return m.trails, nil
}

type scriptedSensor struct {
	coord geo.Coordinate
	err   error
	block bool
}

func (s *scriptedSensor) Acquire(ctx context.Context, _ location.Options) (geo.Coordinate, error) {
	if s.block {
		<-ctx.Done()
		return geo.Coordinate{}, ctx.Err()
	}
	return s.coord, s.err
}

// gatedGateway blocks the first Availability call until the chain that made
// it is cancelled, so a second chain can be started mid-flight.
type gatedGateway struct {
	avail   content.Availability
	trails  []content.Trail
	entered chan struct{}

	mu    sync.Mutex
	calls int
}

func (g *gatedGateway) Availability(ctx context.Context) (content.Availability, error) {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()

	if first {
		close(g.entered)
		<-ctx.Done()
		return content.Availability{}, ctx.Err()
	}
	return g.avail, nil
}

func (g *gatedGateway) TrailsFor(_ context.Context, _, _ region.Code) ([]content.Trail, error) {
	return g.trails, nil
}

type recordingMetrics struct {
	mu    sync.Mutex
	kinds []string
}

func (r *recordingMetrics) observeResolution(kind string, _ float64) {
	r.mu.Lock()
	r.kinds = append(r.kinds, kind)
	r.mu.Unlock()
}

func (r *recordingMetrics) observed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.kinds...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func chuncheonAvailability() content.Availability {
	return content.Availability{
		Provinces: map[region.Code]bool{"gangwon": true},
		Cities: map[region.Code]map[region.Code]bool{
			"gangwon": {"chuncheon": true},
		},
	}
}

func newManager(gw content.Gateway, sensor location.Sensor, clock clockwork.Clock) *Manager {
	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()
	acquirer := location.NewAcquirer(sensor, clock, logger, metrics)
	planner := resolve.New(region.KoreaBounds, gw, logger, metrics)
	return NewManager(gw, acquirer, planner, clock, logger, metrics, 30*time.Minute)
}

// --- tests ---

func TestManager_OpenGetClose(t *testing.T) {
	m := newManager(&mockGateway{avail: chuncheonAvailability()}, &scriptedSensor{}, clockwork.NewRealClock())

	s := m.Open()
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 1, m.Count())

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	assert.True(t, m.Close(s.ID))
	assert.Equal(t, 0, m.Count())
	assert.False(t, m.Close(s.ID), "closing twice is a no-op")
}

func TestResolveCurrentLocation_AppliesResolvedOutcome(t *testing.T) {
	gw := &mockGateway{
		avail:  chuncheonAvailability(),
		trails: []content.Trail{{ID: "t-1", Title: "봉의산 둘레길"}},
	}
	sensor := &scriptedSensor{coord: geo.Coordinate{Lat: 37.8813, Lon: 127.7298}}
	m := newManager(gw, sensor, clockwork.NewRealClock())
	s := m.Open()

	res := s.ResolveCurrentLocation(context.Background())

	require.False(t, res.Cancelled)
	require.Empty(t, res.LocationError)
	assert.Equal(t, resolve.KindResolved, res.Outcome.Kind)
	require.Len(t, res.Outcome.Trails, 1)

	sel := s.Browser().Selection()
	assert.Equal(t, browse.ModeTrails, sel.Mode)
	assert.Equal(t, region.Code("gangwon"), sel.Province)
	assert.Equal(t, region.Code("chuncheon"), sel.City)
}

func TestResolveCurrentLocation_SurfacesLocationError(t *testing.T) {
	sensor := &scriptedSensor{err: &location.Error{Kind: location.KindPermissionDenied}}
	m := newManager(&mockGateway{avail: chuncheonAvailability()}, sensor, clockwork.NewRealClock())
	s := m.Open()

	res := s.ResolveCurrentLocation(context.Background())

	assert.Equal(t, location.KindPermissionDenied, res.LocationError)
	assert.NotEmpty(t, res.Message)
	assert.Equal(t, browse.ModeKorea, s.Browser().Selection().Mode,
		"a failed acquisition must not move the browser")
}

func TestResolveCoordinate_SkipsAcquisition(t *testing.T) {
	gw := &mockGateway{avail: chuncheonAvailability(), trails: []content.Trail{{ID: "t-1"}}}
	sensor := &scriptedSensor{err: &location.Error{Kind: location.KindNotSupported}}
	m := newManager(gw, sensor, clockwork.NewRealClock())
	s := m.Open()

	res := s.ResolveCoordinate(context.Background(), geo.Coordinate{Lat: 37.8813, Lon: 127.7298})

	require.False(t, res.Cancelled)
	assert.Equal(t, resolve.KindResolved, res.Outcome.Kind)
	assert.Equal(t, browse.ModeTrails, s.Browser().Selection().Mode)
}

func TestResolve_ReplacementChainSurvivesReplacedChainCleanup(t *testing.T) {
	gw := &gatedGateway{
		avail:   chuncheonAvailability(),
		trails:  []content.Trail{{ID: "t-1"}},
		entered: make(chan struct{}),
	}
	m := newManager(gw, &scriptedSensor{}, clockwork.NewRealClock())
	s := m.Open()

	coord := geo.Coordinate{Lat: 37.8813, Lon: 127.7298}

	firstDone := make(chan Resolution, 1)
	go func() {
		firstDone <- s.ResolveCoordinate(context.Background(), coord)
	}()

	// Wait until the first chain is inside the gateway, then start a second
	// resolve on the same session: it must cancel the first chain and then
	// complete normally itself.
	<-gw.entered
	second := s.ResolveCoordinate(context.Background(), coord)

	first := <-firstDone
	assert.True(t, first.Cancelled, "the replaced chain must be cancelled")

	require.False(t, second.Cancelled, "the replacement chain must survive the replaced chain's cleanup")
	assert.Equal(t, resolve.KindResolved, second.Outcome.Kind)
	assert.Equal(t, browse.ModeTrails, s.Browser().Selection().Mode)
}

func TestResolveCoordinate_ObservesOutcomeMetrics(t *testing.T) {
	gw := &mockGateway{avail: chuncheonAvailability(), trails: []content.Trail{{ID: "t-1"}}}
	m := newManager(gw, &scriptedSensor{}, clockwork.NewRealClock())
	s := m.Open()

	rec := &recordingMetrics{}
	s.metrics = rec

	res := s.ResolveCoordinate(context.Background(), geo.Coordinate{Lat: 37.8813, Lon: 127.7298})

	require.False(t, res.Cancelled)
	assert.Equal(t, []string{"resolved"}, rec.observed(),
		"client-supplied resolutions must be observed like sensor-driven ones")
}

func TestClose_CancelsInFlightChain(t *testing.T) {
	sensor := &scriptedSensor{block: true}
	m := newManager(&mockGateway{avail: chuncheonAvailability()}, sensor, clockwork.NewRealClock())
	s := m.Open()

	done := make(chan Resolution, 1)
	go func() {
		done <- s.ResolveCurrentLocation(context.Background())
	}()

	// Let the chain start, then tear the session down.
	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.cancel != nil
	}, time.Second, 5*time.Millisecond)

	m.Close(s.ID)

	res := <-done
	assert.True(t, res.Cancelled, "a closed session must receive no result")
	assert.Equal(t, browse.ModeKorea, s.Browser().Selection().Mode)
}

func TestResolve_OnClosedSessionIsCancelled(t *testing.T) {
	m := newManager(&mockGateway{avail: chuncheonAvailability()}, &scriptedSensor{}, clockwork.NewRealClock())
	s := m.Open()
	m.Close(s.ID)

	res := s.ResolveCurrentLocation(context.Background())
	assert.True(t, res.Cancelled)
}

func TestJanitor_ExpiresIdleSessions(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := newManager(&mockGateway{avail: chuncheonAvailability()}, &scriptedSensor{}, clock)
	m.ttl = time.Minute

	m.Open()
	require.Equal(t, 1, m.Count())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.RunJanitor(ctx, 30*time.Second)

	clock.BlockUntil(1)
	clock.Advance(2 * time.Minute)

	assert.Eventually(t, func() bool { return m.Count() == 0 },
		time.Second, 5*time.Millisecond)
}
