package location

import (
	"context"
	"log/slog"
	"time"

	"github.com/dulegil/region-service/internal/geo"
	"github.com/dulegil/region-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Default attempt parameters. The high-accuracy tier accepts a recent cached
// fix; the coarse tier waits longer and accepts a much older one.
var (
	DefaultHighAccuracy = Options{HighAccuracy: true, Timeout: 8 * time.Second, MaxAge: 60 * time.Second}
	DefaultLowAccuracy  = Options{HighAccuracy: false, Timeout: 10 * time.Second, MaxAge: 5 * time.Minute}
)

// Acquirer runs the two-tier acquisition procedure over a Sensor. Timeouts
// go through a clockwork.Clock so tests can drive them with a fake clock.
type Acquirer struct {
	sensor  Sensor
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	high Options
	low  Options
}

// NewAcquirer creates an Acquirer with the default tier parameters.
func NewAcquirer(sensor Sensor, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Acquirer {
	return &Acquirer{
		sensor:  sensor,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
		high:    DefaultHighAccuracy,
		low:     DefaultLowAccuracy,
	}
}

// WithTiers overrides the attempt parameters. Useful for deployments with
// slow bridges and for tests.
func (a *Acquirer) WithTiers(high, low Options) *Acquirer {
	a.high = high
	a.low = low
	return a
}

// Acquire obtains one coordinate. It tries the high-accuracy tier first and
// falls back to the coarse tier unless the first failure was a permission
// denial (a retry cannot succeed without the user changing a setting) or the
// context was cancelled. The returned error is always classifiable via
// KindOf, except for context cancellation which is returned as ctx.Err().
func (a *Acquirer) Acquire(ctx context.Context) (geo.Coordinate, error) {
	coord, err := a.attempt(ctx, a.high)
	if err == nil {
		a.metrics.AcquisitionAttempts.WithLabelValues("high", "success").Inc()
		return coord, nil
	}
	a.metrics.AcquisitionAttempts.WithLabelValues("high", "error").Inc()

	if ctx.Err() != nil {
		// Consumer went away; deliver nothing.
		return geo.Coordinate{}, ctx.Err()
	}

	kind := KindOf(err)
	if kind == KindPermissionDenied {
		a.logger.Info("location permission denied, not retrying")
		a.metrics.AcquisitionErrors.WithLabelValues(string(kind)).Inc()
		return geo.Coordinate{}, err
	}

	a.logger.Debug("high-accuracy attempt failed, retrying coarse", "kind", kind, "error", err)

	coord, err = a.attempt(ctx, a.low)
	if err == nil {
		a.metrics.AcquisitionAttempts.WithLabelValues("low", "success").Inc()
		return coord, nil
	}
	a.metrics.AcquisitionAttempts.WithLabelValues("low", "error").Inc()

	if ctx.Err() != nil {
		return geo.Coordinate{}, ctx.Err()
	}

	a.metrics.AcquisitionErrors.WithLabelValues(string(KindOf(err))).Inc()
	return geo.Coordinate{}, err
}

// attempt runs one sensor call with the tier's timeout enforced through the
// injected clock. The sensor also receives the timeout in its Options so
// platform implementations can pass it down to the native call.
func (a *Acquirer) attempt(ctx context.Context, opts Options) (geo.Coordinate, error) {
	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		coord geo.Coordinate
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		coord, err := a.sensor.Acquire(attemptCtx, opts)
		ch <- result{coord, err}
	}()

	timer := a.clock.NewTimer(opts.Timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.coord, r.err
	case <-timer.Chan():
		return geo.Coordinate{}, &Error{Kind: KindTimeout}
	case <-ctx.Done():
		return geo.Coordinate{}, ctx.Err()
	}
}
