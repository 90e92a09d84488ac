// Package location wraps a one-shot platform location sensor in a two-tier
// acquisition procedure: a fast high-accuracy attempt, then a coarse retry.
// High-accuracy fixes are frequently slow or unavailable (indoors, weak GNSS,
// head units without a clear sky view) while coarse location is usually
// obtainable quickly, so the fallback rescues most transient failures.
package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dulegil/region-service/internal/geo"
)

// ErrorKind classifies an acquisition failure. The values double as metric
// labels.
type ErrorKind string

const (
	// KindNotSupported means the device has no location capability at all.
	// Fatal for this feature on this device.
	KindNotSupported ErrorKind = "not_supported"
	// KindPermissionDenied means the user has location access switched off.
	// Retrying cannot succeed until the system setting changes.
	KindPermissionDenied ErrorKind = "permission_denied"
	// KindPositionUnavailable means the sensor could not produce a fix.
	KindPositionUnavailable ErrorKind = "position_unavailable"
	// KindTimeout means the attempt exceeded its deadline.
	KindTimeout ErrorKind = "timeout"
	// KindUnknown covers everything else.
	KindUnknown ErrorKind = "unknown"
)

// Retryable reports whether an immediate retry can succeed without the user
// changing anything.
func (k ErrorKind) Retryable() bool {
	return k == KindPositionUnavailable || k == KindTimeout || k == KindUnknown
}

// Message returns the user-facing guidance for this failure kind.
func (k ErrorKind) Message() string {
	switch k {
	case KindNotSupported:
		return "이 기기에서는 위치 서비스를 사용할 수 없습니다."
	case KindPermissionDenied:
		return "위치 권한이 꺼져 있습니다. 설정에서 위치 접근을 허용한 뒤 다시 시도해 주세요."
	case KindPositionUnavailable:
		return "현재 위치를 확인할 수 없습니다. 잠시 후 다시 시도해 주세요."
	case KindTimeout:
		return "위치 확인에 시간이 너무 오래 걸립니다. 다시 시도해 주세요."
	default:
		return "위치 확인 중 오류가 발생했습니다. 다시 시도해 주세요."
	}
}

// Error is a classified acquisition failure.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("location %s: %v", e.Kind, e.Cause)
	}
	return "location " + string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// KindOf extracts the ErrorKind from err, defaulting to KindUnknown for
// unclassified errors and errors from cancelled contexts.
func KindOf(err error) ErrorKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// Options parameterizes one sensor attempt.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxAge       time.Duration // a cached fix no older than this is acceptable
}

// Sensor is the platform's single-shot location capability. Implementations
// must honor ctx cancellation and should return *Error for classifiable
// failures.
type Sensor interface {
	Acquire(ctx context.Context, opts Options) (geo.Coordinate, error)
}

// Unsupported is the Sensor for deployments without a location source. Every
// attempt fails with KindNotSupported, steering users to manual browsing.
type Unsupported struct{}

func (Unsupported) Acquire(context.Context, Options) (geo.Coordinate, error) {
	return geo.Coordinate{}, &Error{Kind: KindNotSupported}
}
