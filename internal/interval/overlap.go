// Package interval decides whether half-open booking intervals collide.
package interval

import (
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func Of(b domain.Booking) Interval {
	return Interval{Start: b.Start, End: b.End}
}

func (i Interval) Empty() bool {
	return !i.Start.Before(i.End)
}

// Validate rejects candidates that cannot be committed.
func Validate(candidate Interval) error {
	if candidate.Start.IsZero() || candidate.End.IsZero() {
		return domain.Invalidf("start and end are required")
	}
	if candidate.Empty() {
		return domain.ErrInvalidInterval
	}
	return nil
}

// Overlaps reports whether a and b share at least one instant. Intervals
// that only touch at a boundary do not overlap, and an empty interval
// overlaps nothing.
func Overlaps(a, b Interval) bool {
	if a.Empty() || b.Empty() {
		return false
	}
	return b.Start.Before(a.End) && b.End.After(a.Start)
}

// HasConflict reports whether candidate overlaps any booking in existing.
// A non-empty resource limits the scan to bookings on that resource; an
// empty one checks across all resources.
func HasConflict(candidate Interval, existing []domain.Booking, resource string) bool {
	_, found := FirstConflict(candidate, existing, resource)
	return found
}

func FirstConflict(candidate Interval, existing []domain.Booking, resource string) (domain.Booking, bool) {
	for _, b := range existing {
		if resource != "" && b.Resource != resource {
			continue
		}
		if Overlaps(candidate, Of(b)) {
			return b, true
		}
	}
	return domain.Booking{}, false
}
