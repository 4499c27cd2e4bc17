// Package timezone converts between civil wall-clock times in named zones
// and absolute instants. All comparisons and storage use the instants.
package timezone

import (
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/Domenick1991/roombooking/internal/domain"
)

const (
	// WallClockLayout is the form returned by ToZoned.
	WallClockLayout = "2006-01-02T15:04:05"
	DateLayout      = "2006-01-02"
)

var wallClockLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

type Normalizer struct {
	defaultZone string
	zones       sync.Map // zone name -> *time.Location
}

// NewNormalizer validates defaultZone, which is used whenever a caller
// passes an empty zone name.
func NewNormalizer(defaultZone string) (*Normalizer, error) {
	n := &Normalizer{defaultZone: defaultZone}
	if _, err := n.Location(""); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Normalizer) DefaultZone() string {
	return n.defaultZone
}

func (n *Normalizer) Location(zone string) (*time.Location, error) {
	if zone == "" {
		zone = n.defaultZone
	}
	if loc, ok := n.zones.Load(zone); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown time zone %q", domain.ErrInvalidTimeInput, zone)
	}
	n.zones.Store(zone, loc)
	return loc, nil
}

// ToAbsolute interprets wall as a civil time in zone and returns the UTC
// instant, using the zone's offset on that date. Wall-clock times skipped
// by a daylight-saving jump are normalized forward by the time package.
func (n *Normalizer) ToAbsolute(wall, zone string) (time.Time, error) {
	loc, err := n.Location(zone)
	if err != nil {
		return time.Time{}, err
	}
	wall = strings.TrimSpace(wall)
	for _, layout := range wallClockLayouts {
		if t, err := time.ParseInLocation(layout, wall, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %q as wall-clock time", domain.ErrInvalidTimeInput, wall)
}

// ToZoned renders instant as a wall-clock string in zone.
func (n *Normalizer) ToZoned(instant time.Time, zone string) (string, error) {
	loc, err := n.Location(zone)
	if err != nil {
		return "", err
	}
	return instant.In(loc).Format(WallClockLayout), nil
}

// ParseInstant accepts either an RFC 3339 instant, whose offset wins, or a
// wall-clock time that is resolved in zone.
func (n *Normalizer) ParseInstant(value, zone string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty time", domain.ErrInvalidTimeInput)
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	return n.ToAbsolute(value, zone)
}

// StartOfDay returns the instant of local midnight for a calendar date in zone.
func (n *Normalizer) StartOfDay(date, zone string) (time.Time, error) {
	loc, err := n.Location(zone)
	if err != nil {
		return time.Time{}, err
	}
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: cannot parse %q as date", domain.ErrInvalidTimeInput, date)
	}
	return d.UTC(), nil
}

// NextDay returns local midnight of the day after the one containing instant.
// Days are counted in the calendar, so DST days of 23 or 25 hours are exact.
func (n *Normalizer) NextDay(instant time.Time, zone string) (time.Time, error) {
	loc, err := n.Location(zone)
	if err != nil {
		return time.Time{}, err
	}
	local := instant.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc).UTC(), nil
}

// Format renders instant for display in zone, e.g. "Sat May 10 2:00 PM EDT".
func (n *Normalizer) Format(instant time.Time, zone string) string {
	loc, err := n.Location(zone)
	if err != nil {
		loc = time.UTC
	}
	return instant.In(loc).Format("Mon Jan 2 3:04 PM MST")
}
