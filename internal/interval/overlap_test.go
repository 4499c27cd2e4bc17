package interval

import (
	"testing"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/stretchr/testify/assert"
)

var base = time.Date(2025, 5, 10, 18, 0, 0, 0, time.UTC)

func span(fromMin, toMin int) Interval {
	return Interval{
		Start: base.Add(time.Duration(fromMin) * time.Minute),
		End:   base.Add(time.Duration(toMin) * time.Minute),
	}
}

func booking(resource string, fromMin, toMin int) domain.Booking {
	i := span(fromMin, toMin)
	return domain.Booking{ID: resource, Resource: resource, Start: i.Start, End: i.End}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", span(0, 60), span(0, 60), true},
		{"partial", span(0, 60), span(30, 90), true},
		{"contained", span(0, 120), span(30, 60), true},
		{"touching end", span(0, 60), span(60, 120), false},
		{"touching start", span(60, 120), span(0, 60), false},
		{"disjoint", span(0, 30), span(90, 120), false},
		{"empty inside other", span(0, 120), span(30, 30), false},
		{"reversed", span(60, 0), span(0, 60), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			assert.Equal(t, Overlaps(tt.a, tt.b), Overlaps(tt.b, tt.a), "overlap must be symmetric")
		})
	}
}

func TestOverlaps_SymmetryGrid(t *testing.T) {
	points := []int{0, 15, 30, 45, 60}
	for _, a0 := range points {
		for _, a1 := range points {
			for _, b0 := range points {
				for _, b1 := range points {
					a, b := span(a0, a1), span(b0, b1)
					assert.Equal(t, Overlaps(a, b), Overlaps(b, a), "%v %v", a, b)
					if a1 == b0 {
						assert.False(t, Overlaps(a, b), "touching intervals %v %v", a, b)
					}
				}
			}
		}
	}
}

func TestHasConflict(t *testing.T) {
	existing := []domain.Booking{
		booking("room-1", 0, 60),
		booking("room-2", 60, 120),
	}

	assert.True(t, HasConflict(span(30, 90), existing, "room-1"))
	assert.False(t, HasConflict(span(60, 120), existing, "room-1"), "back-to-back on same room")
	assert.True(t, HasConflict(span(60, 120), existing, "room-2"))
	assert.False(t, HasConflict(span(0, 60), existing, "room-3"), "other rooms are independent")
	assert.True(t, HasConflict(span(90, 100), existing, ""), "empty resource checks globally")
	assert.False(t, HasConflict(span(30, 30), existing, "room-1"), "zero duration never conflicts")
	assert.False(t, HasConflict(span(0, 60), nil, "room-1"))
}

func TestFirstConflict(t *testing.T) {
	existing := []domain.Booking{booking("room-1", 0, 60)}

	got, ok := FirstConflict(span(45, 75), existing, "room-1")
	assert.True(t, ok)
	assert.Equal(t, "room-1", got.ID)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(span(0, 60)))
	assert.ErrorIs(t, Validate(span(60, 60)), domain.ErrInvalidInterval)
	assert.ErrorIs(t, Validate(span(60, 0)), domain.ErrInvalidInterval)
	assert.ErrorIs(t, Validate(Interval{}), domain.ErrValidation)
}
