package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/interval"
)

// MemoryBookingRepository keeps bookings in process. A per-resource mutex
// is held across the overlap check and the insert.
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]domain.Booking

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now func() time.Time
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		bookings: make(map[string]domain.Booking),
		locks:    make(map[string]*sync.Mutex),
		now:      time.Now,
	}
}

func (r *MemoryBookingRepository) resourceLock(resource string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	l, ok := r.locks[resource]
	if !ok {
		l = &sync.Mutex{}
		r.locks[resource] = l
	}
	return l
}

func (r *MemoryBookingRepository) InsertIfNoOverlap(ctx context.Context, booking *domain.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := r.resourceLock(booking.Resource)
	lock.Lock()
	defer lock.Unlock()

	existing, err := r.List(ctx, booking.Resource)
	if err != nil {
		return err
	}
	if interval.HasConflict(interval.Of(*booking), existing, booking.Resource) {
		return domain.ErrConflict
	}

	// Last chance to observe cancellation; past this point the booking is visible.
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.bookings[booking.ID]; dup {
		return domain.Invalidf("booking %s already exists", booking.ID)
	}
	booking.CreatedAt = r.now().UTC()
	r.bookings[booking.ID] = cloneBooking(*booking)
	return nil
}

func (r *MemoryBookingRepository) List(ctx context.Context, resource string) ([]domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		if resource != "" && b.Resource != resource {
			continue
		}
		out = append(out, cloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func (r *MemoryBookingRepository) Delete(ctx context.Context, id string) (*domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(r.bookings, id)
	return &b, nil
}

func cloneBooking(b domain.Booking) domain.Booking {
	if b.Recurrence != nil {
		rec := *b.Recurrence
		rec.DaysOfWeek = append([]int(nil), b.Recurrence.DaysOfWeek...)
		b.Recurrence = &rec
	}
	return b
}

var _ BookingRepository = (*MemoryBookingRepository)(nil)
