package repository

import (
	"context"

	"github.com/Domenick1991/roombooking/internal/domain"
)

// BookingRepository is the durable booking collection. InsertIfNoOverlap
// is the only write path and is atomic: it fails with domain.ErrConflict
// when the booking overlaps one already stored on the same resource.
type BookingRepository interface {
	InsertIfNoOverlap(ctx context.Context, booking *domain.Booking) error
	List(ctx context.Context, resource string) ([]domain.Booking, error)
	Delete(ctx context.Context, id string) (*domain.Booking, error)
}
