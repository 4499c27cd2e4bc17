package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/interval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return v
}

func TestMemoryBookingRepository_Scenarios(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()

	first := &domain.Booking{ID: "b-1", Title: "Club Meeting", Resource: "room-1",
		Start: mustTime(t, "2025-05-10T18:00:00Z"), End: mustTime(t, "2025-05-10T19:00:00Z")}
	require.NoError(t, repo.InsertIfNoOverlap(ctx, first))
	assert.False(t, first.CreatedAt.IsZero())

	overlapping := &domain.Booking{ID: "b-2", Title: "Debate", Resource: "room-1",
		Start: mustTime(t, "2025-05-10T18:30:00Z"), End: mustTime(t, "2025-05-10T19:30:00Z")}
	assert.ErrorIs(t, repo.InsertIfNoOverlap(ctx, overlapping), domain.ErrConflict)

	touching := &domain.Booking{ID: "b-3", Title: "Robotics", Resource: "room-1",
		Start: mustTime(t, "2025-05-10T19:00:00Z"), End: mustTime(t, "2025-05-10T20:00:00Z")}
	require.NoError(t, repo.InsertIfNoOverlap(ctx, touching))

	elsewhere := &domain.Booking{ID: "b-4", Title: "Debate", Resource: "room-2",
		Start: overlapping.Start, End: overlapping.End}
	require.NoError(t, repo.InsertIfNoOverlap(ctx, elsewhere))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	room1, err := repo.List(ctx, "room-1")
	require.NoError(t, err)
	require.Len(t, room1, 2)
	assert.Equal(t, "b-1", room1[0].ID)
	assert.Equal(t, "b-3", room1[1].ID)
}

func TestMemoryBookingRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()
	b := &domain.Booking{ID: "b-1", Resource: "room-1",
		Start: mustTime(t, "2025-05-10T18:00:00Z"), End: mustTime(t, "2025-05-10T19:00:00Z")}
	require.NoError(t, repo.InsertIfNoOverlap(ctx, b))

	deleted, err := repo.Delete(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, "b-1", deleted.ID)

	_, err = repo.Delete(ctx, "b-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The slot is free again once deleted.
	require.NoError(t, repo.InsertIfNoOverlap(ctx, &domain.Booking{ID: "b-2", Resource: "room-1", Start: b.Start, End: b.End}))
}

func TestMemoryBookingRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewMemoryBookingRepository()

	err := repo.InsertIfNoOverlap(ctx, &domain.Booking{ID: "b-1", Resource: "room-1",
		Start: mustTime(t, "2025-05-10T18:00:00Z"), End: mustTime(t, "2025-05-10T19:00:00Z")})
	assert.ErrorIs(t, err, context.Canceled)

	all, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, all, "no partial booking is visible")
}

func TestMemoryBookingRepository_ConcurrentConflictingInserts(t *testing.T) {
	ctx := context.Background()
	start := mustTime(t, "2025-05-10T18:00:00Z")

	for round := 0; round < 50; round++ {
		repo := NewMemoryBookingRepository()
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				offset := time.Duration(i) * 5 * time.Minute
				err := repo.InsertIfNoOverlap(ctx, &domain.Booking{
					ID:       fmt.Sprintf("b-%d", i),
					Resource: "room-1",
					Start:    start.Add(offset),
					End:      start.Add(offset + time.Hour),
				})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errors.Is(err, domain.ErrConflict):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		require.Equal(t, 1, successes, "round %d", round)
		require.Equal(t, 7, conflicts, "round %d", round)

		stored, err := repo.List(ctx, "room-1")
		require.NoError(t, err)
		for i := range stored {
			for j := i + 1; j < len(stored); j++ {
				assert.False(t, interval.Overlaps(interval.Of(stored[i]), interval.Of(stored[j])))
			}
		}
	}
}
