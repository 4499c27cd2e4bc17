package repository

import (
	"context"
	"testing"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticRoomRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRoomRepository([]domain.Room{
		{Key: "room-1", Name: "Room 1", Capacity: 10},
		{Key: "room-2", Name: "Room 2"},
		{Key: "room-1", Name: "Duplicate"},
		{Name: "No key"},
	})

	rooms, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)

	room, err := repo.GetByKey(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, "Room 1", room.Name)

	_, err = repo.GetByKey(ctx, "room-9")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}
