package repository

import (
	"context"

	"github.com/Domenick1991/roombooking/internal/domain"
)

type RoomRepository interface {
	List(ctx context.Context) ([]domain.Room, error)
	GetByKey(ctx context.Context, key string) (*domain.Room, error)
}

// StaticRoomRepository serves the rooms declared in configuration.
type StaticRoomRepository struct {
	rooms []domain.Room
	byKey map[string]int
}

func NewRoomRepository(rooms []domain.Room) *StaticRoomRepository {
	r := &StaticRoomRepository{byKey: make(map[string]int, len(rooms))}
	for _, room := range rooms {
		if _, dup := r.byKey[room.Key]; dup || room.Key == "" {
			continue
		}
		r.byKey[room.Key] = len(r.rooms)
		r.rooms = append(r.rooms, room)
	}
	return r
}

func (r *StaticRoomRepository) List(ctx context.Context) ([]domain.Room, error) {
	return append([]domain.Room(nil), r.rooms...), nil
}

func (r *StaticRoomRepository) GetByKey(ctx context.Context, key string) (*domain.Room, error) {
	i, ok := r.byKey[key]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	room := r.rooms[i]
	return &room, nil
}

var _ RoomRepository = (*StaticRoomRepository)(nil)
