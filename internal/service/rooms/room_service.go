package rooms

import (
	"context"
	"strings"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository"
)

type RoomUseCase interface {
	List(ctx context.Context) ([]domain.Room, error)
	GetByKey(ctx context.Context, key string) (*domain.Room, error)
}

type RoomService struct {
	repo repository.RoomRepository
}

func NewRoomService(repo repository.RoomRepository) *RoomService {
	return &RoomService{repo: repo}
}

func (s *RoomService) List(ctx context.Context) ([]domain.Room, error) {
	return s.repo.List(ctx)
}

func (s *RoomService) GetByKey(ctx context.Context, key string) (*domain.Room, error) {
	return s.repo.GetByKey(ctx, strings.TrimSpace(key))
}

var _ RoomUseCase = (*RoomService)(nil)
