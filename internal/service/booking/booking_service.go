package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/interval"
	"github.com/Domenick1991/roombooking/internal/kafka"
	"github.com/Domenick1991/roombooking/internal/repository"
	"github.com/Domenick1991/roombooking/internal/timezone"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	ListBookings(ctx context.Context, resource string) ([]domain.Booking, error)
	DeleteBooking(ctx context.Context, id string) (*domain.Booking, error)
	CommitSuggestion(ctx context.Context, s domain.Suggestion) (*domain.Booking, error)
	AutoBook(ctx context.Context, input AutoBookingInput) (*domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	rooms              repository.RoomRepository
	normalizer         *timezone.Normalizer
	defaultResource    string
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	logger             *zap.Logger
	newID              func() string
}

// CreateBookingInput is a direct submission. Start and End are RFC 3339
// instants or wall-clock times in TimeZone; with AllDay they are dates and
// End, which is exclusive, defaults to the day after Start.
type CreateBookingInput struct {
	Title      string             `json:"title"`
	Start      string             `json:"start"`
	End        string             `json:"end"`
	TimeZone   string             `json:"timeZone"`
	AllDay     bool               `json:"allDay"`
	Resource   string             `json:"resource"`
	ClubName   string             `json:"clubName"`
	Purpose    string             `json:"purpose"`
	NumGuests  int                `json:"numGuests"`
	Color      string             `json:"color"`
	Recurrence *domain.Recurrence `json:"recurrence"`
}

type BookingServiceOption func(*BookingService)

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithLogger(logger *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.logger = logger
	}
}

// NewBookingService builds the service. An empty resource on input is
// replaced with defaultResource; when rooms is non-empty, unknown rooms are
// rejected.
func NewBookingService(
	bookings repository.BookingRepository,
	rooms repository.RoomRepository,
	normalizer *timezone.Normalizer,
	defaultResource string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:        bookings,
		rooms:           rooms,
		normalizer:      normalizer,
		defaultResource: defaultResource,
		logger:          zap.NewNop(),
		newID:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.Invalidf("title is required")
	}
	if input.NumGuests < 0 {
		return nil, domain.Invalidf("numGuests must not be negative")
	}
	if err := validateRecurrence(input.Recurrence); err != nil {
		return nil, err
	}

	start, end, err := s.resolveTimes(input)
	if err != nil {
		return nil, err
	}
	room, err := s.resolveRoom(ctx, input.Resource)
	if err != nil {
		return nil, err
	}
	if room != nil && room.Capacity > 0 && input.NumGuests > room.Capacity {
		return nil, domain.Invalidf("room %s holds at most %d guests", room.Key, room.Capacity)
	}

	booking := &domain.Booking{
		Title:      title,
		Start:      start,
		End:        end,
		AllDay:     input.AllDay,
		Resource:   s.resourceKey(input.Resource, room),
		ClubName:   strings.TrimSpace(input.ClubName),
		Purpose:    strings.TrimSpace(input.Purpose),
		NumGuests:  input.NumGuests,
		Color:      input.Color,
		Recurrence: input.Recurrence,
	}
	if err := s.insert(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, resource string) ([]domain.Booking, error) {
	bookings, err := s.bookings.List(ctx, strings.TrimSpace(resource))
	if err != nil {
		return nil, s.storeError("list bookings", err)
	}
	return bookings, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, id string) (*domain.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.Invalidf("id is required")
	}
	deleted, err := s.bookings.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, s.storeError("delete booking", err)
	}
	s.publish(ctx, kafka.EventBookingDeleted, deleted)
	return deleted, nil
}

func (s *BookingService) resolveTimes(input CreateBookingInput) (time.Time, time.Time, error) {
	if !input.AllDay {
		start, err := s.normalizer.ParseInstant(input.Start, input.TimeZone)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err := s.normalizer.ParseInstant(input.End, input.TimeZone)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start, end, nil
	}

	start, err := s.normalizer.StartOfDay(datePart(input.Start), input.TimeZone)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if strings.TrimSpace(input.End) == "" {
		end, err := s.normalizer.NextDay(start, input.TimeZone)
		return start, end, err
	}
	end, err := s.normalizer.StartOfDay(datePart(input.End), input.TimeZone)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// datePart keeps the calendar date of "2006-01-02" or "2006-01-02T...".
func datePart(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > len(timezone.DateLayout) && (value[10] == 'T' || value[10] == ' ') {
		return value[:10]
	}
	return value
}

func validateRecurrence(r *domain.Recurrence) error {
	if r == nil {
		return nil
	}
	for _, d := range r.DaysOfWeek {
		if d < 0 || d > 6 {
			return domain.Invalidf("recurrence day %d is not in 0..6", d)
		}
	}
	return nil
}

// resolveRoom returns the catalogue entry for key, or nil when no
// catalogue is configured.
func (s *BookingService) resolveRoom(ctx context.Context, key string) (*domain.Room, error) {
	if s.rooms == nil {
		return nil, nil
	}
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, s.storeError("list rooms", err)
	}
	if len(rooms) == 0 {
		return nil, nil
	}
	key = s.resourceKey(key, nil)
	room, err := s.rooms.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return nil, domain.Invalidf("unknown room %q", key)
		}
		return nil, s.storeError("get room", err)
	}
	return room, nil
}

func (s *BookingService) resourceKey(key string, room *domain.Room) string {
	if room != nil {
		return room.Key
	}
	if key = strings.TrimSpace(key); key != "" {
		return key
	}
	return s.defaultResource
}

// insert validates the interval and hands the booking to the store's
// atomic check-and-insert, which alone decides conflicts.
func (s *BookingService) insert(ctx context.Context, booking *domain.Booking) error {
	if err := interval.Validate(interval.Of(*booking)); err != nil {
		return err
	}
	booking.ID = s.newID()

	if err := s.bookings.InsertIfNoOverlap(ctx, booking); err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrValidation):
			return err
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		}
		return s.storeError("insert booking", err)
	}

	s.logger.Info("booking created",
		zap.String("id", booking.ID),
		zap.String("resource", booking.Resource),
		zap.Time("start", booking.Start),
		zap.Time("end", booking.End))
	s.publish(ctx, kafka.EventBookingCreated, booking)
	return nil
}

func (s *BookingService) storeError(op string, err error) error {
	s.logger.Error(op, zap.Error(err))
	return fmt.Errorf("%w: %s: %v", domain.ErrStore, op, err)
}

// publish is best effort: a failed event never undoes the commit.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		Title:      booking.Title,
		Resource:   booking.Resource,
		Start:      booking.Start,
		End:        booking.End,
		AllDay:     booking.AllDay,
		ClubName:   booking.ClubName,
		NumGuests:  booking.NumGuests,
		OccurredAt: time.Now().UTC(),
	}
	topics := []string{s.bookingTopic}
	if s.notificationsTopic != "" {
		topics = append(topics, s.notificationsTopic)
	}
	for _, topic := range topics {
		if err := s.producer.Publish(ctx, topic, booking.ID, event); err != nil {
			s.logger.Warn("failed to publish event",
				zap.String("type", eventType),
				zap.String("topic", topic),
				zap.String("booking_id", booking.ID),
				zap.Error(err))
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
