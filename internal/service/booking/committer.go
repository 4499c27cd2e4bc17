package booking

import (
	"context"
	"strings"

	"github.com/Domenick1991/roombooking/internal/domain"
)

// AutoBookingInput is a suggestion submitted directly over HTTP. Times
// without an offset are read in TimeZone.
type AutoBookingInput struct {
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Resource string `json:"resource"`
	TimeZone string `json:"timeZone"`
}

// CommitSuggestion stores a confirmed suggestion. It creates exactly one
// booking or fails with a validation, conflict or store error and leaves
// the store unchanged.
func (s *BookingService) CommitSuggestion(ctx context.Context, sg domain.Suggestion) (*domain.Booking, error) {
	title := strings.TrimSpace(sg.Title)
	if title == "" {
		return nil, domain.Invalidf("title is required")
	}
	room, err := s.resolveRoom(ctx, sg.Resource)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		Title:    title,
		Start:    sg.Start.UTC(),
		End:      sg.End.UTC(),
		Resource: s.resourceKey(sg.Resource, room),
	}
	if err := s.insert(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) AutoBook(ctx context.Context, input AutoBookingInput) (*domain.Booking, error) {
	start, err := s.normalizer.ParseInstant(input.Start, input.TimeZone)
	if err != nil {
		return nil, err
	}
	end, err := s.normalizer.ParseInstant(input.End, input.TimeZone)
	if err != nil {
		return nil, err
	}
	return s.CommitSuggestion(ctx, domain.Suggestion{
		Title:    input.Title,
		Start:    start,
		End:      end,
		Resource: input.Resource,
	})
}
