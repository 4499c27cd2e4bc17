// Package notify tells organizers about booking changes.
package notify

import (
	"context"
	"time"

	"github.com/Domenick1991/roombooking/internal/kafka"
	"go.uber.org/zap"
)

type Sender struct {
	logger *zap.Logger
	loc    *time.Location
}

// NewSender renders times in loc; a nil loc means UTC.
func NewSender(logger *zap.Logger, loc *time.Location) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Sender{logger: logger, loc: loc}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("notify organizer",
		zap.String("event", event.Type),
		zap.String("booking_id", event.BookingID),
		zap.String("title", event.Title),
		zap.String("club", event.ClubName),
		zap.String("room", event.Resource),
		zap.String("start", event.Start.In(s.loc).Format(time.RFC1123)),
		zap.String("end", event.End.In(s.loc).Format(time.RFC1123)))
	return nil
}
