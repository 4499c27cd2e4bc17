package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/timezone"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const apologyReply = "Sorry, I can't reach my planning service right now. Please try again in a moment."

// Committer turns a confirmed suggestion into a stored booking.
type Committer interface {
	CommitSuggestion(ctx context.Context, s domain.Suggestion) (*domain.Booking, error)
}

type BookingLister interface {
	ListBookings(ctx context.Context, resource string) ([]domain.Booking, error)
}

// ContextProvider supplies auxiliary text such as a weather forecast.
type ContextProvider interface {
	Forecast(ctx context.Context) (string, error)
}

type TurnResult struct {
	// Reply is the display text of the assistant turn, without markers.
	Reply      string
	Suggestion *domain.Suggestion
	Booking    *domain.Booking
}

// Engine runs one conversation turn at a time. It keeps no per-session
// state: every call takes a conversation and returns the next one.
type Engine struct {
	advisor    Advisor
	extractor  *Extractor
	matcher    *Matcher
	committer  Committer
	bookings   BookingLister
	weather    ContextProvider
	normalizer *timezone.Normalizer
	maxHistory int
	logger     *zap.Logger
	now        func() time.Time
}

type EngineOption func(*Engine)

func WithContextProvider(p ContextProvider) EngineOption {
	return func(e *Engine) {
		e.weather = p
	}
}

// WithMaxHistory bounds how many prior turns are replayed to the advisor.
func WithMaxHistory(n int) EngineOption {
	return func(e *Engine) {
		e.maxHistory = n
	}
}

func WithEngineLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

func NewEngine(
	advisor Advisor,
	extractor *Extractor,
	matcher *Matcher,
	committer Committer,
	bookings BookingLister,
	normalizer *timezone.Normalizer,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		advisor:    advisor,
		extractor:  extractor,
		matcher:    matcher,
		committer:  committer,
		bookings:   bookings,
		normalizer: normalizer,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Turn processes message against conv. A pending suggestion is committed
// when message confirms it and is discarded otherwise; either way it never
// survives the turn unless the advisor proposes a new one. The input
// conversation is not modified.
func (e *Engine) Turn(ctx context.Context, conv domain.Conversation, message string) (domain.Conversation, *TurnResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return conv, nil, domain.Invalidf("message is required")
	}

	next := conv.Clone()
	pending := next.Pending
	next.Pending = nil
	next.Append(domain.RoleUser, message)

	if pending != nil && e.matcher.IsConfirmation(message) {
		result := e.commit(ctx, *pending)
		next.Append(domain.RoleAssistant, result.Reply)
		return next, result, nil
	}

	result, stored := e.ask(ctx, next.History[:len(next.History)-1], message)
	next.Append(domain.RoleAssistant, stored)
	next.Pending = result.Suggestion
	return next, result, nil
}

func (e *Engine) commit(ctx context.Context, s domain.Suggestion) *TurnResult {
	booking, err := e.committer.CommitSuggestion(ctx, s)
	if err != nil {
		e.logger.Info("suggestion commit failed", zap.String("title", s.Title), zap.Error(err))
		return &TurnResult{Reply: fmt.Sprintf("Sorry, I couldn't book %q: %s. Ask me for another time and I'll suggest a new slot.", s.Title, failureReason(err))}
	}
	return &TurnResult{
		Reply: fmt.Sprintf("Done! %q is booked in %s from %s to %s.",
			booking.Title, booking.Resource,
			e.normalizer.Format(booking.Start, ""), e.normalizer.Format(booking.End, "")),
		Booking: booking,
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return "that slot is already taken"
	case errors.Is(err, domain.ErrValidation):
		return err.Error()
	default:
		return "something went wrong on our side"
	}
}

// ask forwards the message to the advisor. It returns the result and the
// text to store in history, which keeps the proposal marker so the advisor
// sees what it offered on later turns.
func (e *Engine) ask(ctx context.Context, history []domain.Turn, message string) (*TurnResult, string) {
	req := AdviceRequest{History: e.window(history), Message: message}

	// A failed lookup leaves its context empty. The plain group keeps one
	// failure from canceling the other lookup.
	var g errgroup.Group
	g.Go(func() error {
		bookings, err := e.bookingContext(ctx)
		if err != nil {
			return fmt.Errorf("booking context: %w", err)
		}
		req.BookingContext = bookings
		return nil
	})
	g.Go(func() error {
		forecast, err := e.auxiliaryContext(ctx)
		if err != nil {
			return fmt.Errorf("weather context: %w", err)
		}
		req.AuxiliaryContext = forecast
		return nil
	})
	if err := g.Wait(); err != nil {
		e.logger.Warn("assistant context degraded", zap.Error(err))
	}

	advice, err := e.advisor.Advise(ctx, req)
	if err != nil {
		e.logger.Warn("advisor unavailable", zap.Error(err))
		return &TurnResult{Reply: apologyReply}, apologyReply
	}

	suggestion := advice.Proposal
	if suggestion == nil {
		suggestion = e.extractor.Extract(advice.Text)
	}
	display := Strip(advice.Text)
	if suggestion == nil {
		return &TurnResult{Reply: display}, display
	}
	if display == "" {
		display = fmt.Sprintf("How about %q from %s to %s? Reply \"yes\" to book it.",
			suggestion.Title, e.normalizer.Format(suggestion.Start, ""), e.normalizer.Format(suggestion.End, ""))
	}
	return &TurnResult{Reply: display, Suggestion: suggestion}, Embed(display, *suggestion)
}

func (e *Engine) window(history []domain.Turn) []domain.Turn {
	if e.maxHistory > 0 && len(history) > e.maxHistory {
		history = history[len(history)-e.maxHistory:]
	}
	return append([]domain.Turn(nil), history...)
}

func (e *Engine) bookingContext(ctx context.Context) (string, error) {
	if e.bookings == nil {
		return "", nil
	}
	bookings, err := e.bookings.ListBookings(ctx, "")
	if err != nil {
		return "", err
	}
	now := e.now()
	var sb strings.Builder
	for _, b := range bookings {
		if !b.End.After(now) {
			continue
		}
		fmt.Fprintf(&sb, "- %s in %s: %s to %s\n", b.Title, b.Resource,
			e.normalizer.Format(b.Start, ""), e.normalizer.Format(b.End, ""))
	}
	if sb.Len() == 0 {
		return "No upcoming bookings.", nil
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (e *Engine) auxiliaryContext(ctx context.Context) (string, error) {
	if e.weather == nil {
		return "", nil
	}
	return e.weather.Forecast(ctx)
}
