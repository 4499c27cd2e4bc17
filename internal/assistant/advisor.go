package assistant

import (
	"context"

	"github.com/Domenick1991/roombooking/internal/domain"
)

type AdviceRequest struct {
	// History holds the prior turns, oldest first, without Message.
	History          []domain.Turn
	Message          string
	BookingContext   string
	AuxiliaryContext string
}

// Advice is a generated reply. Proposal is set when the generator returned
// a structured booking proposal alongside the text.
type Advice struct {
	Text     string
	Proposal *domain.Suggestion
}

type Advisor interface {
	Advise(ctx context.Context, req AdviceRequest) (*Advice, error)
}

// UnavailableAdvisor stands in when no generator is configured.
type UnavailableAdvisor struct{}

func (UnavailableAdvisor) Advise(context.Context, AdviceRequest) (*Advice, error) {
	return nil, domain.ErrUpstreamUnavailable
}
