package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/roombooking/config"
	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const proposeBookingFunc = "propose_booking"

const systemInstruction = `You are Sunny, a friendly assistant for a club room booking calendar.
Help the user pick a good time for their event using the existing bookings and the weather forecast you are given.
Never propose a slot that overlaps an existing booking in the same room.
When you recommend one concrete slot, call propose_booking with ISO-8601 start and end times and tell the user to reply "yes" to book it.
Never claim a booking was made; the user has to confirm first.`

var proposeBookingTool = &genai.Tool{
	FunctionDeclarations: []*genai.FunctionDeclaration{{
		Name:        proposeBookingFunc,
		Description: "Propose a single booking slot for the user to confirm.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":    {Type: genai.TypeString, Description: "Event title"},
				"start":    {Type: genai.TypeString, Description: "Start time, ISO-8601"},
				"end":      {Type: genai.TypeString, Description: "End time, ISO-8601"},
				"resource": {Type: genai.TypeString, Description: "Room key, optional"},
			},
			Required: []string{"title", "start", "end"},
		},
	}},
}

// GeminiAdvisor generates replies with the Gemini chat API.
type GeminiAdvisor struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	extractor *Extractor
	timeout   time.Duration
	logger    *zap.Logger
}

func NewGeminiAdvisor(ctx context.Context, cfg config.AssistantConfig, extractor *Extractor, logger *zap.Logger) (*GeminiAdvisor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}
	model.Tools = []*genai.Tool{proposeBookingTool}

	return &GeminiAdvisor{
		client:    client,
		model:     model,
		extractor: extractor,
		timeout:   cfg.Timeout(),
		logger:    logger,
	}, nil
}

func (g *GeminiAdvisor) Close() error {
	return g.client.Close()
}

func (g *GeminiAdvisor) Advise(ctx context.Context, req AdviceRequest) (*Advice, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cs := g.model.StartChat()
	cs.History = toContents(req.History)

	resp, err := cs.SendMessage(ctx, genai.Text(composePrompt(req)))
	if err != nil {
		g.logger.Warn("gemini request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: gemini: %v", domain.ErrUpstreamUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: gemini returned no candidates", domain.ErrUpstreamUnavailable)
	}

	advice := &Advice{}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			sb.WriteString(string(p))
		case genai.FunctionCall:
			if p.Name == proposeBookingFunc && advice.Proposal == nil {
				advice.Proposal = g.extractor.FromArgs(p.Args)
			}
		}
	}
	advice.Text = strings.TrimSpace(sb.String())
	return advice, nil
}

// toContents maps turns to chat history. Gemini expects the history to
// open with a user turn, so leading assistant turns such as the greeting
// are dropped.
func toContents(turns []domain.Turn) []*genai.Content {
	var out []*genai.Content
	for _, t := range turns {
		role := "user"
		if t.Role == domain.RoleAssistant {
			if len(out) == 0 {
				continue
			}
			role = "model"
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(t.Text)}})
	}
	return out
}

func composePrompt(req AdviceRequest) string {
	var sb strings.Builder
	if req.BookingContext != "" {
		sb.WriteString("Existing bookings:\n")
		sb.WriteString(req.BookingContext)
		sb.WriteString("\n\n")
	}
	if req.AuxiliaryContext != "" {
		sb.WriteString("Weather forecast:\n")
		sb.WriteString(req.AuxiliaryContext)
		sb.WriteString("\n\n")
	}
	sb.WriteString("User: ")
	sb.WriteString(req.Message)
	return sb.String()
}
