package assistant

import (
	"context"
	"testing"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToContents_DropsLeadingAssistantTurns(t *testing.T) {
	contents := toContents([]domain.Turn{
		{Role: domain.RoleAssistant, Text: "greeting"},
		{Role: domain.RoleUser, Text: "hi"},
		{Role: domain.RoleAssistant, Text: "hello"},
	})

	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, []genai.Part{genai.Text("hello")}, contents[1].Parts)
}

func TestComposePrompt(t *testing.T) {
	got := composePrompt(AdviceRequest{
		Message:          "when?",
		BookingContext:   "- Chess in main",
		AuxiliaryContext: "sunny",
	})
	assert.Equal(t, "Existing bookings:\n- Chess in main\n\nWeather forecast:\nsunny\n\nUser: when?", got)

	assert.Equal(t, "User: hi", composePrompt(AdviceRequest{Message: "hi"}))
}

func TestUnavailableAdvisor(t *testing.T) {
	_, err := UnavailableAdvisor{}.Advise(context.Background(), AdviceRequest{})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
