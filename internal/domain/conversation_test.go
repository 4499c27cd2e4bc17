package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConversation_State(t *testing.T) {
	var c Conversation
	assert.Equal(t, StateIdle, c.State())

	c.Pending = &Suggestion{Title: "Club Meeting"}
	assert.Equal(t, StateAwaitingConfirmation, c.State())
}

func TestConversation_CloneIsIndependent(t *testing.T) {
	start := time.Date(2025, 5, 10, 14, 0, 0, 0, time.UTC)
	c := Conversation{ID: "s-1", Pending: &Suggestion{Title: "Chess", Start: start, End: start.Add(time.Hour)}}
	c.Append(RoleUser, "hello")

	clone := c.Clone()
	clone.Append(RoleAssistant, "hi")
	clone.Pending.Title = "Go"

	assert.Len(t, c.History, 1)
	assert.Len(t, clone.History, 2)
	assert.Equal(t, "Chess", c.Pending.Title)
}

func TestInvalidf(t *testing.T) {
	err := Invalidf("title is %s", "required")
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "validation error: title is required")
	assert.ErrorIs(t, ErrInvalidInterval, ErrValidation)
	assert.ErrorIs(t, ErrInvalidTimeInput, ErrValidation)
}
