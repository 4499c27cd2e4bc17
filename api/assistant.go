package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/roombooking/internal/assistant"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AssistantHandler struct {
	service assistant.AssistantUseCase
	logger  *zap.Logger
}

type askResponse struct {
	SessionID  string           `json:"session_id"`
	Reply      string           `json:"reply"`
	State      string           `json:"state"`
	Suggestion *suggestionBody  `json:"suggestion,omitempty"`
	Booking    *bookingResponse `json:"booking,omitempty"`
}

type suggestionBody struct {
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Resource string `json:"resource,omitempty"`
}

func NewAssistantHandler(service assistant.AssistantUseCase, logger *zap.Logger) *AssistantHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantHandler{service: service, logger: logger}
}

func (h *AssistantHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.ask)
	router.DELETE("/:session_id", h.reset)
}

func (h *AssistantHandler) ask(c *gin.Context) {
	var req assistant.AskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	out, err := h.service.Ask(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resp := askResponse{SessionID: out.SessionID, Reply: out.Reply, State: string(out.State)}
	if s := out.Suggestion; s != nil {
		resp.Suggestion = &suggestionBody{
			Title:    s.Title,
			Start:    s.Start.UTC().Format(time.RFC3339),
			End:      s.End.UTC().Format(time.RFC3339),
			Resource: s.Resource,
		}
	}
	if out.Booking != nil {
		b := toBookingResponse(out.Booking)
		resp.Booking = &b
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssistantHandler) reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context(), c.Param("session_id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
