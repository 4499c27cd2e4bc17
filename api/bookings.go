package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service booking.BookingUseCase
	logger  *zap.Logger
}

// createBookingRequest also accepts the legacy eventTitle and roomNumber
// field names.
type createBookingRequest struct {
	booking.CreateBookingInput
	EventTitle string `json:"eventTitle"`
	RoomNumber string `json:"roomNumber"`
}

type bookingResponse struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Start      string             `json:"start"`
	End        string             `json:"end"`
	AllDay     bool               `json:"allDay"`
	Resource   string             `json:"resource"`
	ClubName   string             `json:"clubName,omitempty"`
	Purpose    string             `json:"purpose,omitempty"`
	NumGuests  int                `json:"numGuests,omitempty"`
	Color      string             `json:"color,omitempty"`
	Recurrence *domain.Recurrence `json:"recurrence,omitempty"`
	CreatedAt  string             `json:"createdAt,omitempty"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:         b.ID,
		Title:      b.Title,
		Start:      b.Start.UTC().Format(time.RFC3339),
		End:        b.End.UTC().Format(time.RFC3339),
		AllDay:     b.AllDay,
		Resource:   b.Resource,
		ClubName:   b.ClubName,
		Purpose:    b.Purpose,
		NumGuests:  b.NumGuests,
		Color:      b.Color,
		Recurrence: b.Recurrence,
	}
	if !b.CreatedAt.IsZero() {
		resp.CreatedAt = b.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func NewBookingHandler(service booking.BookingUseCase, logger *zap.Logger) *BookingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingHandler{service: service, logger: logger}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.DELETE("/:id", h.delete)
	router.POST("/auto", h.auto)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	input := req.CreateBookingInput
	if input.Title == "" {
		input.Title = req.EventTitle
	}
	if input.Resource == "" {
		input.Resource = req.RoomNumber
	}

	created, err := h.service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.ListBookings(c.Request.Context(), c.Query("resource"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) delete(c *gin.Context) {
	deleted, err := h.service.DeleteBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(deleted))
}

func (h *BookingHandler) auto(c *gin.Context) {
	var req booking.AutoBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	created, err := h.service.AutoBook(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(created))
}
