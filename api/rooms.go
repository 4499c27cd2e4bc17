package api

import (
	"net/http"

	"github.com/Domenick1991/roombooking/internal/service/rooms"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RoomHandler struct {
	service rooms.RoomUseCase
	logger  *zap.Logger
}

type roomResponse struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity,omitempty"`
}

func NewRoomHandler(service rooms.RoomUseCase, logger *zap.Logger) *RoomHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomHandler{service: service, logger: logger}
}

func (h *RoomHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:key", h.get)
}

func (h *RoomHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	resp := make([]roomResponse, 0, len(list))
	for _, r := range list {
		resp = append(resp, roomResponse{Key: r.Key, Name: r.Name, Capacity: r.Capacity})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RoomHandler) get(c *gin.Context) {
	room, err := h.service.GetByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, roomResponse{Key: room.Key, Name: room.Name, Capacity: room.Capacity})
}
