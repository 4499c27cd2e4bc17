package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// writeError maps domain errors to responses. Anything unexpected is
// logged and reported with a generic message.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error(), Code: "conflict"})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error(), Code: "validation"})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Message: err.Error(), Code: "not_found"})
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Message: "internal server error", Code: "internal"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{Message: message, Code: "validation"})
}
