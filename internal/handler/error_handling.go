package handler

import (
	"errors"
	"net/http"

	"narrative-forge/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp errorResponse

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		statusCode = http.StatusNotFound
		errResp = errorResponse{Error: "Story session not found"}
	case errors.Is(err, service.ErrInvalidChoice):
		statusCode = http.StatusBadRequest
		errResp = errorResponse{Error: "Invalid choice index"}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = errorResponse{Error: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
