package handler

import (
	"context"
	"errors"
	"net/http"

	"freightledger/internal/model"
	"freightledger/pkg/money"
	"freightledger/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, money.ErrArithmetic):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrInvalidCredentials), errors.Is(err, model.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		msg = "internal server error"
	case http.StatusServiceUnavailable:
		zap.L().Warn("storage timeout", zap.String("path", c.FullPath()), zap.Error(err))
		msg = "storage temporarily unavailable, retry later"
	}
	_ = c.Error(err)
	c.JSON(status, response.Error(msg))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.Error(msg))
}
