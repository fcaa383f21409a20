package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"wello-backend/internal/domain/order"
	"wello-backend/internal/domain/profile"
	"wello-backend/internal/domain/session"
)

// domainError maps sentinel errors to HTTP codes; anything unrecognized is a
// 500 with a generic message so internals never leak.
func domainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, profile.ErrNotFound),
		errors.Is(err, session.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, session.ErrCandidateNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, session.ErrSessionAlreadyActive),
		errors.Is(err, session.ErrConflictingAccept),
		errors.Is(err, order.ErrInvalidState),
		errors.Is(err, session.ErrInvalidOrderState),
		errors.Is(err, session.ErrInvalidSessionState):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, order.ErrLimitExceeded),
		errors.Is(err, order.ErrValidation),
		errors.Is(err, profile.ErrValidation),
		errors.Is(err, profile.ErrBadWeights):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
