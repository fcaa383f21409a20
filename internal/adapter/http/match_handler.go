package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"wello-backend/internal/usecase/session"
)

type MatchHandler struct{ mgr *session.Manager }

func NewMatchHandler(mgr *session.Manager) *MatchHandler { return &MatchHandler{mgr: mgr} }

func (h *MatchHandler) CreateSession(c echo.Context) error {
	orderID := c.Param("order_id")
	if !reHex32.MatchString(orderID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "order_id must be 32-char lowercase hex"})
	}
	dto, err := h.mgr.CreateSession(c.Request().Context(), orderID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *MatchHandler) GetSession(c echo.Context) error {
	dto, err := h.mgr.Get(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type acceptReq struct {
	CandidateID string `json:"candidate_id" validate:"required,uuid4"`
}

func (h *MatchHandler) AcceptCandidate(c echo.Context) error {
	var req acceptReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	res, err := h.mgr.Accept(c.Request().Context(), c.Param("session_id"), req.CandidateID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *MatchHandler) RejectSession(c echo.Context) error {
	sessionID := c.Param("session_id")
	if err := h.mgr.Reject(c.Request().Context(), sessionID); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"session_id": sessionID,
		"state":      "rejected",
	})
}
