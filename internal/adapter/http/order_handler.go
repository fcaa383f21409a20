package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"wello-backend/internal/usecase/order"
)

type OrderHandler struct{ uc *order.Usecase }

func NewOrderHandler(uc *order.Usecase) *OrderHandler { return &OrderHandler{uc: uc} }

type submitOrderReq struct {
	Kind                 string   `json:"kind"                   validate:"required,oneof=lend borrow"`
	OwnerID              string   `json:"owner_id"               validate:"required,hex32"`
	Amount               float64  `json:"amount"                 validate:"required,gt=0,dec2"`
	Currency             string   `json:"currency"               validate:"required,currency"`
	RateBound            float64  `json:"rate_bound"             validate:"required,gt=0,lte=100,dec2"`
	TermDays             int      `json:"term_days"              validate:"required,gte=1,lte=365"`
	RepaymentMethod      string   `json:"repayment_method"       validate:"required,oneof=bullet equal_installment interest_first equal_principal"`
	CollateralRequired   bool     `json:"collateral_required"`
	CollateralRatioPct   float64  `json:"collateral_ratio_pct"   validate:"gte=0,dec2"`
	MinCreditScore       *int     `json:"min_credit_score"       validate:"omitempty,gte=0,lte=100"`
	MinPriorTransactions *int     `json:"min_prior_transactions" validate:"omitempty,gte=0"`
	IndustryPreference   []string `json:"industry_preference"`
	// Optional; zero means submission time plus the default validity window.
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *OrderHandler) SubmitOrder(c echo.Context) error {
	var req submitOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Submit(c.Request().Context(), order.SubmitInput{
		Kind:                 req.Kind,
		OwnerID:              req.OwnerID,
		Amount:               req.Amount,
		Currency:             req.Currency,
		RateBound:            req.RateBound,
		TermDays:             req.TermDays,
		RepaymentMethod:      req.RepaymentMethod,
		CollateralRequired:   req.CollateralRequired,
		CollateralRatioPct:   req.CollateralRatioPct,
		MinCreditScore:       req.MinCreditScore,
		MinPriorTransactions: req.MinPriorTransactions,
		IndustryPreference:   req.IndustryPreference,
		ExpiresAt:            req.ExpiresAt,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("order_id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	dto, err := h.uc.Cancel(c.Request().Context(), c.Param("order_id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *OrderHandler) GetSchedule(c echo.Context) error {
	sched, err := h.uc.Schedule(c.Request().Context(), c.Param("order_id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"order_id":     c.Param("order_id"),
		"installments": sched,
	})
}

func (h *OrderHandler) ListOwnerOrders(c echo.Context) error {
	ownerID := c.Param("owner_id")
	if !reHex32.MatchString(ownerID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "owner_id must be 32-char lowercase hex"})
	}
	dtos, err := h.uc.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"owner_id": ownerID,
		"orders":   dtos,
	})
}

func (h *OrderHandler) ListMarket(c echo.Context) error {
	dtos, err := h.uc.ListMarket(c.Request().Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"orders": dtos})
}
