package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	profileDomain "wello-backend/internal/domain/profile"
	"wello-backend/internal/usecase/profile"
)

type ProfileHandler struct{ uc *profile.Usecase }

func NewProfileHandler(uc *profile.Usecase) *ProfileHandler { return &ProfileHandler{uc: uc} }

type breakdownItemReq struct {
	Category  string  `json:"category"   validate:"required"`
	Score     float64 `json:"score"      validate:"gte=0,lte=100"`
	WeightPct float64 `json:"weight_pct" validate:"gt=0,lte=100"`
}

type upsertProfileReq struct {
	DisplayName        string             `json:"display_name"`
	Industry           string             `json:"industry"`
	Breakdown          []breakdownItemReq `json:"credit_score_breakdown"     validate:"required,min=1,dive"`
	OnTimeRatePct      float64            `json:"on_time_repayment_rate_pct" validate:"gte=0,lte=100"`
	TotalTransactions  int                `json:"total_transactions"         validate:"gte=0"`
	CollateralType     string             `json:"collateral_type"`
	CollateralRatioPct float64            `json:"collateral_ratio_pct"       validate:"gte=0,dec2"`
}

func (h *ProfileHandler) UpsertProfile(c echo.Context) error {
	profileID := c.Param("profile_id")
	if !reHex32.MatchString(profileID) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "profile_id must be 32-char lowercase hex"})
	}
	var req upsertProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	breakdown := make([]profileDomain.BreakdownItem, len(req.Breakdown))
	for i, it := range req.Breakdown {
		breakdown[i] = profileDomain.BreakdownItem(it)
	}
	dto, err := h.uc.Upsert(c.Request().Context(), profile.UpsertInput{
		ProfileID:          profileID,
		DisplayName:        req.DisplayName,
		Industry:           req.Industry,
		Breakdown:          breakdown,
		OnTimeRatePct:      req.OnTimeRatePct,
		TotalTransactions:  req.TotalTransactions,
		CollateralType:     req.CollateralType,
		CollateralRatioPct: req.CollateralRatioPct,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("profile_id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
