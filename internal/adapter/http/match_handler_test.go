package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	orderDomain "wello-backend/internal/domain/order"
	profileDomain "wello-backend/internal/domain/profile"
	sessionDomain "wello-backend/internal/domain/session"
	"wello-backend/internal/domain/uow"
	"wello-backend/internal/testutil/ordermock"
	"wello-backend/internal/testutil/profilemock"
	"wello-backend/internal/testutil/sessionmock"
	"wello-backend/internal/testutil/uowmock"
	"wello-backend/internal/usecase/matching"
	sessionuc "wello-backend/internal/usecase/session"
)

const (
	borrowOrderID = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	lendOrderID   = "11111111111111111111111111111111"
)

// newMatchHandler wires a manager over map-backed stores holding one pending
// borrow order and one eligible lender.
func newMatchHandler(t *testing.T) *MatchHandler {
	t.Helper()
	now := time.Now().UTC()
	orders := map[string]*orderDomain.Order{}
	sessions := map[string]*sessionDomain.Session{}

	for id, kind := range map[string]orderDomain.Kind{
		borrowOrderID: orderDomain.KindBorrow,
		lendOrderID:   orderDomain.KindLend,
	} {
		rate := 20.0
		if kind == orderDomain.KindLend {
			rate = 18
		}
		orders[id] = &orderDomain.Order{
			OrderID:         id,
			Kind:            kind,
			OwnerID:         "owner-" + id[:4],
			Amount:          10_000,
			Currency:        "USDT",
			RateBound:       rate,
			TermDays:        90,
			RepaymentMethod: orderDomain.MethodBullet,
			Status:          orderDomain.StatusPending,
			CreatedAt:       now.AddDate(0, 0, -1),
			ExpiresAt:       now.AddDate(0, 0, 5),
		}
	}

	orderRepo := &ordermock.Repo{
		GetByOrderIDFn: func(ctx context.Context, id string) (*orderDomain.Order, error) {
			o, ok := orders[id]
			if !ok {
				return nil, gorm.ErrRecordNotFound
			}
			return o, nil
		},
		SaveFn: func(ctx context.Context, o *orderDomain.Order) error {
			orders[o.OrderID] = o
			return nil
		},
		ListOpenByKindFn: func(ctx context.Context, kind orderDomain.Kind, currency string, at time.Time) ([]*orderDomain.Order, error) {
			var out []*orderDomain.Order
			for _, o := range orders {
				if o.Kind == kind && o.Currency == currency && o.Open(at) {
					out = append(out, o)
				}
			}
			return out, nil
		},
	}
	profileRepo := &profilemock.Repo{
		GetByProfileIDsFn: func(ctx context.Context, ids []string) (map[string]*profileDomain.Profile, error) {
			out := map[string]*profileDomain.Profile{}
			for _, id := range ids {
				out[id] = &profileDomain.Profile{
					ProfileID:         id,
					Breakdown:         profileDomain.Breakdown{{Category: "repayment_history", Score: 85, WeightPct: 100}},
					OnTimeRatePct:     95,
					TotalTransactions: 10,
				}
			}
			return out, nil
		},
	}
	sessionRepo := &sessionmock.Repo{
		CreateFn: func(ctx context.Context, s *sessionDomain.Session) error {
			sessions[s.SessionID] = s
			return nil
		},
		SaveFn: func(ctx context.Context, s *sessionDomain.Session) error {
			sessions[s.SessionID] = s
			return nil
		},
		GetBySessionIDFn: func(ctx context.Context, id string) (*sessionDomain.Session, error) {
			s, ok := sessions[id]
			if !ok {
				return nil, gorm.ErrRecordNotFound
			}
			return s, nil
		},
		GetActiveByOrderIDFn: func(ctx context.Context, orderID string) (*sessionDomain.Session, error) {
			for _, s := range sessions {
				if s.OrderID == orderID && !s.State.Terminal() {
					return s, nil
				}
			}
			return nil, gorm.ErrRecordNotFound
		},
	}

	engine, err := matching.NewEngine(matching.DefaultWeights(), 0)
	if err != nil {
		t.Fatalf("NewEngine err: %v", err)
	}
	tx := uowmock.Passthrough(uow.Repos{Orders: orderRepo, Profiles: profileRepo, Sessions: sessionRepo})
	mgr := sessionuc.NewManager(tx, orderRepo, profileRepo, sessionRepo, engine, zap.NewNop())
	return NewMatchHandler(mgr)
}

func TestCreateSession_Created(t *testing.T) {
	e := echo.New()
	h := newMatchHandler(t)

	req := httptest.NewRequest(stdhttp.MethodPost, "/orders/"+borrowOrderID+"/match", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("order_id")
	c.SetParamValues(borrowOrderID)

	if err := h.CreateSession(c); err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}
	var dto sessionuc.SessionDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if dto.State != "presented" || len(dto.Results) != 1 {
		t.Fatalf("unexpected session: %+v", dto)
	}
	if dto.Results[0].OrderID != lendOrderID {
		t.Fatalf("candidate order = %s", dto.Results[0].OrderID)
	}
}

func TestCreateSession_BadOrderID(t *testing.T) {
	e := echo.New()
	h := newMatchHandler(t)

	req := httptest.NewRequest(stdhttp.MethodPost, "/orders/nope/match", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("order_id")
	c.SetParamValues("nope")

	if err := h.CreateSession(c); err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	e := echo.New()
	h := newMatchHandler(t)

	req := httptest.NewRequest(stdhttp.MethodGet, "/sessions/unknown", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("unknown")

	if err := h.GetSession(c); err != nil {
		t.Fatalf("GetSession error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAcceptCandidate_FullFlow(t *testing.T) {
	e := newEchoWithValidator()
	h := newMatchHandler(t)

	// create the session first
	req := httptest.NewRequest(stdhttp.MethodPost, "/orders/"+borrowOrderID+"/match", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("order_id")
	c.SetParamValues(borrowOrderID)
	if err := h.CreateSession(c); err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	var dto sessionuc.SessionDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}

	// invalid candidate id shape is rejected before the manager runs
	req = httptest.NewRequest(stdhttp.MethodPost, "/sessions/"+dto.SessionID+"/accept",
		strings.NewReader(`{"candidate_id":"not-a-uuid"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues(dto.SessionID)
	if err := h.AcceptCandidate(c); err != nil {
		t.Fatalf("AcceptCandidate error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	// accepting the presented candidate succeeds
	req = httptest.NewRequest(stdhttp.MethodPost, "/sessions/"+dto.SessionID+"/accept",
		mustJSON(map[string]string{"candidate_id": dto.Results[0].CandidateID}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues(dto.SessionID)
	if err := h.AcceptCandidate(c); err != nil {
		t.Fatalf("AcceptCandidate error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var res sessionuc.AcceptResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if res.CandidateOrderID != lendOrderID {
		t.Fatalf("candidate order = %s, want %s", res.CandidateOrderID, lendOrderID)
	}

	// rejecting an accepted session is a conflict
	req = httptest.NewRequest(stdhttp.MethodPost, "/sessions/"+dto.SessionID+"/reject", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues(dto.SessionID)
	if err := h.RejectSession(c); err != nil {
		t.Fatalf("RejectSession error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}
