package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "wello-backend/internal/domain/order"
	profiledomain "wello-backend/internal/domain/profile"
	"wello-backend/internal/domain/uow"
	"wello-backend/internal/testutil/ordermock"
	"wello-backend/internal/testutil/profilemock"
	"wello-backend/internal/testutil/uowmock"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestUsecase(orders *ordermock.Repo, profiles *profilemock.Repo) *Usecase {
	tx := uowmock.Passthrough(uow.Repos{Orders: orders, Profiles: profiles})
	return NewUsecase(orders, profiles, tx, zap.NewNop()).
		WithClock(func() time.Time { return testNow })
}

func lendInput() SubmitInput {
	return SubmitInput{
		Kind:            "lend",
		OwnerID:         "11111111111111111111111111111111",
		Amount:          10_000,
		Currency:        "USDT",
		RateBound:       18,
		TermDays:        90,
		RepaymentMethod: "equal_installment",
	}
}

func TestSubmit_Lend_Success(t *testing.T) {
	var created *domain.Order
	uc := newTestUsecase(&ordermock.Repo{
		CreateFn: func(ctx context.Context, o *domain.Order) error {
			created = o
			return nil
		},
	}, &profilemock.Repo{
		GetByProfileIDFn: func(ctx context.Context, id string) (*profiledomain.Profile, error) {
			t.Fatal("lend orders must not consult the profile store")
			return nil, nil
		},
	})

	dto, err := uc.Submit(context.Background(), lendInput())
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if len(dto.OrderID) != 32 {
		t.Fatalf("OrderID length: %d", len(dto.OrderID))
	}
	if dto.Status != string(domain.StatusPending) {
		t.Fatalf("status=%s", dto.Status)
	}
	if want := testNow.AddDate(0, 0, DefaultValidityDays); !dto.ExpiresAt.Equal(want) {
		t.Fatalf("default expiry %v, want %v", dto.ExpiresAt, want)
	}
	if created == nil {
		t.Fatal("order was never persisted")
	}
}

func TestSubmit_Borrow_RequiresProfile(t *testing.T) {
	uc := newTestUsecase(&ordermock.Repo{
		CreateFn: func(ctx context.Context, o *domain.Order) error {
			t.Fatal("Create must not be called without a borrower profile")
			return nil
		},
	}, &profilemock.Repo{
		GetByProfileIDFn: func(ctx context.Context, id string) (*profiledomain.Profile, error) {
			return nil, gorm.ErrRecordNotFound
		},
	})

	in := lendInput()
	in.Kind = "borrow"
	_, err := uc.Submit(context.Background(), in)
	if !errors.Is(err, profiledomain.ErrNotFound) {
		t.Fatalf("err=%v, want profile.ErrNotFound", err)
	}
}

func TestSubmit_Borrow_LimitEnforced(t *testing.T) {
	// Newcomer tier: zero track record caps the borrower at 5k.
	newcomer := &profiledomain.Profile{
		ProfileID:         "22222222222222222222222222222222",
		OnTimeRatePct:     0,
		TotalTransactions: 0,
	}
	profiles := &profilemock.Repo{
		GetByProfileIDFn: func(ctx context.Context, id string) (*profiledomain.Profile, error) {
			return newcomer, nil
		},
	}

	uc := newTestUsecase(&ordermock.Repo{
		CreateFn: func(ctx context.Context, o *domain.Order) error {
			t.Fatal("Create must not be called above the credit limit")
			return nil
		},
	}, profiles)

	in := lendInput()
	in.Kind = "borrow"
	in.OwnerID = newcomer.ProfileID
	in.Amount = 6_000
	if _, err := uc.Submit(context.Background(), in); !errors.Is(err, domain.ErrLimitExceeded) {
		t.Fatalf("err=%v, want ErrLimitExceeded", err)
	}

	// At or below the tier limit the order goes through.
	uc = newTestUsecase(&ordermock.Repo{
		CreateFn: func(ctx context.Context, o *domain.Order) error { return nil },
	}, profiles)
	in.Amount = 5_000
	if _, err := uc.Submit(context.Background(), in); err != nil {
		t.Fatalf("Submit at limit err: %v", err)
	}
}

func TestSubmit_InvalidInput(t *testing.T) {
	uc := newTestUsecase(&ordermock.Repo{}, &profilemock.Repo{})
	in := lendInput()
	in.Currency = "EUR"
	if _, err := uc.Submit(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err=%v, want ErrValidation for unsupported currency", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	uc := newTestUsecase(&ordermock.Repo{
		GetByOrderIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}, &profilemock.Repo{})

	if _, err := uc.Get(context.Background(), "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestCancel_PendingOnly(t *testing.T) {
	const oid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	stored := &domain.Order{
		OrderID:         oid,
		Kind:            domain.KindLend,
		OwnerID:         "11111111111111111111111111111111",
		Amount:          10_000,
		Currency:        "USDT",
		RateBound:       18,
		TermDays:        90,
		RepaymentMethod: domain.MethodBullet,
		Status:          domain.StatusPending,
		CreatedAt:       testNow.AddDate(0, 0, -1),
		ExpiresAt:       testNow.AddDate(0, 0, 6),
	}
	uc := newTestUsecase(&ordermock.Repo{
		GetByOrderIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
			return stored, nil
		},
		SaveFn: func(ctx context.Context, o *domain.Order) error { return nil },
	}, &profilemock.Repo{})

	dto, err := uc.Cancel(context.Background(), oid)
	if err != nil {
		t.Fatalf("Cancel err: %v", err)
	}
	if dto.Status != string(domain.StatusCancelled) {
		t.Fatalf("status=%s", dto.Status)
	}

	// Second cancel finds a non-pending order.
	if _, err := uc.Cancel(context.Background(), oid); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("err=%v, want ErrInvalidState", err)
	}
}

func TestSchedule_AnchorsOnMatchTime(t *testing.T) {
	matchedAt := testNow.AddDate(0, 0, -3)
	stored := &domain.Order{
		OrderID:         "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Kind:            domain.KindBorrow,
		OwnerID:         "22222222222222222222222222222222",
		Amount:          12_000,
		Currency:        "USDT",
		RateBound:       20,
		TermDays:        60,
		RepaymentMethod: domain.MethodBullet,
		Status:          domain.StatusMatched,
		StatusUpdatedAt: matchedAt,
	}
	uc := newTestUsecase(&ordermock.Repo{
		GetByOrderIDFn: func(ctx context.Context, id string) (*domain.Order, error) {
			return stored, nil
		},
	}, &profilemock.Repo{})

	sched, err := uc.Schedule(context.Background(), stored.OrderID)
	if err != nil {
		t.Fatalf("Schedule err: %v", err)
	}
	if len(sched) != 1 {
		t.Fatalf("installments=%d, want 1", len(sched))
	}
	if want := matchedAt.AddDate(0, 0, 60); !sched[0].DueDate.Equal(want) {
		t.Fatalf("due %v, want %v", sched[0].DueDate, want)
	}

	// Pending orders preview from the current clock instead.
	stored.Status = domain.StatusPending
	sched, err = uc.Schedule(context.Background(), stored.OrderID)
	if err != nil {
		t.Fatalf("Schedule err: %v", err)
	}
	if want := testNow.AddDate(0, 0, 60); !sched[0].DueDate.Equal(want) {
		t.Fatalf("due %v, want %v", sched[0].DueDate, want)
	}
}
