package services

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
	"github.com/OmKumar-08/advanced-budget-app/internal/storage"
)

var percentBase = decimal.NewFromInt(100)

// InvestmentService tracks invested amounts and revalues them over time.
type InvestmentService struct {
	store storage.Store
	clock core.Clock
}

func NewInvestmentService(store storage.Store, clock core.Clock) *InvestmentService {
	return &InvestmentService{store: store, clock: clock}
}

// Create registers an investment in ACTIVE. The initial valuation equals
// the invested amount, so returns start at zero.
func (s *InvestmentService) Create(ctx context.Context, inv *core.Investment) (*core.Investment, error) {
	if inv.UserID == 0 {
		return nil, &core.InvalidArgumentError{Reason: "investment requires an owner"}
	}
	if inv.Name == "" {
		return nil, core.ErrEmptyDescription
	}
	if err := core.ValidateAmount(inv.InvestedAmount); err != nil {
		return nil, err
	}
	if _, err := s.store.Users().Get(ctx, inv.UserID); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	inv.Status = core.InvestmentActive
	inv.CurrentValue = inv.InvestedAmount
	inv.ReturnAmount = decimal.Zero
	inv.ReturnPercentage = decimal.Zero
	if inv.InvestmentDate.IsZero() {
		inv.InvestmentDate = now
	}
	inv.CreatedAt, inv.UpdatedAt = now, now
	if err := s.store.Investments().Save(ctx, inv); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Created investment",
		"investment_id", inv.ID,
		"user_id", inv.UserID,
		"amount", inv.InvestedAmount.StringFixed(2))
	return inv, nil
}

// UpdateValuation records a new market value and recomputes the return
// figures. The percentage is rounded to cents and guarded against a zero
// invested amount.
func (s *InvestmentService) UpdateValuation(ctx context.Context, id int64, currentValue decimal.Decimal) (*core.Investment, error) {
	if currentValue.IsNegative() {
		return nil, &core.InvalidArgumentError{Reason: "valuation cannot be negative"}
	}
	var out *core.Investment
	err := s.store.InTx(ctx, func(st storage.Store) error {
		inv, err := st.Investments().Get(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != core.InvestmentActive && inv.Status != core.InvestmentMatured {
			return &core.IllegalStateError{Reason: "investment " + strconv.FormatInt(id, 10) + " is " + string(inv.Status)}
		}
		now := s.clock.Now()
		inv.CurrentValue = currentValue
		inv.ReturnAmount = currentValue.Sub(inv.InvestedAmount)
		if inv.InvestedAmount.IsPositive() {
			inv.ReturnPercentage = core.RoundMoney(inv.ReturnAmount.Mul(percentBase).Div(inv.InvestedAmount))
		} else {
			inv.ReturnPercentage = decimal.Zero
		}
		inv.LastValuationDate = now
		inv.UpdatedAt = now
		if err := st.Investments().Save(ctx, inv); err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close moves an investment to SOLD or CANCELLED.
func (s *InvestmentService) Close(ctx context.Context, id int64, status core.InvestmentStatus) (*core.Investment, error) {
	if status != core.InvestmentSold && status != core.InvestmentCancelled {
		return nil, &core.InvalidArgumentError{Reason: "close requires SOLD or CANCELLED"}
	}
	var out *core.Investment
	err := s.store.InTx(ctx, func(st storage.Store) error {
		inv, err := st.Investments().Get(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status == core.InvestmentSold || inv.Status == core.InvestmentCancelled {
			return &core.IllegalStateError{Reason: "investment " + strconv.FormatInt(id, 10) + " is already " + string(inv.Status)}
		}
		inv.Status = status
		inv.UpdatedAt = s.clock.Now()
		if err := st.Investments().Save(ctx, inv); err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Age marks ACTIVE investments past their maturity date as MATURED.
// Investments without a maturity date never mature.
func (s *InvestmentService) Age(ctx context.Context) (int, error) {
	now := s.clock.Now()
	matured, err := s.store.Investments().ActiveMatured(ctx, now)
	if err != nil {
		return 0, err
	}

	aged := 0
	for i := range matured {
		inv := matured[i]
		if inv.Status != core.InvestmentActive || inv.MaturityDate.IsZero() {
			continue
		}
		inv.Status = core.InvestmentMatured
		inv.UpdatedAt = now
		if err := s.store.Investments().Save(ctx, &inv); err != nil {
			slog.ErrorContext(ctx, "Failed to mature investment",
				"investment_id", inv.ID,
				"error", err)
			continue
		}
		aged++
	}
	if aged > 0 {
		slog.InfoContext(ctx, "Matured investments", "count", aged)
	}
	return aged, nil
}

func (s *InvestmentService) Get(ctx context.Context, id int64) (*core.Investment, error) {
	return s.store.Investments().Get(ctx, id)
}

func (s *InvestmentService) ByUser(ctx context.Context, userID int64) ([]core.Investment, error) {
	return s.store.Investments().ByUser(ctx, userID)
}
