// Package split computes per-participant shares of a total amount.
//
// Shares are rounded HALF_UP to money scale and then reconciled against the
// total: any rounding remainder is distributed in minor units across the
// participants in their given order, so the shares always sum to the total
// exactly.
package split

import (
	"github.com/shopspring/decimal"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

var one = decimal.NewFromInt(1)

// ComputeShares splits total across participants. When weights is non-empty
// every weight must be non-negative and the weights must sum to exactly 1;
// participants without a weight receive a zero share. Without weights the
// total is split equally. Participant order determines who absorbs the
// rounding remainder, so callers must pass a stable order.
func ComputeShares(total decimal.Decimal, participants []int64, weights map[int64]decimal.Decimal) (map[int64]decimal.Decimal, error) {
	if len(participants) == 0 {
		return nil, &core.InvalidSplitError{Reason: "no participants"}
	}
	if !total.IsPositive() {
		return nil, &core.InvalidSplitError{Reason: "total must be positive"}
	}
	seen := make(map[int64]bool, len(participants))
	for _, p := range participants {
		if seen[p] {
			return nil, &core.InvalidSplitError{Reason: "duplicate participant"}
		}
		seen[p] = true
	}

	shares := make(map[int64]decimal.Decimal, len(participants))
	if len(weights) > 0 {
		sum := decimal.Zero
		for _, w := range weights {
			if w.IsNegative() {
				return nil, &core.InvalidSplitError{Reason: "negative weight"}
			}
			sum = sum.Add(w)
		}
		if !sum.Equal(one) {
			return nil, &core.InvalidSplitError{Reason: "weights must sum to 1"}
		}
		for _, p := range participants {
			shares[p] = core.RoundMoney(weights[p].Mul(total))
		}
	} else {
		each := core.RoundMoney(total.Div(decimal.NewFromInt(int64(len(participants)))))
		for _, p := range participants {
			shares[p] = each
		}
	}

	distributeRemainder(total, participants, shares)
	return shares, nil
}

// distributeRemainder closes the gap between the rounded shares and the
// total, one minor unit at a time, in participant order. Zero shares are
// skipped so a zero-weight participant never owes a stray cent.
func distributeRemainder(total decimal.Decimal, participants []int64, shares map[int64]decimal.Decimal) {
	sum := decimal.Zero
	for _, p := range participants {
		sum = sum.Add(shares[p])
	}
	delta := total.Sub(sum)
	step := core.MinorUnit
	if delta.IsNegative() {
		step = step.Neg()
	}
	skipped := 0
	for i := 0; !delta.IsZero(); i = (i + 1) % len(participants) {
		p := participants[i]
		skip := shares[p].IsZero()
		if step.IsNegative() {
			skip = shares[p].LessThan(core.MinorUnit)
		}
		// After a full cycle of skips (every share zero) the remainder
		// goes to whoever is next; value must be conserved regardless.
		if skip && skipped < len(participants) {
			skipped++
			continue
		}
		skipped = 0
		shares[p] = shares[p].Add(step)
		delta = delta.Sub(step)
	}
}
