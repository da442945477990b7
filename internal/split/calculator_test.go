package split

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sumShares(participants []int64, shares map[int64]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range participants {
		sum = sum.Add(shares[p])
	}
	return sum
}

func TestComputeShares_EqualSplit(t *testing.T) {
	participants := []int64{1, 2, 3}
	shares, err := ComputeShares(dec("100.00"), participants, nil)
	if err != nil {
		t.Fatalf("ComputeShares: %v", err)
	}

	// 100/3 rounds to 33.33; the first participant absorbs the extra cent.
	if !shares[1].Equal(dec("33.34")) {
		t.Errorf("shares[1] = %s, want 33.34", shares[1])
	}
	if !shares[2].Equal(dec("33.33")) || !shares[3].Equal(dec("33.33")) {
		t.Errorf("shares = %v, want 33.33 for participants 2 and 3", shares)
	}
	if sum := sumShares(participants, shares); !sum.Equal(dec("100.00")) {
		t.Errorf("shares sum = %s, want 100.00", sum)
	}
}

func TestComputeShares_Conservation(t *testing.T) {
	cases := []struct {
		total string
		n     int
	}{
		{"0.01", 2},
		{"0.01", 7},
		{"0.05", 3},
		{"1.00", 3},
		{"99.99", 7},
		{"1234.56", 11},
	}
	for _, tc := range cases {
		participants := make([]int64, tc.n)
		for i := range participants {
			participants[i] = int64(i + 1)
		}
		total := dec(tc.total)
		shares, err := ComputeShares(total, participants, nil)
		if err != nil {
			t.Fatalf("ComputeShares(%s, %d): %v", tc.total, tc.n, err)
		}
		if sum := sumShares(participants, shares); !sum.Equal(total) {
			t.Errorf("ComputeShares(%s, %d): sum = %s, want %s", tc.total, tc.n, sum, total)
		}
		for p, share := range shares {
			if share.IsNegative() {
				t.Errorf("ComputeShares(%s, %d): participant %d got negative share %s", tc.total, tc.n, p, share)
			}
		}
	}
}

func TestComputeShares_Fairness(t *testing.T) {
	// Shares of an equal split never differ by more than one cent.
	participants := []int64{1, 2, 3, 4, 5, 6, 7}
	shares, err := ComputeShares(dec("100.00"), participants, nil)
	if err != nil {
		t.Fatalf("ComputeShares: %v", err)
	}
	min, max := shares[1], shares[1]
	for _, s := range shares {
		if s.LessThan(min) {
			min = s
		}
		if s.GreaterThan(max) {
			max = s
		}
	}
	if max.Sub(min).GreaterThan(core.MinorUnit) {
		t.Errorf("share spread = %s, want at most one cent", max.Sub(min))
	}
}

func TestComputeShares_Weighted(t *testing.T) {
	participants := []int64{1, 2, 3}
	shares, err := ComputeShares(dec("200.00"), participants, map[int64]decimal.Decimal{
		1: dec("0.5"),
		2: dec("0.3"),
		3: dec("0.2"),
	})
	if err != nil {
		t.Fatalf("ComputeShares: %v", err)
	}
	want := map[int64]string{1: "100.00", 2: "60.00", 3: "40.00"}
	for p, w := range want {
		if !shares[p].Equal(dec(w)) {
			t.Errorf("shares[%d] = %s, want %s", p, shares[p], w)
		}
	}
}

func TestComputeShares_ZeroWeightNeverOwesRemainder(t *testing.T) {
	participants := []int64{1, 2, 3}
	shares, err := ComputeShares(dec("0.05"), participants, map[int64]decimal.Decimal{
		1: dec("0.5"),
		2: dec("0.5"),
	})
	if err != nil {
		t.Fatalf("ComputeShares: %v", err)
	}
	if !shares[3].IsZero() {
		t.Errorf("zero-weight participant owes %s", shares[3])
	}
	if sum := sumShares(participants, shares); !sum.Equal(dec("0.05")) {
		t.Errorf("shares sum = %s, want 0.05", sum)
	}
}

func TestComputeShares_Rejections(t *testing.T) {
	cases := []struct {
		name         string
		total        string
		participants []int64
		weights      map[int64]decimal.Decimal
	}{
		{"no participants", "10.00", nil, nil},
		{"zero total", "0", []int64{1, 2}, nil},
		{"negative total", "-5.00", []int64{1, 2}, nil},
		{"duplicate participant", "10.00", []int64{1, 1}, nil},
		{"negative weight", "10.00", []int64{1, 2}, map[int64]decimal.Decimal{1: dec("-0.5"), 2: dec("1.5")}},
		{"weights under 1", "10.00", []int64{1, 2}, map[int64]decimal.Decimal{1: dec("0.4"), 2: dec("0.4")}},
		{"weights over 1", "10.00", []int64{1, 2}, map[int64]decimal.Decimal{1: dec("0.6"), 2: dec("0.6")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var splitErr *core.InvalidSplitError
			if _, err := ComputeShares(dec(tc.total), tc.participants, tc.weights); !errors.As(err, &splitErr) {
				t.Errorf("err = %v, want InvalidSplitError", err)
			}
		})
	}
}
