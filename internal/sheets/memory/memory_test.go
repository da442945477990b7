package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OmKumar-08/advanced-budget-app/internal/core"
)

func TestMemoryStoreAppend(t *testing.T) {
	s := New()
	ref, err := s.Append(context.Background(), &core.Transaction{
		UserID:      1,
		Amount:      decimal.RequireFromString("12.30"),
		Description: "groceries",
		Type:        core.TypeExpense,
		Category:    core.CategoryFood,
		Date:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	if items := s.Items(); len(items) != 1 || items[0].Description != "groceries" {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestMemoryStoreAppendRejectsInvalid(t *testing.T) {
	s := New()
	_, err := s.Append(context.Background(), &core.Transaction{UserID: 1})
	if err == nil {
		t.Fatal("expected validation error for empty transaction")
	}
	if len(s.Items()) != 0 {
		t.Fatal("invalid transaction should not be stored")
	}
}
