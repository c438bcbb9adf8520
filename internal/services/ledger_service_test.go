package services

import (
	"context"
	"errors"
	"testing"

	"nozze/internal/backend"
	"nozze/internal/core"
	"nozze/internal/ledger"
)

func newTestService() *LedgerService {
	return NewLedgerService(ledger.New(), backend.NewMemoryStore(), nil)
}

func TestCreateAndFetchExpense(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	e := core.NewPaidExpense("studio shoot", core.Money{Units: 2_000_000}, core.CategorySnap,
		core.NewDate(2026, 2, 1), core.PayerShared, core.MethodCard, "")
	created, err := s.CreateExpense(ctx, e)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 1 {
		t.Fatalf("id = %d, want 1", created.ID)
	}

	got, err := s.Expense(ctx, created.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Title != "studio shoot" {
		t.Fatalf("title = %q", got.Title)
	}

	if _, err := s.Expense(ctx, 99); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestCreateExpenseValidationError(t *testing.T) {
	s := newTestService()
	bad := core.NewPaidExpense("", core.Money{Units: 100}, core.CategoryOther,
		core.NewDate(2026, 2, 1), core.PayerGroom, core.MethodCard, "")
	if _, err := s.CreateExpense(context.Background(), bad); !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("got %v, want ErrEmptyTitle", err)
	}
}

func TestPaymentFlowThroughService(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if _, err := s.SetTotalBudget(ctx, core.Money{Units: 50_000_000}); err != nil {
		t.Fatalf("budget: %v", err)
	}

	e := core.NewScheduledExpense("banquet hall", core.Money{Units: 20_000_000}, core.CategoryVenue,
		core.NewDate(2026, 1, 10), core.PayerShared, core.Money{Units: 5_000_000},
		core.NewDate(2026, 9, 1), true, "")
	created, err := s.CreateExpense(ctx, e)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mid, err := s.RecordPartialPayment(ctx, created.ID, core.Money{Units: 5_000_000}, core.NewDate(2026, 4, 1))
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if mid.Status != core.StatusScheduled || mid.Scheduled.Balance.Units != 10_000_000 {
		t.Fatalf("after installment: %+v", mid)
	}

	summary := s.Summary(ctx)
	if summary.TotalScheduled.Units != 10_000_000 {
		t.Fatalf("scheduled aggregate = %d, want outstanding balance only", summary.TotalScheduled.Units)
	}

	done, err := s.RecordFullPayment(ctx, created.ID, core.NewDate(2026, 8, 25))
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if done.Status != core.StatusPaid {
		t.Fatalf("status = %s", done.Status)
	}

	summary = s.Summary(ctx)
	if summary.TotalSpent.Units != 20_000_000 || summary.TotalScheduled.Units != 0 {
		t.Fatalf("aggregates after settle: %+v", summary)
	}
}

func TestUpdateAndDeleteThroughService(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	e := core.NewScheduledExpense("photographer", core.Money{Units: 2_000_000}, core.CategorySnap,
		core.NewDate(2026, 2, 1), core.PayerGroom, core.Money{}, core.Date{}, false, "")
	created, _ := s.CreateExpense(ctx, e)

	title := "photographer (second quote)"
	updated, err := s.UpdateExpense(ctx, created.ID, ledger.ExpensePatch{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("title = %q", updated.Title)
	}

	if err := s.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteExpense(ctx, created.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
