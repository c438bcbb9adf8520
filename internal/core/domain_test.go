package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2026, 1, 1), true},
		{NewDate(2026, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestPaidExpenseValidate(t *testing.T) {
	good := NewPaidExpense("hanbok fitting", Money{Units: 800_000}, CategoryDress,
		NewDate(2026, 3, 14), PayerBride, MethodCard, "")
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Expense)
		want   error
	}{
		{"empty title", func(e *Expense) { e.Title = "  " }, ErrEmptyTitle},
		{"negative amount", func(e *Expense) { e.Amount.Units = -1 }, ErrInvalidAmount},
		{"bad category", func(e *Expense) { e.Category = "flowers" }, ErrInvalidCategory},
		{"bad payer", func(e *Expense) { e.Payer = "uncle" }, ErrInvalidPayer},
		{"zero date", func(e *Expense) { e.Date = Date{} }, ErrInvalidDate},
		{"bad method", func(e *Expense) { e.Method = "check" }, ErrInvalidMethod},
		{"bad status", func(e *Expense) { e.Status = "pending" }, ErrInvalidStatus},
		{"paid with scheduled details", func(e *Expense) { e.Scheduled = &ScheduledDetails{} }, ErrInvalidStatus},
	}
	for _, tc := range cases {
		e := good.Clone()
		tc.mutate(&e)
		if err := e.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestScheduledExpenseValidate(t *testing.T) {
	good := NewScheduledExpense("banquet hall", Money{Units: 20_000_000}, CategoryVenue,
		NewDate(2026, 1, 10), PayerShared, Money{Units: 5_000_000},
		NewDate(2026, 9, 1), true, "balance due a week before")
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if len(good.Payments) != 1 || good.Payments[0].Memo != MemoContractDeposit {
		t.Fatalf("expected contract deposit history entry, got %+v", good.Payments)
	}
	if good.Scheduled.Balance.Units != 15_000_000 {
		t.Fatalf("balance = %d, want 15000000", good.Scheduled.Balance.Units)
	}

	cases := []struct {
		name   string
		mutate func(*Expense)
		want   error
	}{
		{"nil details", func(e *Expense) { e.Scheduled = nil }, ErrInvalidStatus},
		{"method set while scheduled", func(e *Expense) { e.Method = MethodCash }, ErrInvalidMethod},
		{"deposit above amount", func(e *Expense) {
			e.Scheduled.Deposit.Units = 30_000_000
		}, ErrDepositExceeds},
		{"balance off by one", func(e *Expense) { e.Scheduled.Balance.Units++ }, ErrBalanceMismatch},
		{"history does not sum to deposit", func(e *Expense) {
			e.Payments[0].Amount.Units = 1
		}, ErrBalanceMismatch},
	}
	for _, tc := range cases {
		e := good.Clone()
		tc.mutate(&e)
		if err := e.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestScheduledExpenseNoDeposit(t *testing.T) {
	e := NewScheduledExpense("photographer", Money{Units: 2_000_000}, CategorySnap,
		NewDate(2026, 2, 1), PayerGroom, Money{}, Date{}, false, "")
	if err := e.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if len(e.Payments) != 0 {
		t.Fatalf("zero deposit must not create a history entry, got %d", len(e.Payments))
	}
	if e.Scheduled.Balance.Units != 2_000_000 {
		t.Fatalf("balance = %d, want full amount", e.Scheduled.Balance.Units)
	}
}

func TestApplyPartialPayment(t *testing.T) {
	base := NewScheduledExpense("banquet hall", Money{Units: 20_000_000}, CategoryVenue,
		NewDate(2026, 1, 10), PayerShared, Money{Units: 5_000_000}, Date{}, false, "")

	t.Run("installment below balance", func(t *testing.T) {
		got, err := base.ApplyPartialPayment(Money{Units: 5_000_000}, NewDate(2026, 4, 1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != StatusScheduled {
			t.Fatalf("status = %s, want scheduled", got.Status)
		}
		if got.Scheduled.Deposit.Units != 10_000_000 || got.Scheduled.Balance.Units != 10_000_000 {
			t.Fatalf("deposit/balance = %d/%d, want 10000000/10000000",
				got.Scheduled.Deposit.Units, got.Scheduled.Balance.Units)
		}
		if len(got.Payments) != 2 || got.Payments[1].Memo != MemoInterimPayment {
			t.Fatalf("expected interim payment entry, got %+v", got.Payments)
		}
		if err := got.Validate(); err != nil {
			t.Fatalf("result fails validation: %v", err)
		}
		// the original must be untouched
		if base.Scheduled.Deposit.Units != 5_000_000 || len(base.Payments) != 1 {
			t.Fatalf("original mutated: %+v", base)
		}
	})

	t.Run("installment equals balance settles", func(t *testing.T) {
		on := NewDate(2026, 8, 20)
		got, err := base.ApplyPartialPayment(Money{Units: 15_000_000}, on)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != StatusPaid || got.Scheduled != nil {
			t.Fatalf("expected paid shape, got status=%s scheduled=%v", got.Status, got.Scheduled)
		}
		if got.Method != MethodCard {
			t.Fatalf("method = %s, want card", got.Method)
		}
		if !got.Date.Equal(on.Time) {
			t.Fatalf("date = %v, want payment day", got.Date)
		}
		if len(got.Payments) != 2 {
			t.Fatalf("settling installment must be appended, got %d entries", len(got.Payments))
		}
		if got.Deposit().Units != got.Amount.Units {
			t.Fatalf("paid deposit accessor = %d, want amount %d", got.Deposit().Units, got.Amount.Units)
		}
	})

	t.Run("overpayment settles without storing excess", func(t *testing.T) {
		got, err := base.ApplyPartialPayment(Money{Units: 99_000_000}, NewDate(2026, 8, 20))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != StatusPaid {
			t.Fatalf("expected paid, got %s", got.Status)
		}
		if got.Deposit().Units != got.Amount.Units {
			t.Fatalf("excess must be absorbed, deposit = %d", got.Deposit().Units)
		}
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		for _, units := range []int64{0, -100} {
			if _, err := base.ApplyPartialPayment(Money{Units: units}, NewDate(2026, 4, 1)); !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("amount %d: got %v, want ErrInvalidAmount", units, err)
			}
		}
	})

	t.Run("rejects paid expense", func(t *testing.T) {
		paid := NewPaidExpense("tailor", Money{Units: 300_000}, CategoryDress,
			NewDate(2026, 1, 1), PayerBride, MethodCash, "")
		if _, err := paid.ApplyPartialPayment(Money{Units: 1}, NewDate(2026, 4, 1)); !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("got %v, want ErrInvalidStatus", err)
		}
	})
}

func TestApplyFullPayment(t *testing.T) {
	base := NewScheduledExpense("honeymoon flights", Money{Units: 4_000_000}, CategoryHoneymoon,
		NewDate(2026, 2, 1), PayerShared, Money{Units: 1_000_000}, Date{}, false, "")

	on := NewDate(2026, 7, 3)
	got, err := base.ApplyFullPayment(on)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusPaid || got.Scheduled != nil {
		t.Fatalf("expected paid shape, got status=%s scheduled=%v", got.Status, got.Scheduled)
	}
	if got.Method != MethodCard || !got.Date.Equal(on.Time) {
		t.Fatalf("settle stamp wrong: method=%s date=%v", got.Method, got.Date)
	}
	// Full settlement does not append a history entry for the remainder.
	if len(got.Payments) != 1 {
		t.Fatalf("payments = %d, want only the original deposit entry", len(got.Payments))
	}

	if _, err := got.ApplyFullPayment(on); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("settling a paid expense: got %v, want ErrInvalidStatus", err)
	}
}

func TestBalanceAndDepositAccessors(t *testing.T) {
	scheduled := NewScheduledExpense("rings", Money{Units: 3_000_000}, CategoryJewelry,
		NewDate(2026, 3, 1), PayerGroom, Money{Units: 500_000}, Date{}, false, "")
	if scheduled.Balance().Units != 2_500_000 || scheduled.Deposit().Units != 500_000 {
		t.Fatalf("accessors = %d/%d", scheduled.Balance().Units, scheduled.Deposit().Units)
	}

	paid := NewPaidExpense("makeup trial", Money{Units: 150_000}, CategoryStudio,
		NewDate(2026, 3, 1), PayerBride, MethodTransfer, "")
	if paid.Balance().Units != 0 {
		t.Fatalf("paid balance = %d, want 0", paid.Balance().Units)
	}
	if paid.Deposit().Units != 150_000 {
		t.Fatalf("paid deposit = %d, want full amount", paid.Deposit().Units)
	}
}

func TestCloneIsDeep(t *testing.T) {
	e := NewScheduledExpense("venue", Money{Units: 1_000}, CategoryVenue,
		NewDate(2026, 1, 1), PayerShared, Money{Units: 100}, NewDate(2026, 6, 1), true, "")
	c := e.Clone()
	c.Scheduled.Balance.Units = 0
	c.Payments[0].Amount.Units = 0
	if e.Scheduled.Balance.Units != 900 || e.Payments[0].Amount.Units != 100 {
		t.Fatalf("clone aliases the original: %+v", e)
	}
}
