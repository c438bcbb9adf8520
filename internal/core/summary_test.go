package core

import "testing"

func TestSummarizeBuckets(t *testing.T) {
	state := BudgetState{
		TotalBudget: Money{Units: 50_000_000},
		Expenses: []Expense{
			NewPaidExpense("studio shoot", Money{Units: 2_000_000}, CategorySnap,
				NewDate(2026, 2, 1), PayerShared, MethodCard, ""),
			NewScheduledExpense("banquet hall", Money{Units: 10_000_000}, CategoryVenue,
				NewDate(2026, 1, 10), PayerShared, Money{Units: 2_000_000}, Date{}, false, ""),
		},
	}
	s := Summarize(state)

	if s.TotalSpent.Units != 2_000_000 {
		t.Fatalf("spent = %d, want 2000000", s.TotalSpent.Units)
	}
	// Scheduled counts the outstanding balance, not the full amount: the
	// deposit already paid lives in neither bucket.
	if s.TotalScheduled.Units != 8_000_000 {
		t.Fatalf("scheduled = %d, want 8000000", s.TotalScheduled.Units)
	}
	if s.Remaining.Units != 40_000_000 {
		t.Fatalf("remaining = %d, want 40000000", s.Remaining.Units)
	}
	if s.SpentPercent != 4 {
		t.Fatalf("spent percent = %d, want 4", s.SpentPercent)
	}
	if s.ScheduledPercent != 16 {
		t.Fatalf("scheduled percent = %d, want 16", s.ScheduledPercent)
	}
}

func TestSummarizeZeroBudget(t *testing.T) {
	state := BudgetState{
		Expenses: []Expense{
			NewPaidExpense("rings", Money{Units: 3_000_000}, CategoryJewelry,
				NewDate(2026, 2, 1), PayerGroom, MethodCash, ""),
		},
	}
	s := Summarize(state)
	if s.SpentPercent != 0 || s.ScheduledPercent != 0 {
		t.Fatalf("percents = %d/%d, want 0/0 while budget unconfigured",
			s.SpentPercent, s.ScheduledPercent)
	}
	if s.Remaining.Units != -3_000_000 {
		t.Fatalf("remaining = %d, want -3000000", s.Remaining.Units)
	}
}

func TestSummarizeOverBudget(t *testing.T) {
	state := BudgetState{
		TotalBudget: Money{Units: 1_000_000},
		Expenses: []Expense{
			NewPaidExpense("venue", Money{Units: 900_000}, CategoryVenue,
				NewDate(2026, 2, 1), PayerShared, MethodCard, ""),
			NewScheduledExpense("dress", Money{Units: 500_000}, CategoryDress,
				NewDate(2026, 2, 1), PayerBride, Money{}, Date{}, false, ""),
		},
	}
	s := Summarize(state)
	if s.Remaining.Units != -400_000 {
		t.Fatalf("remaining = %d, want -400000", s.Remaining.Units)
	}
	if s.SpentPercent != 90 {
		t.Fatalf("spent percent = %d, want 90", s.SpentPercent)
	}
	// Scheduled would round to 50 but is capped so the stacked bar never
	// exceeds 100.
	if s.ScheduledPercent != 10 {
		t.Fatalf("scheduled percent = %d, want 10 (capped)", s.ScheduledPercent)
	}
}

func TestRoundPercentHalfUp(t *testing.T) {
	cases := []struct {
		part, whole int64
		want        int
	}{
		{0, 100, 0},
		{1, 200, 1},   // 0.5% rounds up
		{1, 201, 0},   // just below half
		{50, 100, 50},
		{999, 1000, 100},
	}
	for i, tc := range cases {
		if got := roundPercent(tc.part, tc.whole); got != tc.want {
			t.Fatalf("case %d: roundPercent(%d, %d) = %d, want %d",
				i, tc.part, tc.whole, got, tc.want)
		}
	}
}
