package core

// BudgetSummary is the derived, non-stored view of a BudgetState. It is
// recomputed from the expense list on every read and never cached.
type BudgetSummary struct {
	TotalBudget    Money
	TotalSpent     Money
	TotalScheduled Money
	// Remaining may be negative when the couple is over budget; callers
	// surface that as a warning, not an error.
	Remaining Money
	// SpentPercent and ScheduledPercent are rounded to whole percents and
	// clamped for stacked-progress-bar display: each stays within [0, 100]
	// and their sum never exceeds 100. Both are zero while the budget is
	// unconfigured (zero).
	SpentPercent     int
	ScheduledPercent int
}

// Summarize derives the budget aggregates from the current state. Spent
// counts the full amount of paid expenses; scheduled counts only the
// outstanding balances (deposits already paid toward scheduled items are
// in neither bucket). Total over any valid state, no error paths.
func Summarize(state BudgetState) BudgetSummary {
	var spent, scheduled int64
	for _, e := range state.Expenses {
		switch e.Status {
		case StatusPaid:
			spent += e.Amount.Units
		case StatusScheduled:
			if e.Scheduled != nil {
				scheduled += e.Scheduled.Balance.Units
			}
		}
	}

	budget := state.TotalBudget.Units
	s := BudgetSummary{
		TotalBudget:    state.TotalBudget,
		TotalSpent:     Money{Units: spent},
		TotalScheduled: Money{Units: scheduled},
		Remaining:      Money{Units: budget - spent - scheduled},
	}
	if budget > 0 {
		s.SpentPercent = clampPercent(roundPercent(spent, budget), 100)
		s.ScheduledPercent = clampPercent(roundPercent(scheduled, budget), 100-s.SpentPercent)
	}
	return s
}

// roundPercent computes part/whole as a half-up rounded whole percent.
func roundPercent(part, whole int64) int {
	if part <= 0 {
		return 0
	}
	return int((part*100 + whole/2) / whole)
}

func clampPercent(p, max int) int {
	if p < 0 {
		return 0
	}
	if p > max {
		return max
	}
	return p
}
