// Package ledger implements the in-memory expense ledger: the canonical
// expense collection, the budget scalar, and the payment transition rules.
// One Ledger is shared per session and injected into whatever needs it;
// persistence is a collaborator of the service layer, not of the ledger.
package ledger

import (
	"errors"
	"sync"

	"nozze/internal/core"
)

var (
	ErrNotFound     = errors.New("expense not found")
	ErrNotScheduled = errors.New("expense is not scheduled")
)

// ExpensePatch is a partial update for an expense. Nil fields are left
// untouched. The patch intentionally covers only fields that cannot break
// the amount/deposit/balance invariants; money movements go through the
// payment operations.
type ExpensePatch struct {
	Title    *string
	Category *core.Category
	Payer    *core.Payer
	Date     *core.Date
	Memo     *string
	DueDate  *core.Date
	Reminder *bool
}

// Ledger owns the canonical BudgetState. All methods are safe for
// concurrent use, though the expected deployment is a single serialized
// caller per session.
type Ledger struct {
	mu     sync.Mutex
	budget core.Money
	items  []core.Expense
	nextID int64
}

// New returns an empty ledger with an unconfigured (zero) budget.
func New() *Ledger {
	return &Ledger{nextID: 1}
}

// Load seeds a ledger from persisted state. nextID comes from the
// persistence boundary so ids are never reused across restarts; it is
// raised above the highest loaded id if the stored counter lags.
func Load(state core.BudgetState, nextID int64) *Ledger {
	l := &Ledger{budget: state.TotalBudget, nextID: nextID}
	for _, e := range state.Expenses {
		l.items = append(l.items, e.Clone())
		if e.ID >= l.nextID {
			l.nextID = e.ID + 1
		}
	}
	if l.nextID < 1 {
		l.nextID = 1
	}
	return l
}

// AddExpense validates and inserts a new expense, assigning its id.
// The returned copy carries the assigned id.
func (l *Ledger) AddExpense(e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	e = e.Clone()
	e.ID = l.nextID
	l.nextID++
	l.items = append(l.items, e)
	return e.Clone(), nil
}

// UpdateExpense merges the patch into the expense with the given id.
// Unknown ids are a no-op, reported by the second return value.
func (l *Ledger) UpdateExpense(id int64, patch ExpensePatch) (core.Expense, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(id)
	if i < 0 {
		return core.Expense{}, false
	}
	e := &l.items[i]
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Category != nil {
		e.Category = *patch.Category
	}
	if patch.Payer != nil {
		e.Payer = *patch.Payer
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.Memo != nil {
		e.Memo = *patch.Memo
	}
	if e.Scheduled != nil {
		if patch.DueDate != nil {
			e.Scheduled.DueDate = *patch.DueDate
		}
		if patch.Reminder != nil {
			e.Scheduled.Reminder = *patch.Reminder
		}
	}
	return e.Clone(), true
}

// DeleteExpense removes the expense with the given id. Deletion is terminal
// and unconditional from any state; unknown ids are a no-op.
func (l *Ledger) DeleteExpense(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return true
}

// SetTotalBudget replaces the budget scalar. Zero means "not yet
// configured" and is accepted; negative amounts are rejected.
func (l *Ledger) SetTotalBudget(amount core.Money) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.budget = amount
	return nil
}

// RecordPartialPayment applies one installment to a scheduled expense,
// settling it when the outstanding balance is met or exceeded.
func (l *Ledger) RecordPartialPayment(id int64, amount core.Money, on core.Date) (core.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(id)
	if i < 0 {
		return core.Expense{}, ErrNotFound
	}
	updated, err := l.items[i].ApplyPartialPayment(amount, on)
	if err != nil {
		if errors.Is(err, core.ErrInvalidStatus) {
			return core.Expense{}, ErrNotScheduled
		}
		return core.Expense{}, err
	}
	l.items[i] = updated
	return updated.Clone(), nil
}

// RecordFullPayment settles a scheduled expense unconditionally ("pay off
// the rest now"). No history entry is appended for the remainder; see
// core.Expense.ApplyFullPayment.
func (l *Ledger) RecordFullPayment(id int64, on core.Date) (core.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(id)
	if i < 0 {
		return core.Expense{}, ErrNotFound
	}
	updated, err := l.items[i].ApplyFullPayment(on)
	if err != nil {
		if errors.Is(err, core.ErrInvalidStatus) {
			return core.Expense{}, ErrNotScheduled
		}
		return core.Expense{}, err
	}
	l.items[i] = updated
	return updated.Clone(), nil
}

// Expense returns a copy of the expense with the given id.
func (l *Ledger) Expense(id int64) (core.Expense, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(id)
	if i < 0 {
		return core.Expense{}, false
	}
	return l.items[i].Clone(), true
}

// State returns a deep-copied snapshot of the full budget state, in
// insertion order.
func (l *Ledger) State() core.BudgetState {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := core.BudgetState{TotalBudget: l.budget}
	out.Expenses = make([]core.Expense, 0, len(l.items))
	for _, e := range l.items {
		out.Expenses = append(out.Expenses, e.Clone())
	}
	return out
}

// Summary derives the aggregates from the current state. Nothing is cached;
// two calls on an unchanged ledger return identical values.
func (l *Ledger) Summary() core.BudgetSummary {
	return core.Summarize(l.State())
}

// NextID exposes the id counter for the persistence boundary.
func (l *Ledger) NextID() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextID
}

func (l *Ledger) indexOf(id int64) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}
