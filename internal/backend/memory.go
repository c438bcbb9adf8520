package backend

import (
	"context"

	"nozze/internal/core"
)

// MemoryStore is the no-durability backend used for demos and tests. The
// ledger already holds everything in memory, so every method is a no-op.
type MemoryStore struct{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadState(ctx context.Context) (core.BudgetState, int64, error) {
	return core.BudgetState{}, 1, nil
}

func (s *MemoryStore) SaveBudget(ctx context.Context, amount core.Money, nextID int64) error {
	return nil
}

func (s *MemoryStore) UpsertExpense(ctx context.Context, e core.Expense, nextID int64) error {
	return nil
}

func (s *MemoryStore) DeleteExpense(ctx context.Context, id int64) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
