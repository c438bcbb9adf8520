// Package backend selects and wires the persistence layer for the ledger.
package backend

import (
	"context"

	"nozze/internal/core"
)

// Store is the persistence boundary the service layer writes through. The
// ledger stays authoritative in memory; the store only has to survive
// restarts.
type Store interface {
	LoadState(ctx context.Context) (core.BudgetState, int64, error)
	SaveBudget(ctx context.Context, amount core.Money, nextID int64) error
	UpsertExpense(ctx context.Context, e core.Expense, nextID int64) error
	DeleteExpense(ctx context.Context, id int64) error
	Close() error
}

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function.
type Result struct {
	Store   Store
	Cleanup CleanupFunc
}

// Type represents the persistence backend kind.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds what backend creation needs.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
}
