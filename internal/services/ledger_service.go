// Package services orchestrates ledger operations across the in-memory
// ledger, the persistence backend and AMQP notifications.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"nozze/internal/amqp"
	"nozze/internal/backend"
	"nozze/internal/core"
	"nozze/internal/ledger"
)

// LedgerService applies every mutation to the ledger first, then persists
// the result and fires a change notification. Persistence errors fail the
// operation; publish errors only get logged, the ledger stays the source of
// truth.
type LedgerService struct {
	ledger     *ledger.Ledger
	store      backend.Store
	amqpClient *amqp.Client
}

func NewLedgerService(l *ledger.Ledger, store backend.Store, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		ledger:     l,
		store:      store,
		amqpClient: amqpClient,
	}
}

// SetTotalBudget replaces the budget scalar and persists it.
func (s *LedgerService) SetTotalBudget(ctx context.Context, amount core.Money) (core.BudgetSummary, error) {
	if err := s.ledger.SetTotalBudget(amount); err != nil {
		return core.BudgetSummary{}, err
	}
	if err := s.store.SaveBudget(ctx, amount, s.ledger.NextID()); err != nil {
		return core.BudgetSummary{}, fmt.Errorf("persist budget: %w", err)
	}
	slog.InfoContext(ctx, "Total budget updated", "amount", amount.Units)
	return s.ledger.Summary(), nil
}

// CreateExpense validates, inserts and persists a new expense.
func (s *LedgerService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	created, err := s.ledger.AddExpense(e)
	if err != nil {
		return core.Expense{}, err
	}
	if err := s.store.UpsertExpense(ctx, created, s.ledger.NextID()); err != nil {
		// Undo the insert so memory and disk do not diverge.
		s.ledger.DeleteExpense(created.ID)
		return core.Expense{}, fmt.Errorf("persist expense: %w", err)
	}
	s.publishChange(ctx, created.ID, amqp.ChangeCreated)
	slog.InfoContext(ctx, "Expense created",
		"id", created.ID,
		"title", created.Title,
		"status", string(created.Status),
		"amount", created.Amount.Units)
	return created, nil
}

// UpdateExpense applies a partial update to informational fields.
func (s *LedgerService) UpdateExpense(ctx context.Context, id int64, patch ledger.ExpensePatch) (core.Expense, error) {
	updated, ok := s.ledger.UpdateExpense(id, patch)
	if !ok {
		return core.Expense{}, ledger.ErrNotFound
	}
	if err := s.store.UpsertExpense(ctx, updated, s.ledger.NextID()); err != nil {
		return core.Expense{}, fmt.Errorf("persist expense: %w", err)
	}
	s.publishChange(ctx, id, amqp.ChangeUpdated)
	return updated, nil
}

// DeleteExpense removes an expense from any state.
func (s *LedgerService) DeleteExpense(ctx context.Context, id int64) error {
	if !s.ledger.DeleteExpense(id) {
		return ledger.ErrNotFound
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publishChange(ctx, id, amqp.ChangeDeleted)
	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

// RecordPartialPayment applies one installment, settling the expense when
// the balance is covered.
func (s *LedgerService) RecordPartialPayment(ctx context.Context, id int64, amount core.Money, on core.Date) (core.Expense, error) {
	updated, err := s.ledger.RecordPartialPayment(id, amount, on)
	if err != nil {
		return core.Expense{}, err
	}
	if err := s.store.UpsertExpense(ctx, updated, s.ledger.NextID()); err != nil {
		return core.Expense{}, fmt.Errorf("persist expense: %w", err)
	}
	kind := amqp.ChangePayment
	if updated.Status == core.StatusPaid {
		kind = amqp.ChangeSettled
	}
	s.publishChange(ctx, id, kind)
	slog.InfoContext(ctx, "Payment recorded",
		"id", id,
		"amount", amount.Units,
		"status", string(updated.Status),
		"balance", updated.Balance().Units)
	return updated, nil
}

// RecordFullPayment settles a scheduled expense unconditionally.
func (s *LedgerService) RecordFullPayment(ctx context.Context, id int64, on core.Date) (core.Expense, error) {
	updated, err := s.ledger.RecordFullPayment(id, on)
	if err != nil {
		return core.Expense{}, err
	}
	if err := s.store.UpsertExpense(ctx, updated, s.ledger.NextID()); err != nil {
		return core.Expense{}, fmt.Errorf("persist expense: %w", err)
	}
	s.publishChange(ctx, id, amqp.ChangeSettled)
	slog.InfoContext(ctx, "Expense settled", "id", id)
	return updated, nil
}

// Expense returns the expense with the given id.
func (s *LedgerService) Expense(ctx context.Context, id int64) (core.Expense, error) {
	e, ok := s.ledger.Expense(id)
	if !ok {
		return core.Expense{}, ledger.ErrNotFound
	}
	return e, nil
}

// State returns a snapshot of the full budget state.
func (s *LedgerService) State(ctx context.Context) core.BudgetState {
	return s.ledger.State()
}

// Summary derives the budget aggregates from the current state.
func (s *LedgerService) Summary(ctx context.Context) core.BudgetSummary {
	return s.ledger.Summary()
}

func (s *LedgerService) publishChange(ctx context.Context, id int64, kind string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishLedgerChange(ctx, id, kind); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger change",
			"id", id, "kind", kind, "error", err)
		// Don't fail the request, the change is already persisted. The
		// worker's periodic catch-up scan picks up missed rows.
	}
}

// Close closes both the store and the AMQP connection.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
