// Package storage is the SQLite persistence boundary for the ledger. The
// core never touches it directly; the service layer reads the initial
// BudgetState at startup and writes every mutation back through here.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"nozze/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadState reads the persisted budget state once at session start.
// Returns the state and the id counter for the ledger.
func (r *SQLiteRepository) LoadState(ctx context.Context) (core.BudgetState, int64, error) {
	var state core.BudgetState
	var nextID int64

	err := r.db.QueryRowContext(ctx,
		"SELECT total_amount, next_expense_id FROM budget WHERE id = 1",
	).Scan(&state.TotalBudget.Units, &nextID)
	if err != nil {
		return core.BudgetState{}, 0, fmt.Errorf("load budget: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, amount, category, record_date, payer, status,
		       method, deposit, balance, due_date, reminder, memo
		FROM expenses ORDER BY id`)
	if err != nil {
		return core.BudgetState{}, 0, fmt.Errorf("load expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return core.BudgetState{}, 0, err
		}
		payments, err := r.loadPayments(ctx, e.ID)
		if err != nil {
			return core.BudgetState{}, 0, err
		}
		e.Payments = payments
		state.Expenses = append(state.Expenses, e)
	}
	if err := rows.Err(); err != nil {
		return core.BudgetState{}, 0, fmt.Errorf("iterate expenses: %w", err)
	}

	slog.InfoContext(ctx, "Ledger state loaded from SQLite",
		"expenses", len(state.Expenses),
		"total_budget", state.TotalBudget.Units)

	return state, nextID, nil
}

// SaveBudget persists the budget scalar and the id counter.
func (r *SQLiteRepository) SaveBudget(ctx context.Context, amount core.Money, nextID int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE budget SET total_amount = ?, next_expense_id = ? WHERE id = 1",
		amount.Units, nextID)
	if err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

// UpsertExpense writes one expense and its payment history, advances the id
// counter, and marks the row pending for the sheets mirror.
func (r *SQLiteRepository) UpsertExpense(ctx context.Context, e core.Expense, nextID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var deposit, balance sql.NullInt64
	var dueDate sql.NullString
	reminder := 0
	if e.Scheduled != nil {
		deposit = sql.NullInt64{Int64: e.Scheduled.Deposit.Units, Valid: true}
		balance = sql.NullInt64{Int64: e.Scheduled.Balance.Units, Valid: true}
		if !e.Scheduled.DueDate.IsEmpty() {
			dueDate = sql.NullString{String: e.Scheduled.DueDate.Format(dateLayout), Valid: true}
		}
		if e.Scheduled.Reminder {
			reminder = 1
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO expenses (id, title, amount, category, record_date, payer,
		                      status, method, deposit, balance, due_date, reminder, memo)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		    title = excluded.title,
		    amount = excluded.amount,
		    category = excluded.category,
		    record_date = excluded.record_date,
		    payer = excluded.payer,
		    status = excluded.status,
		    method = excluded.method,
		    deposit = excluded.deposit,
		    balance = excluded.balance,
		    due_date = excluded.due_date,
		    reminder = excluded.reminder,
		    memo = excluded.memo,
		    synced_at = NULL,
		    sync_error = 0,
		    updated_at = datetime('now')`,
		e.ID, e.Title, e.Amount.Units, string(e.Category),
		e.Date.Format(dateLayout), string(e.Payer), string(e.Status),
		string(e.Method), deposit, balance, dueDate, reminder, e.Memo)
	if err != nil {
		return fmt.Errorf("upsert expense: %w", err)
	}

	// Payment history is append-only in the domain; rewriting the rows keeps
	// the upsert simple and the history exactly matches the record.
	if _, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE expense_id = ?", e.ID); err != nil {
		return fmt.Errorf("clear payments: %w", err)
	}
	for i, p := range e.Payments {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO payments (expense_id, seq, amount, paid_on, memo) VALUES (?, ?, ?, ?, ?)",
			e.ID, i+1, p.Amount.Units, p.Date.Format(dateLayout), p.Memo)
		if err != nil {
			return fmt.Errorf("insert payment %d: %w", i+1, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE budget SET next_expense_id = ? WHERE id = 1 AND next_expense_id < ?",
		nextID, nextID); err != nil {
		return fmt.Errorf("advance id counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"title", e.Title,
		"status", string(e.Status),
		"amount", e.Amount.Units)

	return nil
}

// DeleteExpense removes the expense and, via cascade, its payment history.
// Deleting an unknown id is a no-op.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// GetExpense retrieves a single expense by id, payment history included.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, amount, category, record_date, payer, status,
		       method, deposit, balance, due_date, reminder, memo
		FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	payments, err := r.loadPayments(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	e.Payments = payments
	return e, nil
}

// GetPendingSyncIDs returns ids of expenses not yet mirrored to the export
// spreadsheet, oldest first.
func (r *SQLiteRepository) GetPendingSyncIDs(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM expenses WHERE synced_at IS NULL ORDER BY id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkSynced records a successful mirror of the expense.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE expenses SET synced_at = datetime('now'), sync_error = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	return nil
}

// MarkSyncError flags the expense so the periodic scan retries it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE expenses SET sync_error = sync_error + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark expense sync error: %w", err)
	}
	slog.WarnContext(ctx, "Expense marked with sync error", "id", id)
	return nil
}

// ReminderCandidate is a scheduled expense eligible for due-date reminders,
// with the bookkeeping needed to send at most one reminder per day.
type ReminderCandidate struct {
	Expense      core.Expense
	LastReminded core.Date
}

// ListReminderCandidates returns scheduled expenses that have the reminder
// flag set and a due date.
func (r *SQLiteRepository) ListReminderCandidates(ctx context.Context) ([]ReminderCandidate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, amount, category, record_date, payer, status,
		       method, deposit, balance, due_date, reminder, memo, last_reminded_on
		FROM expenses
		WHERE status = 'scheduled' AND reminder = 1 AND due_date IS NOT NULL
		ORDER BY due_date`)
	if err != nil {
		return nil, fmt.Errorf("list reminder candidates: %w", err)
	}
	defer rows.Close()

	var out []ReminderCandidate
	for rows.Next() {
		var (
			e            core.Expense
			category     string
			recDate      string
			payer        string
			status       string
			method       string
			deposit      sql.NullInt64
			balance      sql.NullInt64
			dueDate      sql.NullString
			reminder     int
			lastReminded sql.NullString
		)
		err := rows.Scan(&e.ID, &e.Title, &e.Amount.Units, &category, &recDate,
			&payer, &status, &method, &deposit, &balance, &dueDate,
			&reminder, &e.Memo, &lastReminded)
		if err != nil {
			return nil, fmt.Errorf("scan reminder candidate: %w", err)
		}
		e.Category = core.Category(category)
		e.Date = parseDate(recDate)
		e.Payer = core.Payer(payer)
		e.Status = core.Status(status)
		e = hydrateScheduled(e, method, deposit, balance, dueDate, reminder)
		c := ReminderCandidate{Expense: e}
		if lastReminded.Valid {
			c.LastReminded = parseDate(lastReminded.String)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MarkReminded records that a reminder went out for the expense today.
func (r *SQLiteRepository) MarkReminded(ctx context.Context, id int64, on core.Date) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE expenses SET last_reminded_on = ? WHERE id = ?", on.Format(dateLayout), id)
	if err != nil {
		return fmt.Errorf("mark reminded: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) loadPayments(ctx context.Context, expenseID int64) ([]core.PaymentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT amount, paid_on, memo FROM payments WHERE expense_id = ? ORDER BY seq", expenseID)
	if err != nil {
		return nil, fmt.Errorf("load payments for %d: %w", expenseID, err)
	}
	defer rows.Close()

	var out []core.PaymentRecord
	for rows.Next() {
		var p core.PaymentRecord
		var paidOn string
		if err := rows.Scan(&p.Amount.Units, &paidOn, &p.Memo); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Date = parseDate(paidOn)
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e        core.Expense
		category string
		recDate  string
		payer    string
		status   string
		method   string
		deposit  sql.NullInt64
		balance  sql.NullInt64
		dueDate  sql.NullString
		reminder int
	)
	err := row.Scan(&e.ID, &e.Title, &e.Amount.Units, &category, &recDate,
		&payer, &status, &method, &deposit, &balance, &dueDate, &reminder, &e.Memo)
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	e.Category = core.Category(category)
	e.Date = parseDate(recDate)
	e.Payer = core.Payer(payer)
	e.Status = core.Status(status)
	return hydrateScheduled(e, method, deposit, balance, dueDate, reminder), nil
}

// hydrateScheduled rebuilds the status-dependent shape from nullable columns.
func hydrateScheduled(e core.Expense, method string, deposit, balance sql.NullInt64, dueDate sql.NullString, reminder int) core.Expense {
	if e.Status == core.StatusScheduled {
		d := &core.ScheduledDetails{Reminder: reminder != 0}
		if deposit.Valid {
			d.Deposit = core.Money{Units: deposit.Int64}
		}
		if balance.Valid {
			d.Balance = core.Money{Units: balance.Int64}
		}
		if dueDate.Valid {
			d.DueDate = parseDate(dueDate.String)
		}
		e.Scheduled = d
	} else {
		e.Method = core.Method(method)
	}
	return e
}

func parseDate(s string) core.Date {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}
	}
	return core.Date{Time: t}
}
