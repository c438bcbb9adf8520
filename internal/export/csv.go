// Package export renders the ledger into external projections: a CSV
// download for spreadsheet-minded relatives and a Google Sheets mirror.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"nozze/internal/core"
)

var csvHeader = []string{
	"id", "date", "category", "title", "amount",
	"status", "payer", "method", "deposit", "balance", "due_date", "memo",
}

// WriteCSV streams the full expense list as CSV, one row per expense in
// insertion order. Scheduled-only columns are blank for paid rows and the
// method column is blank for scheduled rows.
func WriteCSV(w io.Writer, state core.BudgetState) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range state.Expenses {
		if err := cw.Write(csvRow(e)); err != nil {
			return fmt.Errorf("write csv row %d: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(e core.Expense) []string {
	var deposit, balance, dueDate string
	if e.Scheduled != nil {
		deposit = fmt.Sprintf("%d", e.Scheduled.Deposit.Units)
		balance = fmt.Sprintf("%d", e.Scheduled.Balance.Units)
		if !e.Scheduled.DueDate.IsEmpty() {
			dueDate = e.Scheduled.DueDate.Format("2006-01-02")
		}
	}
	return []string{
		fmt.Sprintf("%d", e.ID),
		e.Date.Format("2006-01-02"),
		string(e.Category),
		e.Title,
		fmt.Sprintf("%d", e.Amount.Units),
		string(e.Status),
		string(e.Payer),
		string(e.Method),
		deposit,
		balance,
		dueDate,
		e.Memo,
	}
}
