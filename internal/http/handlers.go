package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nozze/internal/core"
	"nozze/internal/export"
	"nozze/internal/ledger"
)

const dateLayout = "2006-01-02"

type expenseResponse struct {
	ID       int64             `json:"id"`
	Title    string            `json:"title"`
	Amount   int64             `json:"amount"`
	Category string            `json:"category"`
	Date     string            `json:"date"`
	Payer    string            `json:"payer"`
	Status   string            `json:"status"`
	Method   string            `json:"method,omitempty"`
	Memo     string            `json:"memo,omitempty"`
	Deposit  *int64            `json:"deposit,omitempty"`
	Balance  *int64            `json:"balance,omitempty"`
	DueDate  string            `json:"due_date,omitempty"`
	Reminder *bool             `json:"reminder,omitempty"`
	Payments []paymentResponse `json:"payments"`
}

type paymentResponse struct {
	Amount int64  `json:"amount"`
	Date   string `json:"date"`
	Memo   string `json:"memo,omitempty"`
}

type summaryResponse struct {
	TotalBudget      int64 `json:"total_budget"`
	TotalSpent       int64 `json:"total_spent"`
	TotalScheduled   int64 `json:"total_scheduled"`
	Remaining        int64 `json:"remaining"`
	SpentPercent     int   `json:"spent_percent"`
	ScheduledPercent int   `json:"scheduled_percent"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	resp := expenseResponse{
		ID:       e.ID,
		Title:    e.Title,
		Amount:   e.Amount.Units,
		Category: string(e.Category),
		Date:     e.Date.Format(dateLayout),
		Payer:    string(e.Payer),
		Status:   string(e.Status),
		Method:   string(e.Method),
		Memo:     e.Memo,
		Payments: []paymentResponse{},
	}
	if e.Scheduled != nil {
		deposit := e.Scheduled.Deposit.Units
		balance := e.Scheduled.Balance.Units
		reminder := e.Scheduled.Reminder
		resp.Deposit = &deposit
		resp.Balance = &balance
		resp.Reminder = &reminder
		if !e.Scheduled.DueDate.IsEmpty() {
			resp.DueDate = e.Scheduled.DueDate.Format(dateLayout)
		}
	}
	for _, p := range e.Payments {
		resp.Payments = append(resp.Payments, paymentResponse{
			Amount: p.Amount.Units,
			Date:   p.Date.Format(dateLayout),
			Memo:   p.Memo,
		})
	}
	return resp
}

func toSummaryResponse(s core.BudgetSummary) summaryResponse {
	return summaryResponse{
		TotalBudget:      s.TotalBudget.Units,
		TotalSpent:       s.TotalSpent.Units,
		TotalScheduled:   s.TotalScheduled.Units,
		Remaining:        s.Remaining.Units,
		SpentPercent:     s.SpentPercent,
		ScheduledPercent: s.ScheduledPercent,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps domain and ledger errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrNotScheduled):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidPayer),
		errors.Is(err, core.ErrInvalidMethod),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrDepositExceeds),
		errors.Is(err, core.ErrBalanceMismatch):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return core.Date{}, core.ErrInvalidDate
	}
	return core.Date{Time: t}, nil
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	summary := s.ledger.Summary(r.Context())
	writeJSON(w, http.StatusOK, map[string]int64{"total_budget": summary.TotalBudget.Units})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TotalBudget int64 `json:"total_budget"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := s.ledger.SetTotalBudget(r.Context(), core.Money{Units: req.TotalBudget})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSummaryResponse(s.ledger.Summary(r.Context())))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	state := s.ledger.State(r.Context())
	out := make([]expenseResponse, 0, len(state.Expenses))
	for _, e := range state.Expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

type createExpenseRequest struct {
	Title    string `json:"title"`
	Amount   int64  `json:"amount"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Payer    string `json:"payer"`
	Status   string `json:"status"`
	Method   string `json:"method"`
	Deposit  int64  `json:"deposit"`
	DueDate  string `json:"due_date"`
	Reminder bool   `json:"reminder"`
	Memo     string `json:"memo"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	var e core.Expense
	switch core.Status(req.Status) {
	case core.StatusPaid:
		e = core.NewPaidExpense(req.Title, core.Money{Units: req.Amount},
			core.Category(req.Category), date, core.Payer(req.Payer),
			core.Method(req.Method), req.Memo)
	case core.StatusScheduled:
		var dueDate core.Date
		if req.DueDate != "" {
			if dueDate, err = parseDate(req.DueDate); err != nil {
				writeError(w, http.StatusUnprocessableEntity, "invalid due date, expected YYYY-MM-DD")
				return
			}
		}
		e = core.NewScheduledExpense(req.Title, core.Money{Units: req.Amount},
			core.Category(req.Category), date, core.Payer(req.Payer),
			core.Money{Units: req.Deposit}, dueDate, req.Reminder, req.Memo)
	default:
		writeError(w, http.StatusUnprocessableEntity, "status must be paid or scheduled")
		return
	}

	created, err := s.ledger.CreateExpense(r.Context(), e)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create expense failed", "error", err, "title", req.Title)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(created))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}
	e, err := s.ledger.Expense(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

type updateExpenseRequest struct {
	Title    *string `json:"title"`
	Category *string `json:"category"`
	Payer    *string `json:"payer"`
	Date     *string `json:"date"`
	Memo     *string `json:"memo"`
	DueDate  *string `json:"due_date"`
	Reminder *bool   `json:"reminder"`
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	var req updateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := ledger.ExpensePatch{
		Title:    req.Title,
		Memo:     req.Memo,
		Reminder: req.Reminder,
	}
	if req.Category != nil {
		c := core.Category(*req.Category)
		if !c.Valid() {
			writeError(w, http.StatusUnprocessableEntity, "invalid category")
			return
		}
		patch.Category = &c
	}
	if req.Payer != nil {
		p := core.Payer(*req.Payer)
		if !p.Valid() {
			writeError(w, http.StatusUnprocessableEntity, "invalid payer")
			return
		}
		patch.Payer = &p
	}
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
			return
		}
		patch.Date = &d
	}
	if req.DueDate != nil {
		d, err := parseDate(*req.DueDate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid due date, expected YYYY-MM-DD")
			return
		}
		patch.DueDate = &d
	}

	updated, err := s.ledger.UpdateExpense(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}
	if err := s.ledger.DeleteExpense(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type paymentRequest struct {
	Amount int64  `json:"amount"`
	Date   string `json:"date"`
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	on := core.Today()
	if req.Date != "" {
		if on, err = parseDate(req.Date); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
			return
		}
	}

	updated, err := s.ledger.RecordPartialPayment(r.Context(), id, core.Money{Units: req.Amount}, on)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	var req struct {
		Date string `json:"date"`
	}
	// Body is optional; an empty or absent body settles as of today.
	_ = json.NewDecoder(r.Body).Decode(&req)

	on := core.Today()
	if req.Date != "" {
		if on, err = parseDate(req.Date); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
			return
		}
	}

	updated, err := s.ledger.RecordFullPayment(r.Context(), id, on)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	state := s.ledger.State(r.Context())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger.csv"`)
	if err := export.WriteCSV(w, state); err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", "error", err)
	}
}
