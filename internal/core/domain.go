package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPaid      Status = "paid"
	StatusScheduled Status = "scheduled"
)

const (
	CategoryVenue     Category = "venue"
	CategoryDress     Category = "dress"
	CategoryStudio    Category = "studio"
	CategorySnap      Category = "snap"
	CategoryHoneymoon Category = "honeymoon"
	CategoryJewelry   Category = "jewelry"
	CategoryOther     Category = "other"
)

const (
	PayerGroom   Payer = "groom"
	PayerBride   Payer = "bride"
	PayerShared  Payer = "shared"
	PayerParents Payer = "parents"
)

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
)

// Payment memo labels used by the transition rules. Free-text memos are
// also accepted on manually recorded payments.
const (
	MemoContractDeposit = "contract deposit"
	MemoInterimPayment  = "interim payment"
)

type (
	Status   string
	Category string
	Payer    string
	Method   string

	Date struct {
		time.Time
	}

	// PaymentRecord is one immutable entry in an expense's payment history.
	PaymentRecord struct {
		Amount Money
		Date   Date
		Memo   string
	}

	// ScheduledDetails carries the fields that only exist while an expense
	// is scheduled. The pointer is nil once the expense is paid, so a paid
	// expense structurally cannot carry an outstanding balance.
	ScheduledDetails struct {
		Deposit  Money
		Balance  Money
		DueDate  Date
		Reminder bool
	}

	// Expense is one budget line item, either already paid or scheduled
	// with an outstanding balance.
	Expense struct {
		ID       int64
		Title    string
		Amount   Money
		Category Category
		// Date is the payment date when paid, the contract date when scheduled.
		Date      Date
		Payer     Payer
		Status    Status
		Method    Method // settlement method, set only when paid
		Memo      string
		Payments  []PaymentRecord
		Scheduled *ScheduledDetails
	}

	// BudgetState is the aggregate root the persistence boundary reads and
	// writes: the budget scalar plus the full expense collection.
	BudgetState struct {
		TotalBudget Money
		Expenses    []Expense
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyTitle      = errors.New("empty title")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidPayer    = errors.New("invalid payer")
	ErrInvalidMethod   = errors.New("invalid method")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidDate     = errors.New("invalid date")
	ErrDepositExceeds  = errors.New("deposit exceeds amount")
	ErrBalanceMismatch = errors.New("balance does not equal amount minus deposit")
)

// NewDate creates a Date from year, month, day (UTC, midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date truncated to day precision.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// IsEmpty reports whether the date is unset (optional due dates).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (s Status) Valid() bool {
	switch s {
	case StatusPaid, StatusScheduled:
		return true
	default:
		return false
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryVenue, CategoryDress, CategoryStudio, CategorySnap,
		CategoryHoneymoon, CategoryJewelry, CategoryOther:
		return true
	default:
		return false
	}
}

func (p Payer) Valid() bool {
	switch p {
	case PayerGroom, PayerBride, PayerShared, PayerParents:
		return true
	default:
		return false
	}
}

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer:
		return true
	default:
		return false
	}
}

func (p PaymentRecord) Validate() error {
	if p.Amount.Units <= 0 {
		return ErrInvalidAmount
	}
	if err := p.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// NewPaidExpense builds an expense that is fully settled at creation.
func NewPaidExpense(title string, amount Money, category Category, date Date, payer Payer, method Method, memo string) Expense {
	return Expense{
		Title:    title,
		Amount:   amount,
		Category: category,
		Date:     date,
		Payer:    payer,
		Status:   StatusPaid,
		Method:   method,
		Memo:     memo,
	}
}

// NewScheduledExpense builds a scheduled expense with an optional upfront
// deposit. A non-zero deposit is recorded as the first payment history entry
// with the contract-deposit memo, and the balance is derived at creation.
func NewScheduledExpense(title string, amount Money, category Category, contractDate Date, payer Payer, deposit Money, dueDate Date, reminder bool, memo string) Expense {
	e := Expense{
		Title:    title,
		Amount:   amount,
		Category: category,
		Date:     contractDate,
		Payer:    payer,
		Status:   StatusScheduled,
		Memo:     memo,
		Scheduled: &ScheduledDetails{
			Deposit:  deposit,
			Balance:  Money{Units: amount.Units - deposit.Units},
			DueDate:  dueDate,
			Reminder: reminder,
		},
	}
	if deposit.Units > 0 {
		e.Payments = []PaymentRecord{{
			Amount: deposit,
			Date:   contractDate,
			Memo:   MemoContractDeposit,
		}}
	}
	return e
}

// Validate checks the cross-field invariants for both expense shapes.
func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if e.Amount.Units < 0 {
		return ErrInvalidAmount
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if !e.Payer.Valid() {
		return ErrInvalidPayer
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	switch e.Status {
	case StatusPaid:
		if e.Scheduled != nil {
			return ErrInvalidStatus
		}
		if !e.Method.Valid() {
			return ErrInvalidMethod
		}
	case StatusScheduled:
		if e.Scheduled == nil {
			return ErrInvalidStatus
		}
		if e.Method != "" {
			return ErrInvalidMethod
		}
		d := e.Scheduled
		if d.Deposit.Units < 0 || d.Deposit.Units > e.Amount.Units {
			return ErrDepositExceeds
		}
		if d.Balance.Units != e.Amount.Units-d.Deposit.Units {
			return ErrBalanceMismatch
		}
	default:
		return ErrInvalidStatus
	}
	return e.validatePayments()
}

// validatePayments checks each history entry and, while scheduled, the
// conservation rule sum(payments) == deposit.
func (e Expense) validatePayments() error {
	var sum int64
	for _, p := range e.Payments {
		if err := p.Validate(); err != nil {
			return err
		}
		sum += p.Amount.Units
	}
	if e.Status == StatusScheduled && len(e.Payments) > 0 && sum != e.Scheduled.Deposit.Units {
		return ErrBalanceMismatch
	}
	return nil
}

// ApplyPartialPayment records one installment against a scheduled expense
// and returns the updated record. When the payment meets or exceeds the
// outstanding balance the expense settles: status flips to paid, the
// scheduled-only fields are cleared, date is stamped with the payment day
// and method defaults to card. Overpayment is absorbed, never stored as a
// deposit above the amount. The triggering installment is always appended
// to the history first.
func (e Expense) ApplyPartialPayment(amount Money, on Date) (Expense, error) {
	if amount.Units <= 0 {
		return e, ErrInvalidAmount
	}
	if e.Status != StatusScheduled || e.Scheduled == nil {
		return e, ErrInvalidStatus
	}

	out := e.Clone()
	out.Payments = append(out.Payments, PaymentRecord{
		Amount: amount,
		Date:   on,
		Memo:   MemoInterimPayment,
	})

	newBalance := out.Scheduled.Balance.Units - amount.Units
	if newBalance <= 0 {
		out.settle(on)
		return out, nil
	}

	out.Scheduled.Deposit.Units += amount.Units
	out.Scheduled.Balance.Units = newBalance
	return out, nil
}

// ApplyFullPayment settles a scheduled expense unconditionally, regardless
// of remaining balance. Unlike the settling branch of ApplyPartialPayment it
// does not append a history entry for the remainder, so the payment list of
// an expense closed this way sums to less than its amount. That matches the
// behavior this tracker always had; reporting that needs a complete trail
// must use the partial-payment path.
func (e Expense) ApplyFullPayment(on Date) (Expense, error) {
	if e.Status != StatusScheduled || e.Scheduled == nil {
		return e, ErrInvalidStatus
	}
	out := e.Clone()
	out.settle(on)
	return out, nil
}

// settle flips the record into its paid shape.
func (e *Expense) settle(on Date) {
	e.Status = StatusPaid
	e.Method = MethodCard
	e.Date = on
	e.Scheduled = nil
}

// Balance returns the outstanding balance, zero for paid expenses.
func (e Expense) Balance() Money {
	if e.Scheduled == nil {
		return Money{}
	}
	return e.Scheduled.Balance
}

// Deposit returns the cumulative amount paid so far. For paid expenses the
// full amount is considered settled.
func (e Expense) Deposit() Money {
	if e.Status == StatusPaid {
		return e.Amount
	}
	if e.Scheduled == nil {
		return Money{}
	}
	return e.Scheduled.Deposit
}

// Clone deep-copies the expense so transition functions never alias the
// caller's payment history or scheduled details.
func (e Expense) Clone() Expense {
	out := e
	if e.Scheduled != nil {
		d := *e.Scheduled
		out.Scheduled = &d
	}
	if e.Payments != nil {
		out.Payments = append([]PaymentRecord(nil), e.Payments...)
	}
	return out
}
