package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nozze/internal/amqp"
	"nozze/internal/core"
	"nozze/internal/storage"
)

// ReminderConfig holds configuration for the due-date reminder scan.
type ReminderConfig struct {
	// LeadDays is how many days before the due date reminders start (default: 7)
	LeadDays int

	// ScanInterval is how often candidates are checked (default: 1h)
	ScanInterval time.Duration
}

func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		LeadDays:     7,
		ScanInterval: time.Hour,
	}
}

// ReminderPublisher is the outbound port for reminder notifications.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, msg *amqp.ReminderMessage) error
}

// ReminderProcessor scans scheduled expenses with the reminder flag and
// publishes at most one notification per expense per day, starting LeadDays
// before the due date and continuing daily while overdue.
type ReminderProcessor struct {
	storage   *storage.SQLiteRepository
	publisher ReminderPublisher
	config    ReminderConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewReminderProcessor(repo *storage.SQLiteRepository, publisher ReminderPublisher, config ReminderConfig) *ReminderProcessor {
	return &ReminderProcessor{
		storage:   repo,
		publisher: publisher,
		config:    config,
	}
}

func (p *ReminderProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("reminder processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Reminder processor started",
		"lead_days", p.config.LeadDays,
		"scan_interval", p.config.ScanInterval)

	return nil
}

func (p *ReminderProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Reminder processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Reminder processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

func (p *ReminderProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.ScanInterval)
	defer ticker.Stop()

	p.Scan(ctx, core.Today())

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Scan(ctx, core.Today())
		}
	}
}

// Scan runs one reminder pass as of the given day. Exposed for tests and
// for one-shot invocations.
func (p *ReminderProcessor) Scan(ctx context.Context, today core.Date) {
	candidates, err := p.storage.ListReminderCandidates(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list reminder candidates", "error", err)
		return
	}

	for _, c := range candidates {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !ReminderDue(c.Expense, c.LastReminded, today, p.config.LeadDays) {
			continue
		}

		due := c.Expense.Scheduled.DueDate
		msg := &amqp.ReminderMessage{
			ID:        c.Expense.ID,
			Title:     c.Expense.Title,
			DueDate:   due.Format("2006-01-02"),
			Balance:   c.Expense.Balance().Units,
			Overdue:   today.After(due.Time),
			Timestamp: time.Now(),
		}

		if err := p.publisher.PublishReminder(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish reminder",
				"id", c.Expense.ID, "error", err)
			continue
		}

		if err := p.storage.MarkReminded(ctx, c.Expense.ID, today); err != nil {
			slog.ErrorContext(ctx, "Failed to mark expense reminded",
				"id", c.Expense.ID, "error", err)
		}

		slog.InfoContext(ctx, "Reminder sent",
			"id", c.Expense.ID,
			"title", c.Expense.Title,
			"due_date", msg.DueDate,
			"overdue", msg.Overdue)
	}
}

// ReminderDue reports whether a reminder should go out today. It requires a
// scheduled expense with the flag set and a due date, today within the lead
// window (or past due), and no reminder already sent today.
func ReminderDue(e core.Expense, lastReminded, today core.Date, leadDays int) bool {
	if e.Status != core.StatusScheduled || e.Scheduled == nil {
		return false
	}
	if !e.Scheduled.Reminder || e.Scheduled.DueDate.IsEmpty() {
		return false
	}
	windowStart := e.Scheduled.DueDate.AddDate(0, 0, -leadDays)
	if today.Before(windowStart) {
		return false
	}
	if !lastReminded.IsEmpty() && !lastReminded.Before(today.Time) {
		return false
	}
	return true
}
