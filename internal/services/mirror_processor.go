package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nozze/internal/core"
	"nozze/internal/storage"
)

// ExpenseMirror is the outbound port for the spreadsheet mirror.
type ExpenseMirror interface {
	AppendExpense(ctx context.Context, e core.Expense) (rowRef string, err error)
}

// MirrorProcessorConfig holds configuration for the mirror processor.
type MirrorProcessorConfig struct {
	// PollInterval is how often the catch-up scan runs (default: 1m)
	PollInterval time.Duration

	// BatchSize is the max number of rows mirrored per scan (default: 10)
	BatchSize int
}

func DefaultMirrorProcessorConfig() MirrorProcessorConfig {
	return MirrorProcessorConfig{
		PollInterval: time.Minute,
		BatchSize:    10,
	}
}

// MirrorProcessor copies changed expenses into the shared spreadsheet. The
// AMQP consumer drives MirrorExpense per change message; the periodic scan
// catches rows whose change message was lost.
type MirrorProcessor struct {
	storage *storage.SQLiteRepository
	mirror  ExpenseMirror
	config  MirrorProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewMirrorProcessor(repo *storage.SQLiteRepository, mirror ExpenseMirror, config MirrorProcessorConfig) *MirrorProcessor {
	return &MirrorProcessor{
		storage: repo,
		mirror:  mirror,
		config:  config,
	}
}

// Start begins the periodic catch-up loop. Returns an error if already
// running.
func (p *MirrorProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("mirror processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Mirror processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *MirrorProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Mirror processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Mirror processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

func (p *MirrorProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *MirrorProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// Catch up immediately on startup
	p.processBatch(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.processBatch(ctx)
		}
	}
}

// MirrorExpense mirrors one expense by id and records the outcome. Used by
// the AMQP consumer; a returned error requeues the message.
func (p *MirrorProcessor) MirrorExpense(ctx context.Context, id int64) error {
	expense, err := p.storage.GetExpense(ctx, id)
	if err != nil {
		// The row may be gone by the time a stale message arrives.
		slog.WarnContext(ctx, "Expense not found for mirroring, skipping",
			"id", id, "error", err)
		return nil
	}

	ref, err := p.mirror.AppendExpense(ctx, expense)
	if err != nil {
		if markErr := p.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error",
				"id", id, "error", markErr)
		}
		return fmt.Errorf("mirror expense %d: %w", id, err)
	}

	if err := p.storage.MarkSynced(ctx, id); err != nil {
		slog.WarnContext(ctx, "Failed to mark expense as synced",
			"id", id, "error", err)
		// The mirror write succeeded; the catch-up scan will retry the
		// bookkeeping, at worst duplicating a spreadsheet row.
	}

	slog.InfoContext(ctx, "Mirrored expense to spreadsheet",
		"id", id, "row_ref", ref)

	return nil
}

func (p *MirrorProcessor) processBatch(ctx context.Context) {
	ids, err := p.storage.GetPendingSyncIDs(ctx, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list pending mirror rows", "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	slog.DebugContext(ctx, "Processing mirror batch", "count", len(ids))

	for _, id := range ids {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := p.MirrorExpense(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Mirror attempt failed", "id", id, "error", err)
		}
	}
}
