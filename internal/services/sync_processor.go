package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tenantreport/internal/metrics"
	"tenantreport/internal/report"
	"tenantreport/internal/storage"
)

// SyncProcessorConfig holds configuration for the sync processor.
type SyncProcessorConfig struct {
	// PollInterval is how often to check for pending drafts (default: 10s)
	PollInterval time.Duration

	// BatchSize is the max number of drafts to process per poll cycle (default: 10)
	BatchSize int

	// MaxRetries is the maximum attempts before a queue item stays failed (default: 3)
	MaxRetries int

	// StaleAge is how long an item may sit in processing before a crashed
	// worker is assumed (default: 5m)
	StaleAge time.Duration

	// CleanupInterval is how often to clean up completed items (default: 1h)
	CleanupInterval time.Duration

	// CleanupAge is how old completed items must be before cleanup (default: 24h)
	CleanupAge time.Duration
}

// DefaultSyncProcessorConfig returns sensible defaults.
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval:    10 * time.Second,
		BatchSize:       10,
		MaxRetries:      3,
		StaleAge:        5 * time.Minute,
		CleanupInterval: 1 * time.Hour,
		CleanupAge:      24 * time.Hour,
	}
}

// SyncProcessor pushes locally saved drafts to the backend in the
// background. It polls the SQLite queue, assembles a Draft payload from the
// persisted snapshot and submits it.
type SyncProcessor struct {
	storage   *storage.SQLiteRepository
	submitter report.Submitter
	config    SyncProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncProcessor(
	storage *storage.SQLiteRepository,
	submitter report.Submitter,
	config SyncProcessorConfig,
) *SyncProcessor {
	return &SyncProcessor{
		storage:   storage,
		submitter: submitter,
		config:    config,
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	// Requeue items a previous run left in processing
	if _, err := p.storage.ResetStaleProcessing(ctx, p.config.StaleAge); err != nil {
		slog.WarnContext(ctx, "Failed to reset stale processing items", "error", err)
	}

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running.
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Kick triggers an immediate pass outside the poll schedule, e.g. when an
// AMQP notification arrives.
func (p *SyncProcessor) Kick(ctx context.Context) {
	p.ProcessBatch(ctx)
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	pollTicker := time.NewTicker(p.config.PollInterval)
	defer pollTicker.Stop()

	cleanupTicker := time.NewTicker(p.config.CleanupInterval)
	defer cleanupTicker.Stop()

	// Process immediately on startup
	p.ProcessBatch(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			p.ProcessBatch(ctx)
		case <-cleanupTicker.C:
			p.cleanupCompleted(ctx)
		}
	}
}

// ProcessBatch handles one batch of pending queue items.
func (p *SyncProcessor) ProcessBatch(ctx context.Context) {
	items, err := p.storage.DequeueSyncBatch(ctx, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to dequeue sync batch", "error", err)
		return
	}

	if len(items) == 0 {
		return
	}

	slog.DebugContext(ctx, "Processing sync batch", "count", len(items))

	for _, item := range items {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := p.storage.MarkProcessing(ctx, item.QueueID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark item as processing",
				"queue_id", item.QueueID, "error", err)
			continue
		}

		if err := p.syncDraft(ctx, item); err != nil {
			metrics.DraftSyncFailed()
			p.handleFailure(ctx, item, err)
		} else {
			metrics.DraftSyncSucceeded()
			p.handleSuccess(ctx, item)
		}
	}
}

// syncDraft pushes one draft snapshot to the backend.
func (p *SyncProcessor) syncDraft(ctx context.Context, item storage.PendingDraft) error {
	draft, err := p.storage.GetDraft(ctx, item.DraftID)
	if err != nil {
		return fmt.Errorf("get draft %d: %w", item.DraftID, err)
	}

	// A draft submitted through the wizard no longer needs a background sync
	if draft.Status == string(report.StatusSubmitted) {
		slog.InfoContext(ctx, "Draft already submitted, skipping sync",
			"draft_id", item.DraftID)
		return nil
	}

	scalars := report.Scalars{
		ComparisonBase: draft.ComparisonBase,
		RentPercentage: draft.RentPercentage,
	}
	payload := report.Assemble(draft.StepOne, draft.StepTwo, draft.StepThree, scalars, report.StatusDraft)

	result, err := p.submitter.SubmitReport(ctx, payload)
	if err != nil {
		return fmt.Errorf("submit draft %d: %w", item.DraftID, err)
	}

	slog.InfoContext(ctx, "Draft synced to backend",
		"draft_id", item.DraftID,
		"version", item.Version,
		"report_id", result.ReportID)

	return nil
}

func (p *SyncProcessor) handleSuccess(ctx context.Context, item storage.PendingDraft) {
	if err := p.storage.MarkCompleted(ctx, item.QueueID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync complete",
			"queue_id", item.QueueID, "error", err)
	}
}

// handleFailure returns the item to pending, or leaves it failed once the
// retry budget is spent.
func (p *SyncProcessor) handleFailure(ctx context.Context, item storage.PendingDraft, processErr error) {
	slog.WarnContext(ctx, "Draft sync failed",
		"queue_id", item.QueueID,
		"draft_id", item.DraftID,
		"attempt", item.Attempts+1,
		"error", processErr)

	if item.Attempts+1 >= int64(p.config.MaxRetries) {
		if err := p.storage.MarkPermanentlyFailed(ctx, item.QueueID, processErr.Error()); err != nil {
			slog.ErrorContext(ctx, "Failed to mark sync as failed",
				"queue_id", item.QueueID, "error", err)
		}
		slog.ErrorContext(ctx, "Draft sync failed permanently after max retries",
			"queue_id", item.QueueID,
			"draft_id", item.DraftID,
			"attempts", item.Attempts+1)
		return
	}

	if err := p.storage.MarkFailed(ctx, item.QueueID, processErr.Error()); err != nil {
		slog.ErrorContext(ctx, "Failed to record sync failure",
			"queue_id", item.QueueID, "error", err)
	}
}

func (p *SyncProcessor) cleanupCompleted(ctx context.Context) {
	if _, err := p.storage.CleanupCompleted(ctx, p.config.CleanupAge); err != nil {
		slog.ErrorContext(ctx, "Failed to cleanup completed syncs", "error", err)
	}
}

// Stats returns the current queue breakdown.
func (p *SyncProcessor) Stats(ctx context.Context) (storage.QueueStats, error) {
	return p.storage.GetQueueStats(ctx)
}

// RetryFailed resets all permanently failed items for retry.
func (p *SyncProcessor) RetryFailed(ctx context.Context) (int64, error) {
	return p.storage.RetryFailed(ctx)
}
