package services

import (
	"context"
	"fmt"
	"log/slog"

	"tenantreport/internal/amqp"
	"tenantreport/internal/storage"
)

// DraftService saves drafts locally and notifies the sync worker. The SQLite
// queue is the source of truth; the AMQP notification only wakes the worker
// early, so a publish failure never fails a save.
type DraftService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewDraftService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *DraftService {
	return &DraftService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// SaveDraft persists the snapshot and enqueues it for background sync. When
// draftID is zero a new draft is created; the draft ID and new version are
// returned.
func (s *DraftService) SaveDraft(ctx context.Context, draftID int64, snap storage.Snapshot) (int64, int64, error) {
	var version int64 = 1
	if draftID == 0 {
		id, err := s.storage.CreateDraft(ctx, snap)
		if err != nil {
			return 0, 0, fmt.Errorf("save draft: %w", err)
		}
		draftID = id
	} else {
		v, err := s.storage.UpdateDraft(ctx, draftID, snap)
		if err != nil {
			return 0, 0, fmt.Errorf("save draft: %w", err)
		}
		version = v
	}

	if err := s.storage.Enqueue(ctx, draftID, version); err != nil {
		return 0, 0, fmt.Errorf("enqueue draft: %w", err)
	}

	if err := s.publishSyncMessage(ctx, draftID, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish draft sync message",
			"draft_id", draftID, "error", err)
		// Don't fail the save, the queue poller will pick the draft up
	}

	return draftID, version, nil
}

func (s *DraftService) publishSyncMessage(ctx context.Context, draftID, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}

	return s.amqpClient.PublishDraftSync(ctx, draftID, version)
}

// Close closes both storage and AMQP connections.
func (s *DraftService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close draft service: %v", errs)
	}

	return nil
}
