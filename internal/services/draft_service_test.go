package services

import (
	"context"
	"testing"

	"tenantreport/internal/storage"
)

func TestSaveDraftCreatesAndEnqueues(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewDraftService(repo, nil) // no broker: queue alone drives the sync
	ctx := context.Background()

	snap := storage.Snapshot{ComparisonBase: 250}
	snap.StepOne.VisitorsCount = 3

	id, version, err := svc.SaveDraft(ctx, 0, snap)
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if id == 0 || version != 1 {
		t.Fatalf("id = %d version = %d", id, version)
	}

	stats, err := repo.GetQueueStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Pending != 1 {
		t.Fatalf("stats = %+v, want one pending item", stats)
	}
}

func TestSaveDraftUpdatesExisting(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewDraftService(repo, nil)
	ctx := context.Background()

	id, _, err := svc.SaveDraft(ctx, 0, storage.Snapshot{})
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}

	snap := storage.Snapshot{}
	snap.StepOne.ReceiptsCount = 9
	sameID, version, err := svc.SaveDraft(ctx, id, snap)
	if err != nil {
		t.Fatalf("save draft again: %v", err)
	}
	if sameID != id {
		t.Fatalf("id changed: %d -> %d", id, sameID)
	}
	if version != 2 {
		t.Fatalf("version = %d, want 2", version)
	}

	d, err := repo.GetDraft(ctx, id)
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if d.StepOne.ReceiptsCount != 9 {
		t.Errorf("receipts = %d", d.StepOne.ReceiptsCount)
	}

	// Re-save keeps a single queue entry at the latest version
	stats, _ := repo.GetQueueStats(ctx)
	if stats.Pending != 1 {
		t.Errorf("stats = %+v, want exactly one pending item", stats)
	}
}
