// Package storage persists draft report snapshots and the sync queue in
// SQLite. Step data is stored as JSON documents keyed by draft.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tenantreport/internal/stores"

	_ "modernc.org/sqlite"
)

var ErrDraftNotFound = errors.New("draft not found")

// sqliteTimestamp matches the text produced by CURRENT_TIMESTAMP.
const sqliteTimestamp = "2006-01-02 15:04:05"

// Queue item states.
const (
	QueuePending    = "pending"
	QueueProcessing = "processing"
	QueueCompleted  = "completed"
	QueueFailed     = "failed"
)

// Draft is a persisted report in progress.
type Draft struct {
	ID             int64
	Version        int64
	Status         string
	RemoteReportID sql.NullInt64
	StepOne        stores.StepOneData
	StepTwo        stores.StepTwoData
	StepThree      stores.StepThreeData
	ComparisonBase float64
	RentPercentage float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Snapshot returns the writable part of the draft, e.g. for a re-save.
func (d Draft) Snapshot() Snapshot {
	return Snapshot{
		StepOne:        d.StepOne,
		StepTwo:        d.StepTwo,
		StepThree:      d.StepThree,
		ComparisonBase: d.ComparisonBase,
		RentPercentage: d.RentPercentage,
	}
}

// Snapshot is the writable part of a draft.
type Snapshot struct {
	StepOne        stores.StepOneData
	StepTwo        stores.StepTwoData
	StepThree      stores.StepThreeData
	ComparisonBase float64
	RentPercentage float64
}

// PendingDraft is the minimal queue view handed to the sync worker.
type PendingDraft struct {
	QueueID  int64
	DraftID  int64
	Version  int64
	Attempts int64
}

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

// CreateDraft stores a new snapshot and returns the draft ID.
func (r *SQLiteRepository) CreateDraft(ctx context.Context, s Snapshot) (int64, error) {
	one, two, three, err := marshalSteps(s)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO drafts (step_one, step_two, step_three, comparison_base, rent_percentage)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		one, two, three, s.ComparisonBase, s.RentPercentage).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create draft: %w", err)
	}

	slog.InfoContext(ctx, "Draft created", "id", id)
	return id, nil
}

// UpdateDraft overwrites a draft's snapshot and bumps its version. The new
// version is returned.
func (r *SQLiteRepository) UpdateDraft(ctx context.Context, id int64, s Snapshot) (int64, error) {
	one, two, three, err := marshalSteps(s)
	if err != nil {
		return 0, err
	}

	var version int64
	err = r.db.QueryRowContext(ctx, `
		UPDATE drafts
		SET step_one = ?, step_two = ?, step_three = ?,
		    comparison_base = ?, rent_percentage = ?,
		    version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING version`,
		one, two, three, s.ComparisonBase, s.RentPercentage, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrDraftNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("update draft: %w", err)
	}
	return version, nil
}

// GetDraft loads one draft with its step snapshots decoded.
func (r *SQLiteRepository) GetDraft(ctx context.Context, id int64) (Draft, error) {
	var (
		d               Draft
		one, two, three []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, version, status, remote_report_id,
		       step_one, step_two, step_three,
		       comparison_base, rent_percentage, created_at, updated_at
		FROM drafts WHERE id = ?`, id).Scan(
		&d.ID, &d.Version, &d.Status, &d.RemoteReportID,
		&one, &two, &three,
		&d.ComparisonBase, &d.RentPercentage, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{}, ErrDraftNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("get draft: %w", err)
	}

	if err := json.Unmarshal(one, &d.StepOne); err != nil {
		return Draft{}, fmt.Errorf("decode step one: %w", err)
	}
	if err := json.Unmarshal(two, &d.StepTwo); err != nil {
		return Draft{}, fmt.Errorf("decode step two: %w", err)
	}
	if err := json.Unmarshal(three, &d.StepThree); err != nil {
		return Draft{}, fmt.Errorf("decode step three: %w", err)
	}
	return d, nil
}

// MarkSubmitted records a successful submission against a draft.
func (r *SQLiteRepository) MarkSubmitted(ctx context.Context, id, remoteReportID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE drafts
		SET status = 'Submitted', remote_report_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, remoteReportID, id)
	if err != nil {
		return fmt.Errorf("mark draft submitted: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDraftNotFound
	}

	slog.InfoContext(ctx, "Draft marked as submitted", "id", id, "report_id", remoteReportID)
	return nil
}

// Enqueue puts a draft on the sync queue, or resets its existing queue entry
// back to pending when the draft was saved again.
func (r *SQLiteRepository) Enqueue(ctx context.Context, draftID, version int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_queue (draft_id, version)
		VALUES (?, ?)
		ON CONFLICT (draft_id) DO UPDATE SET
		    version = excluded.version,
		    status = 'pending',
		    last_error = NULL,
		    updated_at = CURRENT_TIMESTAMP`,
		draftID, version)
	if err != nil {
		return fmt.Errorf("enqueue draft sync: %w", err)
	}

	slog.InfoContext(ctx, "Draft queued for sync", "draft_id", draftID, "version", version)
	return nil
}

// DequeueSyncBatch returns the oldest pending queue items, up to limit.
func (r *SQLiteRepository) DequeueSyncBatch(ctx context.Context, limit int) ([]PendingDraft, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, draft_id, version, attempts
		FROM sync_queue
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT ?`, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("dequeue sync batch: %w", err)
	}
	defer rows.Close()

	var batch []PendingDraft
	for rows.Next() {
		var p PendingDraft
		if err := rows.Scan(&p.QueueID, &p.DraftID, &p.Version, &p.Attempts); err != nil {
			return nil, fmt.Errorf("scan queue item: %w", err)
		}
		batch = append(batch, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue items: %w", err)
	}
	return batch, nil
}

// MarkProcessing claims a queue item for the current worker pass.
func (r *SQLiteRepository) MarkProcessing(ctx context.Context, queueID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sync_queue
		SET status = 'processing', attempts = attempts + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, queueID)
	if err != nil {
		return fmt.Errorf("mark queue item processing: %w", err)
	}
	return nil
}

// MarkCompleted finishes a queue item after a successful sync.
func (r *SQLiteRepository) MarkCompleted(ctx context.Context, queueID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sync_queue
		SET status = 'completed', last_error = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, queueID)
	if err != nil {
		return fmt.Errorf("mark queue item completed: %w", err)
	}

	slog.InfoContext(ctx, "Sync queue item completed", "queue_id", queueID)
	return nil
}

// MarkFailed records a sync failure. The item returns to pending so a later
// pass can retry it.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, queueID int64, cause string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sync_queue
		SET status = 'pending', last_error = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, cause, queueID)
	if err != nil {
		return fmt.Errorf("mark queue item failed: %w", err)
	}

	slog.WarnContext(ctx, "Sync queue item failed", "queue_id", queueID, "error", cause)
	return nil
}

// QueueStats is the per-status breakdown of the sync queue.
type QueueStats struct {
	Pending    int64
	Processing int64
	Completed  int64
	Failed     int64
}

// GetQueueStats counts queue items by status.
func (r *SQLiteRepository) GetQueueStats(ctx context.Context) (QueueStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM sync_queue GROUP BY status`)
	if err != nil {
		return QueueStats{}, fmt.Errorf("get queue stats: %w", err)
	}
	defer rows.Close()

	var stats QueueStats
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return QueueStats{}, fmt.Errorf("scan queue stats: %w", err)
		}
		switch status {
		case QueuePending:
			stats.Pending = count
		case QueueProcessing:
			stats.Processing = count
		case QueueCompleted:
			stats.Completed = count
		case QueueFailed:
			stats.Failed = count
		}
	}
	if err := rows.Err(); err != nil {
		return QueueStats{}, fmt.Errorf("iterate queue stats: %w", err)
	}
	return stats, nil
}

// MarkPermanentlyFailed parks a queue item once its retry budget is spent.
// It stays visible for inspection until RetryFailed requeues it.
func (r *SQLiteRepository) MarkPermanentlyFailed(ctx context.Context, queueID int64, cause string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sync_queue
		SET status = 'failed', last_error = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, cause, queueID)
	if err != nil {
		return fmt.Errorf("mark queue item permanently failed: %w", err)
	}

	slog.ErrorContext(ctx, "Sync queue item permanently failed", "queue_id", queueID, "error", cause)
	return nil
}

// RetryFailed puts every permanently failed item back on the queue with a
// fresh attempt counter.
func (r *SQLiteRepository) RetryFailed(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sync_queue
		SET status = 'pending', attempts = 0, last_error = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE status = 'failed'`)
	if err != nil {
		return 0, fmt.Errorf("retry failed items: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count retried items: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Failed sync items requeued", "count", n)
	}
	return n, nil
}

// ResetStaleProcessing requeues items stuck in processing longer than maxAge,
// e.g. after a worker crash.
func (r *SQLiteRepository) ResetStaleProcessing(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UTC().Format(sqliteTimestamp)
	res, err := r.db.ExecContext(ctx, `
		UPDATE sync_queue
		SET status = 'pending', updated_at = CURRENT_TIMESTAMP
		WHERE status = 'processing' AND updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("reset stale processing items: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count reset items: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Stale sync items reset to pending", "count", n)
	}
	return n, nil
}

// CleanupCompleted removes completed queue items older than maxAge.
func (r *SQLiteRepository) CleanupCompleted(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UTC().Format(sqliteTimestamp)
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM sync_queue
		WHERE status = 'completed' AND updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup completed items: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count cleaned items: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Completed sync items cleaned up", "count", n)
	}
	return n, nil
}

func marshalSteps(s Snapshot) (one, two, three []byte, err error) {
	if one, err = json.Marshal(s.StepOne); err != nil {
		return nil, nil, nil, fmt.Errorf("encode step one: %w", err)
	}
	if two, err = json.Marshal(s.StepTwo); err != nil {
		return nil, nil, nil, fmt.Errorf("encode step two: %w", err)
	}
	if three, err = json.Marshal(s.StepThree); err != nil {
		return nil, nil, nil, fmt.Errorf("encode step three: %w", err)
	}
	return one, two, three, nil
}
