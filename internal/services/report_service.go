// Package services orchestrates the report wizard: step validation, final
// submission, local draft persistence and the background sync loop.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tenantreport/internal/metrics"
	"tenantreport/internal/report"
	"tenantreport/internal/storage"
	"tenantreport/internal/stores"
)

var ErrSubmitInProgress = errors.New("submission already in progress")

// ReportService drives the final submission. One instance owns one wizard's
// stores; overlapping Submit calls on the same instance are rejected.
type ReportService struct {
	stepOne   *stores.StepOne
	stepTwo   *stores.StepTwo
	stepThree *stores.StepThree
	validator *FormValidator
	submitter report.Submitter

	// Optional local persistence; nil when the caller works purely in memory.
	repo    *storage.SQLiteRepository
	draftID int64

	mu           sync.Mutex
	isSubmitting bool
}

func NewReportService(
	one *stores.StepOne,
	two *stores.StepTwo,
	three *stores.StepThree,
	submitter report.Submitter,
) *ReportService {
	return &ReportService{
		stepOne:   one,
		stepTwo:   two,
		stepThree: three,
		validator: NewFormValidator(),
		submitter: submitter,
	}
}

// WithDraft attaches the local draft the service keeps in step with the
// stores. After a successful submit the draft is marked Submitted.
func (s *ReportService) WithDraft(repo *storage.SQLiteRepository, draftID int64) *ReportService {
	s.repo = repo
	s.draftID = draftID
	return s
}

// Submit validates the current snapshots, assembles the final payload and
// posts it. Validation failure returns the first problem without touching
// the network; a backend failure leaves the stores untouched. On success the
// just-submitted snapshots are written back so derived totals are current,
// and the local draft (when attached) is marked Submitted.
func (s *ReportService) Submit(ctx context.Context, scalars report.Scalars) (report.SubmitResult, error) {
	s.mu.Lock()
	if s.isSubmitting {
		s.mu.Unlock()
		return report.SubmitResult{}, ErrSubmitInProgress
	}
	s.isSubmitting = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.isSubmitting = false
		s.mu.Unlock()
	}()

	one := s.stepOne.Snapshot()
	two := s.stepTwo.Snapshot()
	three := s.stepThree.Snapshot()

	if err := s.validator.ValidateStepTwo(two); err != nil {
		return report.SubmitResult{}, err
	}
	if err := s.validator.ValidateStepThree(three); err != nil {
		return report.SubmitResult{}, err
	}

	payload := report.Assemble(one, two, three, scalars, report.StatusSubmitted)

	result, err := s.submitter.SubmitReport(ctx, payload)
	if err != nil {
		metrics.SubmissionFailed()
		return report.SubmitResult{}, fmt.Errorf("submit report: %w", err)
	}
	metrics.SubmissionSucceeded()

	// Write the submitted snapshots back; Set recomputes the table totals
	s.stepOne.Set(one)
	s.stepTwo.Set(two)
	s.stepThree.Set(three)

	if s.repo != nil && s.draftID != 0 {
		if err := s.repo.MarkSubmitted(ctx, s.draftID, result.ReportID); err != nil {
			slog.WarnContext(ctx, "Failed to mark local draft submitted",
				"draft_id", s.draftID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Report submitted",
		"report_id", result.ReportID,
		"message", result.Message)

	return result, nil
}
