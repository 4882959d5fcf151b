package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tenantreport/internal/report"
)

// Interface conformance with the report ports.
var (
	_ report.Submitter     = (*Client)(nil)
	_ report.PeriodChecker = (*Client)(nil)
	_ report.PDFDownloader = (*Client)(nil)
)

const dateOnly = "2006-01-02"

// ReportSummary is one row of the tenant's report list.
type ReportSummary struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	StartAt   string `json:"start_at"`
	EndAt     string `json:"end_at"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// SubmitReport posts an assembled payload to the backend.
func (c *Client) SubmitReport(ctx context.Context, p report.Payload) (report.SubmitResult, error) {
	var payload struct {
		ReportID int64 `json:"reportId"`
	}
	msg, err := c.doJSON(ctx, http.MethodPost, "/tenants/reports", p, &payload)
	if err != nil {
		return report.SubmitResult{}, fmt.Errorf("submit report: %w", err)
	}
	return report.SubmitResult{ReportID: payload.ReportID, Message: msg}, nil
}

// PeriodExists asks whether a report already covers the given range. Dates
// go over the wire date-only.
func (c *Client) PeriodExists(ctx context.Context, start, end time.Time) (bool, error) {
	body := map[string]string{
		"start_at": start.Format(dateOnly),
		"end_at":   end.Format(dateOnly),
	}
	var payload struct {
		Exists bool `json:"exists"`
	}
	if _, err := c.doJSON(ctx, http.MethodPost, "/tenants/reports/exists", body, &payload); err != nil {
		return false, fmt.Errorf("check period: %w", err)
	}
	return payload.Exists, nil
}

// ListReports fetches one page of the tenant's submitted reports.
func (c *Client) ListReports(ctx context.Context, page int) ([]ReportSummary, PageMeta, error) {
	var reports []ReportSummary
	meta, err := c.doList(ctx, fmt.Sprintf("/tenants/reports?page=%d", page), &reports)
	if err != nil {
		return nil, PageMeta{}, fmt.Errorf("list reports: %w", err)
	}
	return reports, meta, nil
}

// DownloadPDF streams a report's PDF export into w.
func (c *Client) DownloadPDF(ctx context.Context, reportID int64, w io.Writer) error {
	resp, err := c.send(ctx, http.MethodGet, fmt.Sprintf("/tenants/reports/%d/pdf", reportID), nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download pdf: unexpected status %d", resp.StatusCode)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download pdf: %w", err)
	}
	return nil
}

// SavePDF downloads a report's PDF into dir as report_{id}.pdf and returns
// the written path.
func (c *Client) SavePDF(ctx context.Context, reportID int64, dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("report_%d.pdf", reportID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create pdf file: %w", err)
	}
	defer f.Close()

	if err := c.DownloadPDF(ctx, reportID, f); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
