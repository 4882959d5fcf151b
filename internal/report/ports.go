package report

import (
	"context"
	"io"
	"time"
)

// Ports for outbound adapters. The core never talks to the network directly;
// the api package implements these against the backend.
type (
	// Submitter posts an assembled payload.
	Submitter interface {
		SubmitReport(ctx context.Context, p Payload) (SubmitResult, error)
	}

	// PeriodChecker asks the backend whether a report already covers the
	// given date range.
	PeriodChecker interface {
		PeriodExists(ctx context.Context, start, end time.Time) (bool, error)
	}

	// FileUploader stores an attachment and returns its identifier for row
	// file_ids association.
	FileUploader interface {
		UploadFile(ctx context.Context, name string, r io.Reader) (UploadedFile, error)
	}

	// PDFDownloader streams a submitted report's PDF export.
	PDFDownloader interface {
		DownloadPDF(ctx context.Context, reportID int64, w io.Writer) error
	}
)
