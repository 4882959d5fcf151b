package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"golang.org/x/sync/errgroup"

	"tenantreport/internal/report"
)

var _ report.FileUploader = (*Client)(nil)

// uploadConcurrency caps parallel attachment uploads.
const uploadConcurrency = 4

// FileArg names one attachment to upload.
type FileArg struct {
	Name   string
	Reader io.Reader
}

// UploadFile stores one attachment and returns its descriptor; the returned
// ID goes into the owning row's file_ids.
func (c *Client) UploadFile(ctx context.Context, name string, r io.Reader) (report.UploadedFile, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return report.UploadedFile{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return report.UploadedFile{}, fmt.Errorf("read file %s: %w", name, err)
	}
	if err := mw.Close(); err != nil {
		return report.UploadedFile{}, fmt.Errorf("finish multipart body: %w", err)
	}

	resp, err := c.send(ctx, http.MethodPost, "/storage/upload", buf.Bytes(), mw.FormDataContentType())
	if err != nil {
		return report.UploadedFile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return report.UploadedFile{}, fmt.Errorf("upload %s: unexpected status %d", name, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return report.UploadedFile{}, fmt.Errorf("decode upload response: %w", err)
	}
	if !env.Success {
		if env.Message != "" {
			return report.UploadedFile{}, errors.New(env.Message)
		}
		return report.UploadedFile{}, errors.New("upload failed")
	}

	var file report.UploadedFile
	if err := json.Unmarshal(env.Payload, &file); err != nil {
		return report.UploadedFile{}, fmt.Errorf("decode uploaded file: %w", err)
	}
	return file, nil
}

// UploadFiles uploads several attachments concurrently and returns their
// descriptors in input order. The first failure cancels the remaining
// uploads.
func (c *Client) UploadFiles(ctx context.Context, files []FileArg) ([]report.UploadedFile, error) {
	out := make([]report.UploadedFile, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, f := range files {
		g.Go(func() error {
			uploaded, err := c.UploadFile(ctx, f.Name, f.Reader)
			if err != nil {
				return err
			}
			out[i] = uploaded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
