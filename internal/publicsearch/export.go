// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publicsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/ppubs/internal/httputil"
	"github.com/pdiddy/ppubs/pkg/types"
)

const (
	imageViewerPath  = "/dirsearch-public/internal/print/imageviewer"
	printProcessPath = "/dirsearch-public/internal/print/print-process"
	printSavePath    = "/dirsearch-public/internal/print/save/"
)

// ExportState identifies a stage of the document export pipeline, used in
// ExportError to report where a failure occurred.
type ExportState string

const (
	StateIdle         ExportState = "IDLE"
	StateJobRequested ExportState = "JOB_REQUESTED"
	StatePolling      ExportState = "POLLING"
	StateCompleted    ExportState = "COMPLETED"
)

// printStatusCompleted is the terminal print-job status.
const printStatusCompleted = "COMPLETED"

// printJobRequest is the body submitted to start a print job.
type printJobRequest struct {
	CaseID      json.Number `json:"caseId"`
	PageKeys    []string    `json:"pageKeys"`
	PatentGUID  string      `json:"patentGuid"`
	SaveOrPrint string      `json:"saveOrPrint"`
	Source      string      `json:"source"`
}

// printJobStatus is one entry of the poll response.
type printJobStatus struct {
	PrintStatus string `json:"printStatus"`
	PDFName     string `json:"pdfName"`
}

// PageKeys returns the per-page image keys for a document: one key per
// page, 1-indexed, with fixed-width zero-padded page numbers.
func PageKeys(imageLocation string, pageCount int) []string {
	keys := make([]string, 0, pageCount)
	for page := 1; page <= pageCount; page++ {
		keys = append(keys, fmt.Sprintf("%s/%08d.tif", imageLocation, page))
	}
	return keys
}

// DownloadImage exports the page images of one bibliographic record as a
// PDF under destDir, named {guid}.pdf, and returns the file path.
//
// If the target file already exists the path is returned immediately with
// no network activity; existence is the completion marker, and the file
// is only ever created by a full successful download (it is written to a
// temp path and renamed at the end, so a partial write never survives as
// the target).
//
// Otherwise the record's page-key list is bundled into a print-job
// request; the job is polled at a fixed interval until it reports
// COMPLETED (bounded by the configured poll cap), and the resulting
// artifact is streamed chunk-wise to disk. One export attempt per call:
// callers wanting retries call again and the existence check prevents
// duplicate downloads of completed exports.
func (c *Client) DownloadImage(ctx context.Context, bib *types.PatentBiblio, destDir string) (string, error) {
	outPath := filepath.Join(destDir, bib.GUID+".pdf")
	if _, err := os.Stat(outPath); err == nil {
		return outPath, nil
	}

	sess, err := c.ensureSession(ctx)
	if err != nil {
		return "", err
	}

	jobID, err := c.requestSave(ctx, sess, bib)
	if err != nil {
		if !isAuthStatus(err) {
			return "", err
		}
		// Authentication-style failure: one bootstrap, one resubmission.
		sess, err = c.Bootstrap(ctx)
		if err != nil {
			return "", err
		}
		jobID, err = c.requestSave(ctx, sess, bib)
		if err != nil {
			return "", err
		}
	}

	status, err := c.pollPrintJob(ctx, jobID)
	if err != nil {
		return "", err
	}

	if err := c.streamSave(ctx, status.PDFName, destDir, outPath); err != nil {
		return "", err
	}
	return outPath, nil
}

// isAuthStatus reports whether err is an ExportError caused by an
// authentication-style HTTP status, the only submission failure the
// caller recovers from with a bootstrap and resubmission.
func isAuthStatus(err error) bool {
	var exportErr *ExportError
	if !errors.As(err, &exportErr) {
		return false
	}
	return exportErr.StatusCode == http.StatusForbidden ||
		exportErr.StatusCode == http.StatusUnauthorized
}

// requestSave submits the print job and returns the server-issued job
// identifier. An internal-error status is fatal and surfaces as a
// ServiceError carrying the raw response text; any other non-success
// status is reported as an ExportError carrying the status for the
// caller to classify.
func (c *Client) requestSave(ctx context.Context, sess *Session, bib *types.PatentBiblio) (string, error) {
	body := printJobRequest{
		CaseID:      sess.CaseID,
		PageKeys:    PageKeys(bib.ImageLocation, bib.PageCount()),
		PatentGUID:  bib.GUID,
		SaveOrPrint: "save",
		Source:      bib.Type,
	}

	resp, err := c.issue(ctx, http.MethodPost, c.base+imageViewerPath, body)
	if err != nil {
		return "", &ExportError{State: StateJobRequested, Err: err}
	}
	text := readBody(resp)

	switch {
	case resp.StatusCode == http.StatusInternalServerError:
		return "", &ServiceError{Message: text}
	case resp.StatusCode != http.StatusOK:
		return "", &ExportError{
			State:      StateJobRequested,
			StatusCode: resp.StatusCode,
			ServerText: text,
			Err:        fmt.Errorf("print job submission returned HTTP %d", resp.StatusCode),
		}
	}
	return text, nil
}

// pollPrintJob polls the job status through the retrying executor until
// it reports COMPLETED, sleeping the configured interval between polls.
// The loop is bounded: exhausting the poll cap abandons the job.
func (c *Client) pollPrintJob(ctx context.Context, jobID string) (printJobStatus, error) {
	var last printJobStatus
	for poll := 0; poll < c.maxPolls; poll++ {
		if poll > 0 {
			select {
			case <-ctx.Done():
				return last, &ExportError{State: StatePolling, Err: ctx.Err()}
			case <-time.After(c.pollInterval):
			}
		}

		resp, err := c.do(ctx, http.MethodPost, c.base+printProcessPath, []string{jobID})
		if err != nil {
			return last, &ExportError{State: StatePolling, Err: err}
		}
		if resp.StatusCode != http.StatusOK {
			return last, &ExportError{
				State:      StatePolling,
				StatusCode: resp.StatusCode,
				ServerText: readBody(resp),
				Err:        fmt.Errorf("print job status returned HTTP %d", resp.StatusCode),
			}
		}

		var statuses []printJobStatus
		err = json.NewDecoder(resp.Body).Decode(&statuses)
		resp.Body.Close()
		if err != nil {
			return last, &ExportError{State: StatePolling, Err: fmt.Errorf("decoding print job status: %w", err)}
		}
		if len(statuses) == 0 {
			return last, &ExportError{State: StatePolling, Err: fmt.Errorf("empty print job status for job %q", jobID)}
		}

		last = statuses[0]
		if last.PrintStatus == printStatusCompleted {
			return last, nil
		}
	}
	return last, &ExportError{
		State: StatePolling,
		Err:   fmt.Errorf("print job %q not completed after %d polls (last status %q)", jobID, c.maxPolls, last.PrintStatus),
	}
}

// streamSave downloads the finished artifact by name, writing chunks to a
// temp file in destDir as they arrive and renaming to outPath only on
// full success. The artifact is never buffered whole in memory.
func (c *Client) streamSave(ctx context.Context, pdfName, destDir, outPath string) error {
	resp, err := c.issue(ctx, http.MethodGet, c.base+printSavePath+pdfName, nil)
	if err != nil {
		return &ExportError{State: StateCompleted, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &ExportError{
			State:      StateCompleted,
			StatusCode: resp.StatusCode,
			ServerText: readBody(resp),
			Err:        fmt.Errorf("artifact download returned HTTP %d", resp.StatusCode),
		}
	}
	defer httputil.DrainClose(resp)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return &ExportError{State: StateCompleted, Err: fmt.Errorf("creating directory %s: %w", destDir, err)}
	}

	tmpFile, err := os.CreateTemp(destDir, ".ppubs-*.tmp")
	if err != nil {
		return &ExportError{State: StateCompleted, Err: fmt.Errorf("creating temp file: %w", err)}
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return &ExportError{State: StateCompleted, Err: fmt.Errorf("writing download: %w", copyErr)}
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return &ExportError{State: StateCompleted, Err: fmt.Errorf("closing temp file: %w", closeErr)}
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return &ExportError{State: StateCompleted, Err: fmt.Errorf("renaming temp file: %w", err)}
	}
	return nil
}
