// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publicsearch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/ppubs/pkg/types"
)

// Recorder receives a notification for each completed download. The
// download ledger implements it; a nil Recorder disables recording.
type Recorder interface {
	RecordDownload(bib *types.PatentBiblio, pdfPath string) error
}

// BatchResult holds the outcome of a batch export run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Paths      []string
}

// Total returns the number of records processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any exports failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// DownloadBatch exports the given records sequentially, printing per-item
// status to w and returning a summary. It continues after individual
// failures and applies the configured delay between consecutive exports.
// Records whose target file already exists count as skipped.
func DownloadBatch(ctx context.Context, c *Client, records []types.PatentBiblio, cfg types.ExportConfig, rec Recorder, w io.Writer) BatchResult {
	var result BatchResult

	delay := cfg.DownloadDelay
	limit := cfg.MaxDownloads
	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}

	for i := 0; i < limit; i++ {
		bib := &records[i]
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				fmt.Fprintf(w, "cancelled after %d of %d\n", result.Total(), limit)
				return result
			case <-time.After(delay):
			}
		}

		existed := fileExists(cfg.DestDir, bib.GUID)
		path, err := c.DownloadImage(ctx, bib, cfg.DestDir)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", bib.GUID, err)
			result.Failed++
			continue
		}
		if existed {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", bib.GUID)
			result.Skipped++
		} else {
			fmt.Fprintf(w, "downloaded: %s (%d pages)\n", bib.GUID, bib.PageCount())
			result.Downloaded++
			if rec != nil {
				if recErr := rec.RecordDownload(bib, path); recErr != nil {
					fmt.Fprintf(w, "  warning: ledger record failed: %v\n", recErr)
				}
			}
		}
		result.Paths = append(result.Paths, path)
	}

	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

func fileExists(destDir, guid string) bool {
	_, err := os.Stat(filepath.Join(destDir, guid+".pdf"))
	return err == nil
}
