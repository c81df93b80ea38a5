// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ppubs/internal/ledger"
	"github.com/pdiddy/ppubs/internal/publicsearch"
	"github.com/pdiddy/ppubs/pkg/types"
)

const defaultDownloadDelay = 1 * time.Second

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Export document PDFs through the print-job workflow",
	Long: `Download runs a query (or reloads a saved query file) and exports each
matching document's PDF into the destination directory, one print job at a
time. Documents whose PDF already exists are skipped, so an interrupted run
can simply be repeated. Completed downloads are recorded in the ledger.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("query", "", "query to run in Public Search syntax")
	downloadCmd.Flags().String("from-file", "", "saved query file to read records from instead of searching")
	downloadCmd.Flags().String("dest", "downloads", "destination directory for PDFs")
	downloadCmd.Flags().Int("max", 0, "maximum number of documents to export (default: all)")
	downloadCmd.Flags().Duration("delay", 0, "delay between consecutive exports (default 1s)")
	downloadCmd.Flags().Int("limit", 0, "search page size (default 500)")
	downloadCmd.Flags().StringSlice("sources", nil, "source databases (default US-PGPUB,USPAT,USOCR)")
	downloadCmd.Flags().String("ledger", "", "ledger database path (default <dest>/ppubs.db, empty string accepted)")
	downloadCmd.Flags().Bool("no-ledger", false, "do not record downloads in the ledger")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	fromFile, _ := cmd.Flags().GetString("from-file")
	if (query == "") == (fromFile == "") {
		return fmt.Errorf("provide exactly one of --query or --from-file")
	}

	dest, _ := cmd.Flags().GetString("dest")
	max, _ := cmd.Flags().GetInt("max")
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDownloadDelay
	}

	client, err := publicsearch.New(clientConfig(cmd))
	if err != nil {
		return err
	}

	var led *ledger.Ledger
	if noLedger, _ := cmd.Flags().GetBool("no-ledger"); !noLedger {
		path, _ := cmd.Flags().GetString("ledger")
		if path == "" {
			path = filepath.Join(dest, "ppubs.db")
		}
		led, err = ledger.Open(types.LedgerConfig{Path: path})
		if err != nil {
			return err
		}
		defer led.Close()
	}

	var records []types.PatentBiblio
	switch {
	case fromFile != "":
		qf, err := publicsearch.ReadQueryFile(fromFile)
		if err != nil {
			return err
		}
		records = qf.Results
		fmt.Fprintf(os.Stderr, "Loaded %d records from %s\n", len(records), fromFile)

	default:
		limit, _ := cmd.Flags().GetInt("limit")
		sources, _ := cmd.Flags().GetStringSlice("sources")
		page, err := client.RunQuery(cmd.Context(), query, publicsearch.SearchOptions{
			Limit:   limit,
			Sources: sources,
		})
		if err != nil {
			return err
		}
		records = page.Patents
		fmt.Fprintf(os.Stderr, "Query matched %d documents, exporting %d\n",
			page.NumFound, len(records))
		if led != nil {
			if err := led.RecordSearch(query, page.NumFound, len(records)); err != nil {
				fmt.Fprintf(os.Stderr, "warning: ledger record failed: %v\n", err)
			}
		}
	}

	cfg := types.ExportConfig{
		DestDir:       dest,
		DownloadDelay: delay,
		MaxDownloads:  max,
	}

	var rec publicsearch.Recorder
	if led != nil {
		rec = led
	}
	result := publicsearch.DownloadBatch(cmd.Context(), client, records, cfg, rec, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed to export", result.Failed)
	}
	return nil
}
