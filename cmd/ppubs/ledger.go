// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ppubs/internal/ledger"
	"github.com/pdiddy/ppubs/pkg/types"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "List recorded downloads",
	Long: `Ledger lists the documents recorded as downloaded, or with --stats
prints aggregate counts over recorded searches and downloads.`,
	RunE: runLedger,
}

func init() {
	ledgerCmd.Flags().String("ledger", "downloads/ppubs.db", "ledger database path")
	ledgerCmd.Flags().Bool("stats", false, "print aggregate counts instead of the download list")

	rootCmd.AddCommand(ledgerCmd)
}

func runLedger(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("ledger")
	led, err := ledger.Open(types.LedgerConfig{Path: path})
	if err != nil {
		return err
	}
	defer led.Close()

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		s, err := led.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("Searches:  %d\n", s.Searches)
		fmt.Printf("Downloads: %d\n", s.Downloads)
		fmt.Printf("Pages:     %d\n", s.Pages)
		return nil
	}

	downloads, err := led.Downloads()
	if err != nil {
		return err
	}
	if len(downloads) == 0 {
		fmt.Println("No downloads recorded.")
		return nil
	}

	fmt.Printf("%-22s  %-8s  %-5s  %-20s  %s\n",
		"GUID", "Source", "Pages", "Downloaded", "Path")
	fmt.Println(strings.Repeat("-", 100))
	for _, d := range downloads {
		fmt.Printf("%-22s  %-8s  %-5d  %-20s  %s\n",
			d.GUID, d.Source, d.PageCount,
			d.DownloadedAt.Format("2006-01-02 15:04:05"), d.PDFPath)
	}
	fmt.Printf("\n%d downloads recorded\n", len(downloads))
	return nil
}
