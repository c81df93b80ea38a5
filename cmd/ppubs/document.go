// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ppubs/internal/publicsearch"
	"github.com/pdiddy/ppubs/pkg/types"
)

var documentCmd = &cobra.Command{
	Use:   "document <guid>",
	Short: "Fetch the highlighted full-text view of one document",
	Long: `Document fetches the highlighted full-text view for a single
bibliographic record by its global id (e.g. US-11234567-B2) and prints it
as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocument,
}

func init() {
	documentCmd.Flags().String("source", "USPAT", "source database of the record (US-PGPUB, USPAT, or USOCR)")

	rootCmd.AddCommand(documentCmd)
}

func runDocument(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")

	client, err := publicsearch.New(clientConfig(cmd))
	if err != nil {
		return err
	}

	doc, err := client.GetDocument(cmd.Context(), &types.PatentBiblio{
		GUID: args[0],
		Type: source,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
