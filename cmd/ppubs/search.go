// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ppubs/internal/publicsearch"
	"github.com/pdiddy/ppubs/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a query against the Public Search index",
	Long: `Search runs a query in the Public Search query syntax (e.g.
'battery AND charger', '"solid state".ab.') and prints one page of
bibliographic results. The result page can be saved to a YAML query file
and fed to the download command later.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("start", 0, "result offset to start from")
	searchCmd.Flags().Int("limit", 0, "page size (default 500)")
	searchCmd.Flags().String("sort", "", `sort spec (default "date_publ desc")`)
	searchCmd.Flags().String("op", "", `default boolean operator (default "OR")`)
	searchCmd.Flags().StringSlice("sources", nil, "source databases (default US-PGPUB,USPAT,USOCR)")
	searchCmd.Flags().Bool("no-plurals", false, "disable plural expansion")
	searchCmd.Flags().Bool("no-british", false, "disable British spelling equivalents")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("save", "", "save the query and results to a YAML file")

	rootCmd.AddCommand(searchCmd)
}

func searchOptions(cmd *cobra.Command) publicsearch.SearchOptions {
	start, _ := cmd.Flags().GetInt("start")
	limit, _ := cmd.Flags().GetInt("limit")
	sortSpec, _ := cmd.Flags().GetString("sort")
	op, _ := cmd.Flags().GetString("op")
	sources, _ := cmd.Flags().GetStringSlice("sources")
	noPlurals, _ := cmd.Flags().GetBool("no-plurals")
	noBritish, _ := cmd.Flags().GetBool("no-british")

	return publicsearch.SearchOptions{
		Start:                start,
		Limit:                limit,
		Sort:                 sortSpec,
		DefaultOperator:      op,
		Sources:              sources,
		NoPlurals:            noPlurals,
		NoBritishEquivalents: noBritish,
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	opts := searchOptions(cmd)

	client, err := publicsearch.New(clientConfig(cmd))
	if err != nil {
		return err
	}

	page, err := client.RunQuery(cmd.Context(), query, opts)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(page); err != nil {
			return err
		}
	} else {
		printResultTable(page)
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		if err := publicsearch.WriteQueryFile(savePath, query, opts, page); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved query file: %s\n", savePath)
	}
	return nil
}

func printResultTable(page *types.BiblioPage) {
	if len(page.Patents) == 0 {
		fmt.Println("No results found.")
		return
	}

	fmt.Printf("%-22s  %-8s  %-12s  %-5s  %s\n",
		"GUID", "Source", "Published", "Pages", "Title")
	fmt.Println(strings.Repeat("-", 92))

	for _, p := range page.Patents {
		title := p.PatentTitle
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Printf("%-22s  %-8s  %-12s  %-5d  %s\n",
			p.GUID, p.Type, p.DatePublished, p.PageCount(), title)
	}

	fmt.Printf("\n%d of %d matching documents\n", len(page.Patents), page.NumFound)
}
