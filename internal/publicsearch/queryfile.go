// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publicsearch

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ppubs/pkg/types"
)

// QueryFile is the on-disk representation of a search and its results.
// A search can be saved to a file and fed to the download command later
// without re-querying the service.
type QueryFile struct {
	Query   QueryParams          `yaml:"query"`
	Results []types.PatentBiblio `yaml:"results"`
	Summary QuerySummary         `yaml:"summary"`
}

// QueryParams stores the query and its options in a serializable form.
type QueryParams struct {
	Text                 string   `yaml:"text"`
	Start                int      `yaml:"start"`
	Limit                int      `yaml:"limit"`
	Sort                 string   `yaml:"sort,omitempty"`
	Operator             string   `yaml:"operator,omitempty"`
	Sources              []string `yaml:"sources,omitempty"`
	NoPlurals            bool     `yaml:"no_plurals,omitempty"`
	NoBritishEquivalents bool     `yaml:"no_british_equivalents,omitempty"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	NumFound  int       `yaml:"num_found"`
	Returned  int       `yaml:"returned"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves a query and its result page to a YAML file.
func WriteQueryFile(path, query string, opts SearchOptions, page *types.BiblioPage) error {
	qf := QueryFile{
		Query: QueryParams{
			Text:                 query,
			Start:                opts.Start,
			Limit:                opts.Limit,
			Sort:                 opts.Sort,
			Operator:             opts.DefaultOperator,
			Sources:              opts.Sources,
			NoPlurals:            opts.NoPlurals,
			NoBritishEquivalents: opts.NoBritishEquivalents,
		},
		Results: page.Patents,
		Summary: QuerySummary{
			NumFound:  page.NumFound,
			Returned:  len(page.Patents),
			Timestamp: time.Now(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// Options converts stored QueryParams back into SearchOptions.
func (p QueryParams) Options() SearchOptions {
	return SearchOptions{
		Start:                p.Start,
		Limit:                p.Limit,
		Sort:                 p.Sort,
		DefaultOperator:      p.Operator,
		Sources:              p.Sources,
		NoPlurals:            p.NoPlurals,
		NoBritishEquivalents: p.NoBritishEquivalents,
	}
}
