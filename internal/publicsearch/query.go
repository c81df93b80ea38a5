// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publicsearch

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/ppubs/internal/httputil"
	"github.com/pdiddy/ppubs/pkg/types"
)

const (
	countsPath    = "/dirsearch-public/searches/counts"
	searchPath    = "/dirsearch-public/searches/searchWithBeFamily"
	highlightPath = "/dirsearch-public/internal/patents/%s/highlight"
)

// searchQueryTemplate is the query skeleton the web application submits.
// Its field names are the contract with the service. A fresh copy is
// decoded per call, so executions never share mutable state.
//
//go:embed search_query.json
var searchQueryTemplate []byte

// DefaultSources lists the source databases searched when the caller
// specifies none.
var DefaultSources = []string{"US-PGPUB", "USPAT", "USOCR"}

// databaseFilter selects one source database in a search request.
type databaseFilter struct {
	DatabaseName string   `json:"databaseName"`
	CountryCodes []string `json:"countryCodes"`
}

// searchQuery is the inner query object, also posted alone to the counts
// endpoint.
type searchQuery struct {
	CaseID             json.Number      `json:"caseId"`
	HlSnippets         string           `json:"hl_snippets"`
	Op                 string           `json:"op"`
	Q                  string           `json:"q"`
	QueryName          string           `json:"queryName"`
	Highlights         string           `json:"highlights"`
	Qt                 string           `json:"qt"`
	SpellCheck         bool             `json:"spellCheck"`
	ViewName           string           `json:"viewName"`
	Plurals            bool             `json:"plurals"`
	BritishEquivalents bool             `json:"britishEquivalents"`
	DatabaseFilters    []databaseFilter `json:"databaseFilters"`
	SearchType         int              `json:"searchType"`
	IgnorePersist      bool             `json:"ignorePersist"`
	UserEnteredQuery   string           `json:"userEnteredQuery"`
}

// searchRequest is the full body posted to the search endpoint.
type searchRequest struct {
	Start                   int         `json:"start"`
	PageCount               int         `json:"pageCount"`
	Sort                    string      `json:"sort"`
	DocFamilyFiltering      string      `json:"docFamilyFiltering"`
	SearchType              int         `json:"searchType"`
	FamilyIDEnglishOnly     bool        `json:"familyIdEnglishOnly"`
	FamilyIDFirstPreferred  string      `json:"familyIdFirstPreferred"`
	FamilyIDSecondPreferred string      `json:"familyIdSecondPreferred"`
	FamilyIDThirdPreferred  string      `json:"familyIdThirdPreferred"`
	ShowDocPerFamilyPref    string      `json:"showDocPerFamilyPref"`
	QueryID                 int         `json:"queryId"`
	TagDocSearch            bool        `json:"tagDocSearch"`
	Query                   searchQuery `json:"query"`
}

// newSearchRequest decodes a fresh copy of the embedded template.
func newSearchRequest() (*searchRequest, error) {
	var req searchRequest
	if err := json.Unmarshal(searchQueryTemplate, &req); err != nil {
		return nil, fmt.Errorf("decoding query template: %w", err)
	}
	return &req, nil
}

// SearchOptions control pagination and filtering for RunQuery. The zero
// value gives the standard defaults: start 0, page size 500, sort by
// publication date descending, OR operator, all three source databases,
// plural expansion and British spelling equivalents on. The negated
// boolean fields exist so those two expansions default to enabled.
type SearchOptions struct {
	Start           int
	Limit           int
	Sort            string
	DefaultOperator string
	Sources         []string

	NoPlurals            bool
	NoBritishEquivalents bool
}

// buildRequest copies the template and overlays query text, caller
// options, and the session case identifier. Identical inputs always
// produce an identical request apart from the case identifier.
func buildRequest(query string, opts SearchOptions, caseID json.Number) (*searchRequest, error) {
	req, err := newSearchRequest()
	if err != nil {
		return nil, err
	}

	if opts.Start > 0 {
		req.Start = opts.Start
	}
	if opts.Limit > 0 {
		req.PageCount = opts.Limit
	}
	if opts.Sort != "" {
		req.Sort = opts.Sort
	}
	if opts.DefaultOperator != "" {
		req.Query.Op = opts.DefaultOperator
	}

	req.Query.CaseID = caseID
	// The query text is duplicated into three slots for compatibility
	// with the upstream schema.
	req.Query.Q = query
	req.Query.QueryName = query
	req.Query.UserEnteredQuery = query

	sources := opts.Sources
	if len(sources) == 0 {
		sources = DefaultSources
	}
	filters := make([]databaseFilter, 0, len(sources))
	for _, s := range sources {
		filters = append(filters, databaseFilter{DatabaseName: s, CountryCodes: []string{}})
	}
	req.Query.DatabaseFilters = filters

	req.Query.Plurals = !opts.NoPlurals
	req.Query.BritishEquivalents = !opts.NoBritishEquivalents

	return req, nil
}

// RunQuery submits a search and returns one decoded result page. A
// session is bootstrapped first when none exists. The query is posted to
// the counts endpoint before the paginated search call; both go through
// the retrying executor. An error envelope embedded in the response body
// surfaces as a ServiceError with the upstream code and message.
func (c *Client) RunQuery(ctx context.Context, query string, opts SearchOptions) (*types.BiblioPage, error) {
	sess, err := c.ensureSession(ctx)
	if err != nil {
		return nil, err
	}

	req, err := buildRequest(query, opts, sess.CaseID)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, c.base+countsPath, req.Query)
	if err != nil {
		return nil, fmt.Errorf("counts request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("counts request returned HTTP %d: %s", resp.StatusCode, readBody(resp))
	}
	// The counts call pre-warms and validates the query; its body is not
	// used.
	httputil.DrainClose(resp)

	resp, err = c.do(ctx, http.MethodPost, c.base+searchPath, req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request returned HTTP %d: %s", resp.StatusCode, readBody(resp))
	}
	defer resp.Body.Close()

	var page types.BiblioPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	if page.Error != nil {
		return nil, &ServiceError{
			Code:    page.Error.ErrorCode.String(),
			Message: page.Error.ErrorMessage,
		}
	}
	return &page, nil
}

// GetDocument fetches the highlighted full-text view for one
// bibliographic record.
func (c *Client) GetDocument(ctx context.Context, bib *types.PatentBiblio) (*types.Document, error) {
	if _, err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"queryId":         {"1"},
		"source":          {bib.Type},
		"includeSections": {"true"},
		"uniqueId":        {""},
	}
	u := fmt.Sprintf(c.base+highlightPath, url.PathEscape(bib.GUID)) + "?" + params.Encode()

	resp, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("document request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document request returned HTTP %d: %s", resp.StatusCode, readBody(resp))
	}
	defer resp.Body.Close()

	var doc types.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding document response: %w", err)
	}
	return &doc, nil
}
