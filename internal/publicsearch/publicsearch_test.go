// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publicsearch

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pdiddy/ppubs/pkg/types"
)

func init() {
	// Use a tiny rate-limit unit so tests finish quickly.
	rateLimitUnit = 1 * time.Millisecond
}

const (
	testCaseID  = "52442"
	testJobID   = "7534"
	testPDFName = "US-11234567-B2-2026-08-31.pdf"
	testPDF     = "%PDF-1.4 fake pdf bytes"
)

// defaultSearchBody is a minimal well-formed search response.
const defaultSearchBody = `{
	"numFound": 2,
	"patents": [
		{
			"guid": "US-11234567-B2",
			"type": "USPAT",
			"patentTitle": "Battery charger",
			"publicationReferenceDocumentNumber": "11234567",
			"datePublished": "2023-03-14",
			"imageLocation": "X",
			"documentStructure": {"pageCount": 3}
		},
		{
			"guid": "US-20230012345-A1",
			"type": "US-PGPUB",
			"patentTitle": "Charging dock",
			"publicationReferenceDocumentNumber": "20230012345",
			"datePublished": "2023-01-12",
			"imageLocation": "Y",
			"documentStructure": {"pageCount": 11}
		}
	],
	"error": null
}`

// fakeService serves the subset of Public Search endpoints the client
// touches and records every call in order.
type fakeService struct {
	mu sync.Mutex

	// calls logs endpoint names in arrival order.
	calls []string

	landingCalls int
	sessionCalls int
	countsCalls  int
	searchCalls  int
	submitCalls  int
	pollCalls    int
	saveCalls    int
	echoCalls    int

	// noToken makes the session endpoint omit the access token header.
	noToken bool
	// sessionBody overrides the session response body when non-empty.
	sessionBody string

	// lastAccessToken is the X-Access-Token header seen on the most
	// recent non-session call.
	lastAccessToken string

	// echoStatuses is the per-call status sequence for /echo; the last
	// entry repeats. echoRetryAfter is sent on 429 responses unless
	// empty.
	echoStatuses   []int
	echoRetryAfter string

	// searchStatuses is the per-call status sequence for the search
	// endpoint; empty means always 200. searchBody overrides the
	// default response.
	searchStatuses []int
	searchBody     string
	lastCountsBody []byte
	searchBodies   [][]byte

	// submitStatuses is the per-call status sequence for print-job
	// submission; empty means always 200. submitBody overrides the job
	// id response.
	submitStatuses []int
	submitBody     string
	lastSubmitBody []byte

	// pollStatuses is the per-poll printStatus sequence; the last entry
	// repeats.
	pollStatuses []string
	lastPollBody []byte

	// saveAbort makes the artifact download drop the connection after a
	// partial body.
	saveAbort bool

	docCalls     int
	lastDocQuery string
}

func (f *fakeService) logf(counter *int, name string) {
	f.calls = append(f.calls, name)
	*counter++
}

func seqAt[T any](seq []T, n int, fallback T) T {
	if len(seq) == 0 {
		return fallback
	}
	if n >= len(seq) {
		return seq[len(seq)-1]
	}
	return seq[n]
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path != sessionPath {
		f.lastAccessToken = r.Header.Get(accessTokenHdr)
	}

	switch {
	case r.URL.Path == landingPath:
		f.logf(&f.landingCalls, "landing")
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc123"})

	case r.URL.Path == sessionPath:
		f.logf(&f.sessionCalls, "session")
		if !f.noToken {
			w.Header().Set(accessTokenHdr, fmt.Sprintf("tok-%d", f.sessionCalls))
		}
		if f.sessionBody != "" {
			fmt.Fprint(w, f.sessionBody)
			return
		}
		fmt.Fprintf(w, `{"userCase":{"caseId":%s}}`, testCaseID)

	case r.URL.Path == "/echo":
		status := seqAt(f.echoStatuses, f.echoCalls, http.StatusOK)
		f.logf(&f.echoCalls, "echo")
		if status == http.StatusTooManyRequests && f.echoRetryAfter != "" {
			w.Header().Set(retryAfterHdr, f.echoRetryAfter)
		}
		w.WriteHeader(status)

	case r.URL.Path == countsPath:
		f.logf(&f.countsCalls, "counts")
		f.lastCountsBody, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `{"okay": true}`)

	case r.URL.Path == searchPath:
		status := seqAt(f.searchStatuses, f.searchCalls, http.StatusOK)
		f.logf(&f.searchCalls, "search")
		body, _ := io.ReadAll(r.Body)
		f.searchBodies = append(f.searchBodies, body)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		if f.searchBody != "" {
			fmt.Fprint(w, f.searchBody)
			return
		}
		fmt.Fprint(w, defaultSearchBody)

	case r.URL.Path == imageViewerPath:
		status := seqAt(f.submitStatuses, f.submitCalls, http.StatusOK)
		f.logf(&f.submitCalls, "submit")
		f.lastSubmitBody, _ = io.ReadAll(r.Body)
		if status != http.StatusOK {
			w.WriteHeader(status)
			if status == http.StatusInternalServerError {
				fmt.Fprint(w, "print server exploded")
			}
			return
		}
		if f.submitBody != "" {
			fmt.Fprint(w, f.submitBody)
			return
		}
		fmt.Fprint(w, testJobID)

	case r.URL.Path == printProcessPath:
		status := seqAt(f.pollStatuses, f.pollCalls, printStatusCompleted)
		f.logf(&f.pollCalls, "poll")
		f.lastPollBody, _ = io.ReadAll(r.Body)
		fmt.Fprintf(w, `[{"printStatus":%q,"pdfName":%q}]`, status, testPDFName)

	case strings.HasPrefix(r.URL.Path, "/dirsearch-public/internal/patents/") && strings.HasSuffix(r.URL.Path, "/highlight"):
		f.logf(&f.docCalls, "document")
		f.lastDocQuery = r.URL.RawQuery
		fmt.Fprint(w, `{
			"guid": "US-11234567-B2",
			"type": "USPAT",
			"patentTitle": "Battery charger",
			"abstractHtml": ["<p>A charger for a battery.</p>"],
			"documentStructure": {"pageCount": 3}
		}`)

	case strings.HasPrefix(r.URL.Path, printSavePath):
		f.logf(&f.saveCalls, "save")
		w.Header().Set("Content-Type", "application/pdf")
		if f.saveAbort {
			w.Header().Set("Content-Length", "1000000")
			fmt.Fprint(w, "%PDF-1.4 truncated")
			panic(http.ErrAbortHandler)
		}
		fmt.Fprint(w, testPDF)

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeService) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// newTestClient builds a Client pointed at a fakeService, with fast poll
// settings.
func newTestClient(t *testing.T, f *fakeService) *Client {
	t.Helper()
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)

	c, err := New(types.ClientConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "ppubs/test",
		},
		PollInterval: 1 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.base = ts.URL
	return c
}

func testBiblio() *types.PatentBiblio {
	return &types.PatentBiblio{
		GUID:              "US-11234567-B2",
		Type:              "USPAT",
		PatentTitle:       "Battery charger",
		ImageLocation:     "X",
		DocumentStructure: types.DocumentStructure{PageCount: 3},
	}
}
