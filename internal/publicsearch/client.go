// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publicsearch is a client for the USPTO Public Search
// application at ppubs.uspto.gov: session bootstrap against its opaque
// cookie-and-token scheme, paginated query execution, and PDF export
// through the asynchronous print-job workflow.
package publicsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pdiddy/ppubs/internal/httputil"
	"github.com/pdiddy/ppubs/pkg/types"
)

// defaultBase is the Public Search application origin. Each Client copies
// it into its base field, which tests point at an httptest server.
const defaultBase = "https://ppubs.uspto.gov"

const (
	defaultTimeout      = 60 * time.Second
	defaultUserAgent    = "ppubs/0.1"
	defaultPollInterval = 1 * time.Second
	defaultMaxPolls     = 600
)

// retryAfterHdr is the rate-limit header naming the exact number of
// seconds to wait before reissuing.
const retryAfterHdr = "X-Rate-Limit-Retry-After-Seconds"

// rateLimitUnit scales the server-provided wait. Tests shrink it to avoid
// real sleeps.
var rateLimitUnit = time.Second

// sentinelSessionBody is the fixed body the session endpoint expects.
const sentinelSessionBody = -1

// Client talks to the Public Search service. Session state is shared
// across calls and guarded by sessionMu; renewal is last-writer-wins and
// readers only ever observe a complete session. Everything else on the
// Client is read-only after New.
type Client struct {
	http      *http.Client
	transport *httputil.Transport
	base      string

	pollInterval time.Duration
	maxPolls     int

	sessionMu sync.Mutex
	session   *Session
}

// New builds a Client from cfg, applying defaults for unset fields. The
// default header set mirrors what the web application sends, which the
// service expects on every call.
func New(cfg types.ClientConfig) (*Client, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = defaultPollInterval
	}
	maxPolls := cfg.MaxPolls
	if maxPolls == 0 {
		maxPolls = defaultMaxPolls
	}

	headers := http.Header{}
	headers.Set("User-Agent", userAgent)
	headers.Set("X-Requested-With", "XMLHttpRequest")
	headers.Set("Origin", defaultBase)
	headers.Set("Referer", defaultBase+landingPath)
	headers.Set("Pragma", "no-cache")
	headers.Set("Cache-Control", "no-cache")

	hc, transport, err := httputil.NewClient(timeout, headers)
	if err != nil {
		return nil, fmt.Errorf("building HTTP client: %w", err)
	}

	return &Client{
		http:         hc,
		transport:    transport,
		base:         defaultBase,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
	}, nil
}

// issue sends a single request. A non-nil body is marshaled as JSON and
// the content type set accordingly. No recovery is applied here.
func (c *Client) issue(ctx context.Context, method, url string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// do is the retrying request executor every query and export call goes
// through. Recovery is applied in fixed order, at most once per
// condition:
//
//  1. a 403 triggers one session bootstrap and one reissue — the service
//     does not distinguish "never authenticated" from "token expired",
//     so a full re-bootstrap is the only safe response;
//  2. a 429 waits the server-directed number of seconds plus one, then
//     reissues once. A missing or non-numeric wait header is a contract
//     violation and fails instead of guessing.
//
// Whatever response results is returned as-is; callers interpret
// remaining non-success statuses themselves. A bootstrap failure during
// recovery propagates unretried.
func (c *Client) do(ctx context.Context, method, url string, body any) (*http.Response, error) {
	resp, err := c.issue(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusForbidden {
		httputil.DrainClose(resp)
		if _, err := c.Bootstrap(ctx); err != nil {
			return nil, err
		}
		resp, err = c.issue(ctx, method, url, body)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		raw := resp.Header.Get(retryAfterHdr)
		secs, convErr := strconv.Atoi(raw)
		if convErr != nil {
			httputil.DrainClose(resp)
			return nil, fmt.Errorf("rate limited but %s header is %q: %w", retryAfterHdr, raw, convErr)
		}
		httputil.DrainClose(resp)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(secs+1) * rateLimitUnit):
		}
		resp, err = c.issue(ctx, method, url, body)
		if err != nil {
			return nil, err
		}
	}

	return resp, nil
}

// readBody drains up to a small bound of the response body for inclusion
// in error messages, then closes it.
func readBody(resp *http.Response) string {
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return ""
	}
	return string(bytes.TrimSpace(data))
}
