// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publicsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/ppubs/internal/httputil"
)

const (
	landingPath     = "/pubwebapp/"
	sessionPath     = "/dirsearch-public/users/me/session"
	accessTokenHdr  = "X-Access-Token"
	nullAccessToken = "null"
)

// Session holds the authentication state issued by the service. A session
// is created whole by Bootstrap and never mutated afterwards; renewal
// replaces it with a new value. A non-empty CaseID implies a non-empty
// AccessToken and a populated cookie jar on the client.
type Session struct {
	// CaseID is the per-session case handle required on every search and
	// export request. The wire value is a JSON number; json.Number keeps
	// it opaque while round-tripping exactly.
	CaseID json.Number

	// AccessToken authenticates subsequent calls via the X-Access-Token
	// header.
	AccessToken string

	// Created is when the session was established.
	Created time.Time
}

// sessionResponse is the shape of the session endpoint response body.
// Only the case identifier is read; the rest of the user-case payload is
// ignored.
type sessionResponse struct {
	UserCase struct {
		CaseID json.Number `json:"caseId"`
	} `json:"userCase"`
}

// Bootstrap establishes a fresh session: it discards all cookie state,
// fetches the application landing page to receive session cookies, then
// posts to the session endpoint with the sentinel body, reading the case
// identifier from the response body and the access token from the
// response header. The token is installed as a default header for all
// subsequent requests. The new session fully replaces any prior one.
func (c *Client) Bootstrap(ctx context.Context) (*Session, error) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	return c.bootstrapLocked(ctx)
}

func (c *Client) bootstrapLocked(ctx context.Context) (*Session, error) {
	if err := httputil.ResetJar(c.http); err != nil {
		return nil, &AuthError{Reason: "resetting cookie state", Err: err}
	}
	c.transport.SetDefault(accessTokenHdr, nullAccessToken)

	// Unauthenticated landing-page GET, only to collect session cookies.
	resp, err := c.issue(ctx, http.MethodGet, c.base+landingPath, nil)
	if err != nil {
		return nil, &AuthError{Reason: "fetching landing page", Err: err}
	}
	httputil.DrainClose(resp)

	resp, err = c.issue(ctx, http.MethodPost, c.base+sessionPath, sentinelSessionBody)
	if err != nil {
		return nil, &AuthError{Reason: "posting session request", Err: err}
	}
	defer resp.Body.Close()

	var sr sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, &AuthError{Reason: "decoding session response", Err: err}
	}
	if sr.UserCase.CaseID == "" {
		return nil, &AuthError{Reason: "session response has no case identifier"}
	}
	token := resp.Header.Get(accessTokenHdr)
	if token == "" {
		return nil, &AuthError{Reason: fmt.Sprintf("session response has no %s header", accessTokenHdr)}
	}

	sess := &Session{
		CaseID:      sr.UserCase.CaseID,
		AccessToken: token,
		Created:     time.Now(),
	}
	c.transport.SetDefault(accessTokenHdr, token)
	c.session = sess
	return sess, nil
}

// Current returns the live session, or nil when none has been established.
func (c *Client) Current() *Session {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	return c.session
}

// Invalidate forgets the live session. The next call that needs one
// triggers a bootstrap.
func (c *Client) Invalidate() {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	c.session = nil
	c.transport.RemoveDefault(accessTokenHdr)
}

// ensureSession returns the live session, bootstrapping one first when
// needed.
func (c *Client) ensureSession(ctx context.Context) (*Session, error) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	if c.session != nil {
		return c.session, nil
	}
	return c.bootstrapLocked(ctx)
}
