// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publicsearch

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestDo_PassesThroughSuccess(t *testing.T) {
	f := &fakeService{}
	c := newTestClient(t, f)

	resp, err := c.do(context.Background(), http.MethodGet, c.base+"/echo", nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if f.echoCalls != 1 {
		t.Errorf("echoCalls = %d, want 1", f.echoCalls)
	}
	if f.sessionCalls != 0 {
		t.Errorf("sessionCalls = %d, want 0", f.sessionCalls)
	}
}

func TestDo_ForbiddenBootstrapsOnceAndReissues(t *testing.T) {
	f := &fakeService{echoStatuses: []int{http.StatusForbidden, http.StatusOK}}
	c := newTestClient(t, f)

	resp, err := c.do(context.Background(), http.MethodGet, c.base+"/echo", nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if f.echoCalls != 2 {
		t.Errorf("echoCalls = %d, want 2 (original + one reissue)", f.echoCalls)
	}
	if f.sessionCalls != 1 {
		t.Errorf("sessionCalls = %d, want exactly 1", f.sessionCalls)
	}
	// The reissue carries the fresh token.
	if f.lastAccessToken != "tok-1" {
		t.Errorf("reissue token = %q, want %q", f.lastAccessToken, "tok-1")
	}
}

func TestDo_SecondForbiddenIsNotRetried(t *testing.T) {
	f := &fakeService{echoStatuses: []int{http.StatusForbidden, http.StatusForbidden}}
	c := newTestClient(t, f)

	resp, err := c.do(context.Background(), http.MethodGet, c.base+"/echo", nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want the final 403 returned as-is", resp.StatusCode)
	}
	if f.echoCalls != 2 {
		t.Errorf("echoCalls = %d, want 2 (no second recovery)", f.echoCalls)
	}
	if f.sessionCalls != 1 {
		t.Errorf("sessionCalls = %d, want exactly 1", f.sessionCalls)
	}
}

func TestDo_BootstrapFailureDuringRecoveryPropagates(t *testing.T) {
	f := &fakeService{
		echoStatuses: []int{http.StatusForbidden},
		noToken:      true,
	}
	c := newTestClient(t, f)

	_, err := c.do(context.Background(), http.MethodGet, c.base+"/echo", nil)
	if err == nil {
		t.Fatal("expected bootstrap failure to propagate")
	}
	if f.echoCalls != 1 {
		t.Errorf("echoCalls = %d, want 1 (no reissue after failed bootstrap)", f.echoCalls)
	}
}

func TestDo_RateLimitWaitsServerDirectedTimeAndReissuesOnce(t *testing.T) {
	f := &fakeService{
		echoStatuses:   []int{http.StatusTooManyRequests, http.StatusOK},
		echoRetryAfter: "2",
	}
	c := newTestClient(t, f)

	start := time.Now()
	resp, err := c.do(context.Background(), http.MethodGet, c.base+"/echo", nil)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if f.echoCalls != 2 {
		t.Errorf("echoCalls = %d, want 2", f.echoCalls)
	}
	// Wait is N+1 units: 3 * rateLimitUnit (1ms in tests).
	if elapsed < 3*rateLimitUnit {
		t.Errorf("elapsed = %v, want at least %v", elapsed, 3*rateLimitUnit)
	}
	if f.sessionCalls != 0 {
		t.Errorf("sessionCalls = %d, want 0 (429 does not bootstrap)", f.sessionCalls)
	}
}

func TestDo_SecondRateLimitIsNotRetried(t *testing.T) {
	f := &fakeService{
		echoStatuses:   []int{http.StatusTooManyRequests, http.StatusTooManyRequests},
		echoRetryAfter: "0",
	}
	c := newTestClient(t, f)

	resp, err := c.do(context.Background(), http.MethodGet, c.base+"/echo", nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want the final 429 returned as-is", resp.StatusCode)
	}
	if f.echoCalls != 2 {
		t.Errorf("echoCalls = %d, want 2", f.echoCalls)
	}
}

func TestDo_RateLimitWithoutHeaderFailsLoudly(t *testing.T) {
	f := &fakeService{echoStatuses: []int{http.StatusTooManyRequests}}
	c := newTestClient(t, f)

	_, err := c.do(context.Background(), http.MethodGet, c.base+"/echo", nil)
	if err == nil {
		t.Fatal("expected an error for a missing retry-after header")
	}
	if !strings.Contains(err.Error(), retryAfterHdr) {
		t.Errorf("err = %v, want mention of %s", err, retryAfterHdr)
	}
	if f.echoCalls != 1 {
		t.Errorf("echoCalls = %d, want 1 (no guessing, no reissue)", f.echoCalls)
	}
}

func TestDo_RateLimitWithGarbageHeaderFailsLoudly(t *testing.T) {
	f := &fakeService{
		echoStatuses:   []int{http.StatusTooManyRequests},
		echoRetryAfter: "soon",
	}
	c := newTestClient(t, f)

	_, err := c.do(context.Background(), http.MethodGet, c.base+"/echo", nil)
	if err == nil {
		t.Fatal("expected an error for a non-numeric retry-after header")
	}
}

func TestDo_RateLimitWaitIsCancellable(t *testing.T) {
	f := &fakeService{
		echoStatuses:   []int{http.StatusTooManyRequests, http.StatusOK},
		echoRetryAfter: "3600",
	}
	c := newTestClient(t, f)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.do(ctx, http.MethodGet, c.base+"/echo", nil)
	if err != context.DeadlineExceeded {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
	if f.echoCalls != 1 {
		t.Errorf("echoCalls = %d, want 1 (cancelled before reissue)", f.echoCalls)
	}
}
