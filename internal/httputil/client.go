// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP transport shared by the Public
// Search client: a cookie-aware client whose every request carries a set
// of default headers, with helpers for resetting cookie state and
// draining response bodies.
package httputil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"
)

// Transport applies default headers to every outgoing request before
// delegating to the base RoundTripper. Headers already set on a request
// win over defaults. Defaults may be updated concurrently with requests
// in flight (the session layer rotates the access token header).
type Transport struct {
	// Base is the underlying RoundTripper; http.DefaultTransport when nil.
	Base http.RoundTripper

	mu       sync.RWMutex
	defaults http.Header
}

// NewTransport returns a Transport carrying a copy of defaults.
func NewTransport(base http.RoundTripper, defaults http.Header) *Transport {
	t := &Transport{Base: base, defaults: make(http.Header, len(defaults))}
	for k, vs := range defaults {
		for _, v := range vs {
			t.defaults.Add(k, v)
		}
	}
	return t
}

// SetDefault sets (or replaces) a default header applied to subsequent
// requests.
func (t *Transport) SetDefault(key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.defaults.Set(key, value)
}

// RemoveDefault deletes a default header.
func (t *Transport) RemoveDefault(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.defaults.Del(key)
}

// RoundTrip implements http.RoundTripper. The request is cloned before
// headers are applied, per the RoundTripper contract.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	t.mu.RLock()
	for k, vs := range t.defaults {
		if clone.Header.Get(k) != "" {
			continue
		}
		for _, v := range vs {
			clone.Header.Add(k, v)
		}
	}
	t.mu.RUnlock()

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// NewClient builds an *http.Client with a fresh cookie jar and a Transport
// carrying the given default headers. The returned Transport is the one
// installed on the client, so defaults can be adjusted later.
func NewClient(timeout time.Duration, defaults http.Header) (*http.Client, *Transport, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	transport := NewTransport(nil, defaults)
	return &http.Client{
		Timeout:   timeout,
		Jar:       jar,
		Transport: transport,
	}, transport, nil
}

// ResetJar replaces the client's cookie jar with an empty one, discarding
// all stored cookies.
func ResetJar(c *http.Client) error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("creating cookie jar: %w", err)
	}
	c.Jar = jar
	return nil
}

// DrainClose consumes and closes a response body so the underlying
// connection can be reused before a reissue.
func DrainClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
