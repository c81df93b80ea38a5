// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport_AppliesDefaults(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer ts.Close()

	defaults := http.Header{}
	defaults.Set("X-Requested-With", "XMLHttpRequest")
	defaults.Set("User-Agent", "ppubs/test")

	client, _, err := NewClient(5*time.Second, defaults)
	require.NoError(t, err)

	resp, err := client.Get(ts.URL)
	require.NoError(t, err)
	DrainClose(resp)

	assert.Equal(t, "XMLHttpRequest", got.Get("X-Requested-With"))
	assert.Equal(t, "ppubs/test", got.Get("User-Agent"))
}

func TestTransport_RequestHeaderWinsOverDefault(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer ts.Close()

	defaults := http.Header{}
	defaults.Set("X-Access-Token", "null")

	client, _, err := NewClient(5*time.Second, defaults)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	req.Header.Set("X-Access-Token", "per-request")

	resp, err := client.Do(req)
	require.NoError(t, err)
	DrainClose(resp)

	assert.Equal(t, "per-request", got.Get("X-Access-Token"))
}

func TestTransport_SetDefaultAffectsLaterRequests(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer ts.Close()

	client, transport, err := NewClient(5*time.Second, nil)
	require.NoError(t, err)

	resp, err := client.Get(ts.URL)
	require.NoError(t, err)
	DrainClose(resp)
	assert.Empty(t, got.Get("X-Access-Token"))

	transport.SetDefault("X-Access-Token", "tok-123")

	resp, err = client.Get(ts.URL)
	require.NoError(t, err)
	DrainClose(resp)
	assert.Equal(t, "tok-123", got.Get("X-Access-Token"))
}

func TestTransport_DoesNotMutateOriginalRequest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer ts.Close()

	defaults := http.Header{}
	defaults.Set("X-Requested-With", "XMLHttpRequest")

	client, _, err := NewClient(5*time.Second, defaults)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	DrainClose(resp)

	assert.Empty(t, req.Header.Get("X-Requested-With"))
}

func TestResetJar_DropsCookies(t *testing.T) {
	var sawCookie bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("sid"); err == nil {
			sawCookie = true
		}
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc"})
	}))
	defer ts.Close()

	client, _, err := NewClient(5*time.Second, nil)
	require.NoError(t, err)

	// First request receives the cookie; second sends it back.
	resp, err := client.Get(ts.URL)
	require.NoError(t, err)
	DrainClose(resp)

	sawCookie = false
	resp, err = client.Get(ts.URL)
	require.NoError(t, err)
	DrainClose(resp)
	assert.True(t, sawCookie)

	require.NoError(t, ResetJar(client))

	sawCookie = false
	resp, err = client.Get(ts.URL)
	require.NoError(t, err)
	DrainClose(resp)
	assert.False(t, sawCookie)
}
