package channel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "wx-app", r.URL.Query().Get("appid"))
		fmt.Fprint(w, `{"access_token":"tok-1","expires_in":7200}`)
	}))
	defer srv.Close()

	c := NewTokenClient(srv.Client())
	token, expiresIn, err := c.Fetch(context.Background(), srv.URL, url.Values{"appid": {"wx-app"}, "secret": {"sec"}})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, 7200, expiresIn)
}

func TestTokenClient_DefaultExpiry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok-1"}`)
	}))
	defer srv.Close()

	c := NewTokenClient(srv.Client())
	_, expiresIn, err := c.Fetch(context.Background(), srv.URL, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, defaultTokenTTL, expiresIn)
}

func TestTokenClient_VendorErrCode(t *testing.T) {
	// The enterprise endpoint reports failures inside an HTTP 200.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"errcode":40013,"errmsg":"invalid corpid"}`)
	}))
	defer srv.Close()

	c := NewTokenClient(srv.Client())
	_, _, err := c.Fetch(context.Background(), srv.URL, url.Values{})
	var te *TokenError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 40013, te.Code)
	assert.Equal(t, "invalid corpid", te.Msg)
}

func TestTokenClient_TokenMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"expires_in":7200}`)
	}))
	defer srv.Close()

	c := NewTokenClient(srv.Client())
	_, _, err := c.Fetch(context.Background(), srv.URL, url.Values{})
	var te *TokenError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.Code)
	assert.Contains(t, te.Error(), "access token missing")
}

func TestTokenClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	client := srv.Client()
	srv.Close() // connection refused from here on

	c := NewTokenClient(client)
	_, _, err := c.Fetch(context.Background(), srv.URL, url.Values{})
	var te *TokenError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.Code)
	assert.NotNil(t, errors.Unwrap(te))
}

func TestTokenClient_TransportErrorRedactsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	client := srv.Client()
	srv.Close()

	c := NewTokenClient(client)
	params := url.Values{
		"grant_type": {"client_credential"},
		"appid":      {"wx-app"},
		"secret":     {"super-secret-value"},
	}
	_, _, err := c.Fetch(context.Background(), srv.URL, params)
	require.Error(t, err)

	msg := err.Error()
	assert.NotContains(t, msg, "super-secret-value")
	assert.NotContains(t, msg, "secret=")

	// The caller-visible errmsg is built from the same error.
	res := resultFromError(err)
	assert.Equal(t, CodeInternal, res.ErrCode)
	assert.NotContains(t, res.ErrMsg, "super-secret-value")
}

func TestPostVendorJSON_TransportErrorRedactsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	client := srv.Client()
	srv.Close()

	_, err := postVendorJSON(context.Background(), client, srv.URL+"/send?access_token=tok-secret", map[string]any{})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "tok-secret")
	assert.NotContains(t, err.Error(), "access_token=")
	assert.NotContains(t, resultFromError(err).ErrMsg, "tok-secret")
}

func TestTokenClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewTokenClient(srv.Client())
	_, _, err := c.Fetch(context.Background(), srv.URL, url.Values{})
	var te *TokenError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Error(), "502")
}
