package channel

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// NewHTTPClient builds the process-wide outbound HTTP client shared by all
// adapters: connection-pooled, created once at startup, safe for concurrent
// use. Call CloseIdleConnections on it at shutdown.
//
// Timeouts per outbound call: 5s connect (dial + TLS handshake), 10s until
// response headers, 15s overall (bounds the write and body read). The pool
// is capped per host so a slow vendor cannot exhaust file descriptors.
func NewHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   5 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			MaxConnsPerHost:       100,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// redactTransportError strips the query string from a transport error's
// embedded URL. Vendor URLs carry credentials as query parameters (app
// secret, corpsecret, access_token), and url.Error.Error() prints the full
// URL, so a raw transport error must never reach logs or callers.
func redactTransportError(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	redacted := ue.URL
	if u, perr := url.Parse(ue.URL); perr == nil {
		u.RawQuery = ""
		u.Fragment = ""
		redacted = u.String()
	} else if i := strings.IndexByte(redacted, '?'); i >= 0 {
		redacted = redacted[:i]
	}
	return &url.Error{Op: ue.Op, URL: redacted, Err: ue.Err}
}
