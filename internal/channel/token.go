// wxpush - WeChat message push relay
// Copyright (C) 2026  wxpush contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// defaultTokenTTL is assumed when a vendor omits expires_in.
const defaultTokenTTL = 7200

// TokenClient exchanges an application id/secret pair for a short-lived
// bearer token. Tokens are not cached: every send re-fetches. There is no
// retry at this layer either; the caller sees the failure immediately.
type TokenClient struct {
	client *http.Client
}

// NewTokenClient wraps the shared outbound HTTP client.
func NewTokenClient(client *http.Client) *TokenClient {
	return &TokenClient{client: client}
}

type tokenResponse struct {
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Fetch GETs endpoint with params and returns (token, expiresIn). All
// failures come back as *TokenError. Success is judged by the payload
// errcode alone: the enterprise token endpoint embeds errcode/errmsg even
// on HTTP 200.
func (c *TokenClient) Fetch(ctx context.Context, endpoint string, params url.Values) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", 0, &TokenError{Msg: "build request", cause: redactTransportError(err)}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, &TokenError{Msg: "request failed", cause: redactTransportError(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, &TokenError{Msg: "read response", cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", 0, &TokenError{Msg: fmt.Sprintf("endpoint returned HTTP %d", resp.StatusCode)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", 0, &TokenError{Msg: "decode response", cause: err}
	}
	if tr.ErrCode != 0 {
		return "", 0, &TokenError{Code: tr.ErrCode, Msg: tr.ErrMsg}
	}
	if tr.AccessToken == "" {
		return "", 0, &TokenError{Msg: "access token missing in response"}
	}
	if tr.ExpiresIn == 0 {
		tr.ExpiresIn = defaultTokenTTL
	}
	return tr.AccessToken, tr.ExpiresIn, nil
}
