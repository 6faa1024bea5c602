// wxpush - WeChat message push relay
// Copyright (C) 2026  wxpush contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Sign computes the hex-encoded HMAC-SHA256 signature over the
// concatenation api_key || timestamp || payload. Both the signing client
// and the verifier use this function, so the payload string must be built
// with the matching Canonical*Payload helper.
func Sign(secret, apiKey string, timestamp int64, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s%d%s", apiKey, timestamp, payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches Sign over the same inputs,
// using a constant-time comparison.
func Verify(secret, apiKey string, timestamp int64, payload, signature string) bool {
	expected := Sign(secret, apiKey, timestamp, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// CanonicalQueryPayload builds the signable payload for query-parameter
// transport: key=value pairs joined by "&", sorted lexicographically by
// key, with the signature parameter itself excluded. Only the first value
// of a repeated parameter is used.
func CanonicalQueryPayload(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params.Get(k))
	}
	return strings.Join(pairs, "&")
}

// BodyFields are the signable fields of a JSON-body send request. Optional
// fields with zero values are left out of the payload; Channel is expected
// to be the post-default value ("wechat" when the request omitted it).
type BodyFields struct {
	APIKey  string
	Title   string
	Content string
	AppID   string
	Secret  string
	UserID  string

	BaseURL    string
	TemplateID string
	Channel    string
	Timestamp  *int64
}

// CanonicalBodyPayload builds the signable payload for body transport: a
// JSON object over the signable fields with lexicographically sorted keys.
// The signature itself and agentid are never part of the payload.
func CanonicalBodyPayload(f BodyFields) string {
	m := map[string]any{
		"api_key": f.APIKey,
		"title":   f.Title,
		"content": f.Content,
		"appid":   f.AppID,
		"secret":  f.Secret,
		"userid":  f.UserID,
	}
	if f.BaseURL != "" {
		m["base_url"] = f.BaseURL
	}
	if f.TemplateID != "" {
		m["template_id"] = f.TemplateID
	}
	if f.Channel != "" {
		m["channel"] = f.Channel
	}
	if f.Timestamp != nil {
		m["timestamp"] = *f.Timestamp
	}

	// encoding/json writes map keys in sorted order, which is exactly the
	// canonical form signers must reproduce. HTML escaping is off: clients
	// sign the literal "&", "<" and ">" characters, not unicode escapes.
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(m)
	return strings.TrimSuffix(sb.String(), "\n")
}
