// wxpush - WeChat message push relay
// Copyright (C) 2026  wxpush contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package auth verifies caller credentials: an API key checked against a
// configured allow-list, plus an optional time-boxed HMAC-SHA256 signature
// layered on top.
package auth

import (
	"crypto/hmac"
	"errors"
	"time"
)

// TimestampWindow is how far a signed request's timestamp may drift from
// the server clock, in either direction. Inclusive: a drift of exactly
// TimestampWindow still passes.
const TimestampWindow = 300 * time.Second

// Validation failures are typed so the HTTP boundary can map each cause to
// its own error code without matching on message text.
var (
	ErrInvalidAPIKey     = errors.New("invalid api key")
	ErrTimestampRequired = errors.New("timestamp is required when a signature is provided")
	ErrTimestampExpired  = errors.New("request timestamp expired")
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// Credentials is the immutable set of valid API keys plus the optional
// shared signing secret. Built once at startup.
type Credentials struct {
	keys   map[string]struct{}
	secret string
}

// NewCredentials builds a credential set from a key list and an optional
// signing secret. An empty key list rejects all callers.
func NewCredentials(keys []string, secret string) *Credentials {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return &Credentials{keys: set, secret: secret}
}

// HasKey reports whether apiKey is in the allow-list.
func (c *Credentials) HasKey(apiKey string) bool {
	_, ok := c.keys[apiKey]
	return ok
}

// Secret returns the shared signing secret ("" when signature mode is not
// configured).
func (c *Credentials) Secret() string { return c.secret }

// Len returns the number of configured keys.
func (c *Credentials) Len() int { return len(c.keys) }

// Validator verifies API keys and optional signatures against a credential
// set. It is pure verification: no side effects, safe for concurrent use.
type Validator struct {
	creds *Credentials

	// now is injectable for timestamp-window tests.
	now func() time.Time
}

// NewValidator creates a Validator over the given credentials.
func NewValidator(creds *Credentials) *Validator {
	return &Validator{creds: creds, now: time.Now}
}

// Validate checks the API key, and when a signature is supplied, the
// timestamp window and the HMAC signature over payload. timestamp is a
// pointer so "absent" is distinguishable from zero.
//
// The nil return means the caller is authenticated. Failures are one of
// ErrInvalidAPIKey, ErrTimestampRequired, ErrTimestampExpired or
// ErrSignatureMismatch.
func (v *Validator) Validate(apiKey string, timestamp *int64, payload, signature string) error {
	if apiKey == "" || !v.creds.HasKey(apiKey) {
		return ErrInvalidAPIKey
	}
	if signature == "" {
		// API-key-only mode.
		return nil
	}
	if timestamp == nil {
		return ErrTimestampRequired
	}

	drift := v.now().Unix() - *timestamp
	if drift < 0 {
		drift = -drift
	}
	if drift > int64(TimestampWindow/time.Second) {
		return ErrTimestampExpired
	}

	secret := v.creds.Secret()
	if secret == "" {
		// No secret configured: signed requests cannot be verified.
		return ErrSignatureMismatch
	}
	expected := Sign(secret, apiKey, *timestamp, payload)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
