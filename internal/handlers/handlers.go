// wxpush - WeChat message push relay
// Copyright (C) 2026  wxpush contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package handlers implements the HTTP boundary: request parsing and
// validation, authentication, channel dispatch and the unified
// {errcode, errmsg, msgid} response contract.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wxpush/internal/auth"
	"wxpush/internal/channel"
	"wxpush/internal/metrics"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	auth       *auth.Validator
	dispatcher *channel.Dispatcher
	metrics    *metrics.Send
	validate   *validator.Validate
	log        zerolog.Logger
}

// New creates a new Handler.
func New(authValidator *auth.Validator, dispatcher *channel.Dispatcher, m *metrics.Send, log zerolog.Logger) *Handler {
	return &Handler{
		auth:       authValidator,
		dispatcher: dispatcher,
		metrics:    m,
		validate:   validator.New(),
		log:        log,
	}
}

// SendRequest carries one push request, from either query parameters (GET)
// or a JSON body (POST). Immutable once constructed.
type SendRequest struct {
	APIKey     string `json:"api_key" validate:"required"`
	Title      string `json:"title" validate:"required,max=200"`
	Content    string `json:"content" validate:"required,max=5000"`
	AppID      string `json:"appid" validate:"required"`
	Secret     string `json:"secret" validate:"required"`
	UserID     string `json:"userid" validate:"required"`
	BaseURL    string `json:"base_url,omitempty" validate:"omitempty,max=500"`
	TemplateID string `json:"template_id,omitempty"`
	AgentID    string `json:"agentid,omitempty"`
	Channel    string `json:"channel,omitempty"`
	Timestamp  *int64 `json:"timestamp,omitempty"`
	Signature  string `json:"signature,omitempty"`
}

type sendResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
	MsgID   any    `json:"msgid"`
}

type errorResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// SendGET handles GET /send with the request in query parameters. The
// signature payload is the canonical form of the query itself.
func (h *Handler) SendGET(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := SendRequest{
		APIKey:     q.Get("api_key"),
		Title:      q.Get("title"),
		Content:    q.Get("content"),
		AppID:      q.Get("appid"),
		Secret:     q.Get("secret"),
		UserID:     q.Get("userid"),
		BaseURL:    q.Get("base_url"),
		TemplateID: q.Get("template_id"),
		AgentID:    q.Get("agentid"),
		Channel:    q.Get("channel"),
		Signature:  q.Get("signature"),
	}
	if ts := q.Get("timestamp"); ts != "" {
		n, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, channel.CodeValidation, "timestamp must be an integer")
			return
		}
		req.Timestamp = &n
	}

	h.handleSend(w, r, req, auth.CanonicalQueryPayload(q))
}

// SendPOST handles POST /send with a JSON body. The signature payload is
// the canonical JSON form of the signable fields.
func (h *Handler) SendPOST(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, channel.CodeValidation, "invalid request body: "+err.Error())
		return
	}

	var payload string
	if req.Signature != "" {
		ch := req.Channel
		if ch == "" {
			ch = string(channel.ChannelWeChat)
		}
		payload = auth.CanonicalBodyPayload(auth.BodyFields{
			APIKey:     req.APIKey,
			Title:      req.Title,
			Content:    req.Content,
			AppID:      req.AppID,
			Secret:     req.Secret,
			UserID:     req.UserID,
			BaseURL:    req.BaseURL,
			TemplateID: req.TemplateID,
			Channel:    ch,
			Timestamp:  req.Timestamp,
		})
	}

	h.handleSend(w, r, req, payload)
}

// handleSend runs the shared pipeline: schema validation, authentication,
// channel selection, dispatch, response mapping. Auth and validation
// failures abort before any vendor call is made.
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request, req SendRequest, payload string) {
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, channel.CodeValidation, "request validation failed: "+err.Error())
		return
	}

	if err := h.auth.Validate(req.APIKey, req.Timestamp, payload, req.Signature); err != nil {
		code := channel.CodeInvalidAPIKey
		switch {
		case errors.Is(err, auth.ErrSignatureMismatch):
			code = channel.CodeInvalidSignature
		case errors.Is(err, auth.ErrTimestampRequired), errors.Is(err, auth.ErrTimestampExpired):
			code = channel.CodeTimestampExpired
		}
		writeError(w, http.StatusUnauthorized, code, err.Error())
		return
	}

	ch, ok := channel.ParseChannel(req.Channel)
	if !ok {
		writeError(w, http.StatusBadRequest, channel.CodeBadRequest,
			fmt.Sprintf("invalid channel %q: must be %q or %q", req.Channel, channel.ChannelWeChat, channel.ChannelWorkWeChat))
		return
	}

	// When the caller gives no link target, point the message at our own
	// detail page rendering the same title and content.
	baseURL := req.BaseURL
	if baseURL == "" {
		baseURL = detailURL(r, req.Title, req.Content)
	}

	msg := channel.Message{
		AppID:      req.AppID,
		Secret:     req.Secret,
		UserID:     req.UserID,
		Title:      req.Title,
		Content:    req.Content,
		BaseURL:    baseURL,
		TemplateID: req.TemplateID,
		AgentID:    req.AgentID,
	}

	sendID := uuid.NewString()
	h.log.Info().
		Str("send_id", sendID).
		Str("channel", string(ch)).
		Str("title", preview(req.Title, 50)).
		Str("userid", preview(req.UserID, 10)).
		Msg("send request")

	start := time.Now()
	res := h.dispatcher.Send(r.Context(), ch, msg)
	h.metrics.Observe(string(ch), res.ErrCode, time.Since(start))

	if !res.OK() {
		h.log.Error().
			Str("send_id", sendID).
			Int("errcode", res.ErrCode).
			Str("errmsg", res.ErrMsg).
			Msg("send failed")
		writeError(w, http.StatusBadRequest, res.ErrCode, res.ErrMsg)
		return
	}

	h.log.Info().Str("send_id", sendID).Msg("send succeeded")
	writeJSON(w, http.StatusOK, sendResponse{ErrCode: res.ErrCode, ErrMsg: res.ErrMsg, MsgID: res.MsgID})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// detailURL builds a link to this service's own detail page for the given
// message, using the inbound request's scheme and host.
func detailURL(r *http.Request, title, content string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   r.Host,
		Path:   "/detail",
		RawQuery: url.Values{
			"title":   {title},
			"content": {content},
		}.Encode(),
	}
	return u.String()
}

// preview truncates s for logging. Identifiers and titles are only ever
// logged through this; full values stay out of the logs.
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status, errcode int, msg string) {
	writeJSON(w, status, errorResponse{ErrCode: errcode, ErrMsg: msg})
}
