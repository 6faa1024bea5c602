// wxpush - WeChat message push relay
// Copyright (C) 2026  wxpush contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

package channel

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
)

const (
	wechatTokenURL        = "https://api.weixin.qq.com/cgi-bin/token"
	wechatTemplateSendURL = "https://api.weixin.qq.com/cgi-bin/message/template/send"

	// templateColor is the fixed color applied to both template fields.
	// Templates on the public platform are expected to declare
	// {{title.DATA}} and {{content.DATA}}.
	templateColor = "#173177"
)

// WeChat sends public-platform template messages. A send is two vendor
// calls: token exchange, then the template POST with the token as a query
// credential.
type WeChat struct {
	// TokenURL and SendURL default to the production endpoints and are
	// overridable for tests.
	TokenURL string
	SendURL  string

	client            *http.Client
	tokens            *TokenClient
	defaultTemplateID string
	log               zerolog.Logger
}

// NewWeChat creates the public-platform adapter sharing the process-wide
// HTTP client. defaultTemplateID may be empty; sends without a template id
// then fail.
func NewWeChat(client *http.Client, defaultTemplateID string, log zerolog.Logger) *WeChat {
	return &WeChat{
		TokenURL:          wechatTokenURL,
		SendURL:           wechatTemplateSendURL,
		client:            client,
		tokens:            NewTokenClient(client),
		defaultTemplateID: defaultTemplateID,
		log:               log,
	}
}

type templateField struct {
	Value string `json:"value"`
	Color string `json:"color"`
}

// Send implements Adapter. Internal failures (missing template id, token
// exchange, vendor rejection) are converted to a structured Result; the
// vendor's numeric code passes through when there is one.
func (w *WeChat) Send(ctx context.Context, msg Message) Result {
	res, err := w.send(ctx, msg)
	if err != nil {
		w.log.Warn().Err(err).Str("channel", string(ChannelWeChat)).Msg("send failed")
		return resultFromError(err)
	}
	return res
}

func (w *WeChat) send(ctx context.Context, msg Message) (Result, error) {
	templateID := msg.TemplateID
	if templateID == "" {
		templateID = w.defaultTemplateID
	}
	if templateID == "" {
		return Result{}, &ConfigError{
			Msg: "template_id required: supply it in the request or set WXPUSH_DEFAULT_TEMPLATE_ID",
		}
	}

	token, _, err := w.tokens.Fetch(ctx, w.TokenURL, url.Values{
		"grant_type": {"client_credential"},
		"appid":      {msg.AppID},
		"secret":     {msg.Secret},
	})
	if err != nil {
		return Result{}, err
	}

	payload := map[string]any{
		"touser":      msg.UserID,
		"template_id": templateID,
		"data": map[string]templateField{
			"title":   {Value: msg.Title, Color: templateColor},
			"content": {Value: msg.Content, Color: templateColor},
		},
	}
	if msg.BaseURL != "" {
		payload["url"] = msg.BaseURL
	}

	vr, err := postVendorJSON(ctx, w.client, w.SendURL+"?access_token="+url.QueryEscape(token), payload)
	if err != nil {
		return Result{}, err
	}
	if vr.ErrCode != 0 {
		return Result{}, &VendorError{Code: vr.ErrCode, Msg: vr.ErrMsg}
	}
	return Result{ErrCode: CodeOK, ErrMsg: "ok", MsgID: vr.MsgID}, nil
}
