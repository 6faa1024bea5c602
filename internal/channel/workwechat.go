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
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
)

const (
	workwechatTokenURL = "https://qyapi.weixin.qq.com/cgi-bin/gettoken"
	workwechatSendURL  = "https://qyapi.weixin.qq.com/cgi-bin/message/send"
)

// WorkWeChat sends enterprise agent text messages. The request's
// appid/secret act as corpid/corpsecret for the token exchange. Text
// messages have no link field, so Message.BaseURL is accepted but unused.
type WorkWeChat struct {
	// TokenURL and SendURL default to the production endpoints and are
	// overridable for tests.
	TokenURL string
	SendURL  string

	client         *http.Client
	tokens         *TokenClient
	defaultAgentID string
	log            zerolog.Logger
}

// NewWorkWeChat creates the enterprise adapter sharing the process-wide
// HTTP client. defaultAgentID may be empty; sends without an agentid then
// fail.
func NewWorkWeChat(client *http.Client, defaultAgentID string, log zerolog.Logger) *WorkWeChat {
	return &WorkWeChat{
		TokenURL:       workwechatTokenURL,
		SendURL:        workwechatSendURL,
		client:         client,
		tokens:         NewTokenClient(client),
		defaultAgentID: defaultAgentID,
		log:            log,
	}
}

// Send implements Adapter. Unlike the wechat adapter, a missing or
// malformed agentid is returned as an error Result directly instead of
// surfacing through the error-conversion path; callers depend on the
// 40000 code for these cases.
func (w *WorkWeChat) Send(ctx context.Context, msg Message) Result {
	agentID := msg.AgentID
	if agentID == "" {
		agentID = w.defaultAgentID
	}
	if agentID == "" {
		return Result{
			ErrCode: CodeBadRequest,
			ErrMsg:  "agentid required: supply it in the request or set WXPUSH_DEFAULT_AGENTID",
		}
	}
	agent, err := strconv.Atoi(agentID)
	if err != nil {
		return Result{
			ErrCode: CodeBadRequest,
			ErrMsg:  fmt.Sprintf("agentid must be an integer, got %q", agentID),
		}
	}

	res, err := w.send(ctx, msg, agent)
	if err != nil {
		w.log.Warn().Err(err).Str("channel", string(ChannelWorkWeChat)).Msg("send failed")
		return resultFromError(err)
	}
	return res
}

func (w *WorkWeChat) send(ctx context.Context, msg Message, agentID int) (Result, error) {
	token, _, err := w.tokens.Fetch(ctx, w.TokenURL, url.Values{
		"corpid":     {msg.AppID},
		"corpsecret": {msg.Secret},
	})
	if err != nil {
		return Result{}, err
	}

	payload := map[string]any{
		"touser":  msg.UserID,
		"msgtype": "text",
		"agentid": agentID,
		"text": map[string]string{
			"content": msg.Title + "\n\n" + msg.Content,
		},
		"safe": 0,
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
