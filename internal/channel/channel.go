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

// Package channel dispatches push messages to one of two WeChat vendor
// APIs, public-platform template messages ("wechat") and enterprise agent
// text messages ("workwechat"), behind a uniform send contract. Every
// adapter failure is converted into a structured Result; raw errors never
// escape an adapter.
package channel

import "context"

// Channel identifies which vendor platform handles a send.
type Channel string

const (
	// ChannelWeChat is the public-platform template-message channel.
	ChannelWeChat Channel = "wechat"
	// ChannelWorkWeChat is the enterprise agent text-message channel.
	ChannelWorkWeChat Channel = "workwechat"
)

// ParseChannel maps the request channel field to a known Channel. The
// empty string defaults to wechat; anything else unknown is rejected.
func ParseChannel(s string) (Channel, bool) {
	switch Channel(s) {
	case "":
		return ChannelWeChat, true
	case ChannelWeChat:
		return ChannelWeChat, true
	case ChannelWorkWeChat:
		return ChannelWorkWeChat, true
	default:
		return "", false
	}
}

// Message is one outbound push, already authenticated and validated.
// AppID/Secret double as corpid/corpsecret for the workwechat channel.
type Message struct {
	AppID   string
	Secret  string
	UserID  string
	Title   string
	Content string

	// BaseURL is the detail link attached to template messages. The
	// workwechat channel accepts it but has no link field to put it in.
	BaseURL string

	// TemplateID is used by the wechat channel only.
	TemplateID string

	// AgentID is used by the workwechat channel only.
	AgentID string
}

// Adapter is the uniform send contract every vendor adapter implements.
// Send always returns a structured Result, converting internal errors
// rather than propagating them.
type Adapter interface {
	Send(ctx context.Context, msg Message) Result
}

// Dispatcher selects the adapter for a message's channel. It is built once
// at startup and read-only afterwards, so it is safe for concurrent use.
type Dispatcher struct {
	adapters map[Channel]Adapter
}

// NewDispatcher creates a Dispatcher over the given adapters.
func NewDispatcher(adapters map[Channel]Adapter) *Dispatcher {
	return &Dispatcher{adapters: adapters}
}

// Send routes msg to the adapter registered for ch. An unregistered
// channel yields a bad-request Result; callers are expected to have
// validated the channel already, so this is a guard, not the primary
// rejection path.
func (d *Dispatcher) Send(ctx context.Context, ch Channel, msg Message) Result {
	adapter, ok := d.adapters[ch]
	if !ok {
		return Result{ErrCode: CodeBadRequest, ErrMsg: "unknown channel: " + string(ch)}
	}
	return adapter.Send(ctx, msg)
}
