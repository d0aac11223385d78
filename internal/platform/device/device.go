// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package device derives the client description stored on every session row.
package device

import (
	"net"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/mssola/useragent"
)

// Device types recorded on sessions.
const (
	TypeDesktop = "desktop"
	TypeMobile  = "mobile"
	TypeBot     = "bot"
	TypeUnknown = "unknown"
)

// maxUserAgentLength bounds what is persisted; browsers rarely exceed 512 bytes.
const maxUserAgentLength = 512

// Info describes the client that opened a session.
type Info struct {
	UserAgent  string
	IP         string
	IPCountry  string
	DeviceType string
	DeviceName string
	OSName     string
}

// Parse builds an [Info] from a raw User-Agent header and client IP.
//
// IP is kept only when it parses, so that it can be written to an inet column.
// Invalid UTF-8 is dropped from the User-Agent before anything is derived from it.
func Parse(rawUserAgent, ip string) Info {
	rawUserAgent = strings.ToValidUTF8(rawUserAgent, "")

	info := Info{
		UserAgent:  truncate(rawUserAgent, maxUserAgentLength),
		DeviceType: TypeUnknown,
		DeviceName: TypeUnknown,
		OSName:     TypeUnknown,
	}
	if parsed := net.ParseIP(ip); parsed != nil {
		info.IP = parsed.String()
	}

	if strings.TrimSpace(rawUserAgent) == "" {
		return info
	}

	ua := useragent.New(rawUserAgent)

	switch {
	case ua.Bot():
		info.DeviceType = TypeBot
	case ua.Mobile():
		info.DeviceType = TypeMobile
	default:
		info.DeviceType = TypeDesktop
	}

	if name, version := ua.Browser(); name != "" {
		info.DeviceName = strings.TrimSpace(name + " " + version)
	}
	if os := ua.OS(); os != "" {
		info.OSName = os
	}

	return info
}

// FromRequest parses the request's User-Agent against the given client IP.
//
// ip comes from the middleware's proxy-aware resolver rather than RemoteAddr.
func FromRequest(request *http.Request, ip string) Info {
	return Parse(request.UserAgent(), ip)
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	end := max
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end]
}
