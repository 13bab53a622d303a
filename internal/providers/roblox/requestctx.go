package roblox

import (
	"net/http"
	"strings"
)

// DefaultUserAgent is the browser identification sent on every upstream call.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// DefaultCookieName is the session cookie the upstream platform expects.
const DefaultCookieName = ".ROBLOSECURITY"

// RequestContext is the immutable header set for one caller. It is built
// once per operation and applied to every outbound request of that operation.
type RequestContext struct {
	userAgent string
	cookie    string
}

// NewRequestContext builds the header set. An empty credential means no
// Cookie header is sent.
func NewRequestContext(userAgent, cookieName, credential string) RequestContext {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	rc := RequestContext{userAgent: userAgent}
	if credential = strings.TrimSpace(credential); credential != "" {
		rc.cookie = cookieName + "=" + credential
	}
	return rc
}

// HasCredential reports whether a session cookie will be attached.
func (rc RequestContext) HasCredential() bool {
	return rc.cookie != ""
}

// Header returns a fresh copy of the headers.
func (rc RequestContext) Header() http.Header {
	h := http.Header{}
	h.Set("User-Agent", rc.userAgent)
	if rc.cookie != "" {
		h.Set("Cookie", rc.cookie)
	}
	return h
}

// Apply sets the headers on req.
func (rc RequestContext) Apply(req *http.Request) {
	for k, v := range rc.Header() {
		req.Header[k] = v
	}
}
