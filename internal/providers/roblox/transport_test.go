package roblox

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
)

// fakeTransport answers by "METHOD url-prefix" and records every request.
type fakeTransport struct {
	mu       sync.Mutex
	routes   []route
	requests []*http.Request
}

type route struct {
	method string
	prefix string
	handle func(*http.Request) (*http.Response, error)
}

func (f *fakeTransport) on(method, prefix string, handle func(*http.Request) (*http.Response, error)) {
	f.routes = append(f.routes, route{method: method, prefix: prefix, handle: handle})
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	routes := append([]route(nil), f.routes...)
	f.mu.Unlock()
	for _, r := range routes {
		if r.method == req.Method && strings.HasPrefix(req.URL.String(), r.prefix) {
			return r.handle(req)
		}
	}
	return stubResponse(http.StatusNotFound, nil, []byte("not found")), nil
}

func (f *fakeTransport) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.Method + " " + r.URL.String()
	}
	return out
}

func stubResponse(status int, header http.Header, body []byte) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

func respond(status int, body string) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		return stubResponse(status, nil, []byte(body)), nil
	}
}

func respondJSON(payload any) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		body, _ := json.Marshal(payload)
		return stubResponse(http.StatusOK, http.Header{"Content-Type": []string{"application/json"}}, body), nil
	}
}

func failNetwork(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}
