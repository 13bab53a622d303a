package roblox

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"assetproxy/internal/domain"
)

const (
	testCatalog  = "https://catalog.test"
	testDelivery = "https://delivery.test"
)

func newTestClient(t *testing.T, transport http.RoundTripper, opts Options) *Client {
	t.Helper()
	opts.CatalogBaseURL = testCatalog
	opts.DeliveryBaseURL = testDelivery
	if len(opts.Endpoints) == 0 {
		opts.Endpoints = []string{testDelivery + "/v1/asset"}
	}
	opts.HTTPClient = &http.Client{Transport: transport}
	client, err := NewClient(opts)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestResolveFromCatalogNumericType(t *testing.T) {
	transport := &fakeTransport{}
	transport.on(http.MethodGet, testCatalog+"/v1/catalog/items/details?itemIds=123", respondJSON(map[string]any{
		"data": []any{map[string]any{"name": "Walk Cycle", "creatorName": "builder", "itemType": "Asset", "assetType": 24}},
	}))
	client := newTestClient(t, transport, Options{})

	meta, err := client.Resolve(context.Background(), "123", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if meta.Name != "Walk Cycle" || meta.Creator != "builder" || meta.Type != domain.AssetTypeAnimation {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if meta.Placeholder {
		t.Fatalf("catalog record must not be a placeholder")
	}
	if calls := transport.calls(); len(calls) != 1 {
		t.Fatalf("calls = %v, want only the catalog call", calls)
	}
}

func TestResolveFromCatalogItemTypeCodeAndName(t *testing.T) {
	tests := []struct {
		name     string
		itemType any
		want     domain.AssetType
	}{
		{"numeric", 3, domain.AssetTypeAudio},
		{"string name", "Animation", domain.AssetTypeAnimation},
		{"numeric string", "10", domain.AssetTypeModel},
		{"unmapped", "Bundle", domain.AssetTypeUnknown},
		{"unmapped code", 6, domain.AssetTypeUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			transport := &fakeTransport{}
			transport.on(http.MethodGet, testCatalog, respondJSON(map[string]any{
				"data": []any{map[string]any{"name": "x", "creatorName": "y", "itemType": tc.itemType}},
			}))
			client := newTestClient(t, transport, Options{})
			meta, err := client.Resolve(context.Background(), "5", "")
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if meta.Type != tc.want {
				t.Fatalf("type = %q, want %q", meta.Type, tc.want)
			}
		})
	}
}

func TestResolveFallsBackToExistenceCheck(t *testing.T) {
	for name, catalog := range map[string]func(*http.Request) (*http.Response, error){
		"empty data":    respondJSON(map[string]any{"data": []any{}}),
		"malformed":     respond(http.StatusOK, "<html>"),
		"server error":  respond(http.StatusInternalServerError, ""),
		"network error": failNetwork,
	} {
		t.Run(name, func(t *testing.T) {
			transport := &fakeTransport{}
			transport.on(http.MethodGet, testCatalog, catalog)
			transport.on(http.MethodGet, testDelivery+"/v1/assetId/77", respond(http.StatusOK, `{"location":"x"}`))
			client := newTestClient(t, transport, Options{})

			meta, err := client.Resolve(context.Background(), "77", "")
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			want := domain.AssetMetadata{Name: "Asset_77", Creator: "Unknown", Type: domain.AssetTypeUnknown, Placeholder: true}
			if *meta != want {
				t.Fatalf("metadata = %+v, want %+v", *meta, want)
			}
			if calls := transport.calls(); len(calls) != 2 {
				t.Fatalf("calls = %v, want catalog then existence", calls)
			}
		})
	}
}

func TestResolveNotFoundWhenBothFail(t *testing.T) {
	transport := &fakeTransport{}
	transport.on(http.MethodGet, testCatalog, respondJSON(map[string]any{"data": []any{}}))
	transport.on(http.MethodGet, testDelivery+"/v1/assetId/", respond(http.StatusForbidden, ""))
	client := newTestClient(t, transport, Options{})

	meta, err := client.Resolve(context.Background(), "9", "")
	if meta != nil {
		t.Fatalf("expected no metadata, got %+v", meta)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveSendsHeaders(t *testing.T) {
	transport := &fakeTransport{}
	transport.on(http.MethodGet, testCatalog, respondJSON(map[string]any{"data": []any{map[string]any{"name": "n", "assetType": 1}}}))
	client := newTestClient(t, transport, Options{})

	if _, err := client.Resolve(context.Background(), "1", "secret-token"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := client.Resolve(context.Background(), "1", ""); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	withCookie, without := transport.requests[0], transport.requests[1]
	if got := withCookie.Header.Get("Cookie"); got != ".ROBLOSECURITY=secret-token" {
		t.Fatalf("cookie = %q", got)
	}
	if got := withCookie.Header.Get("User-Agent"); got != DefaultUserAgent {
		t.Fatalf("user agent = %q", got)
	}
	if got := without.Header.Get("Cookie"); got != "" {
		t.Fatalf("cookie sent without credential: %q", got)
	}
}

func TestRequestContextCustomCookieName(t *testing.T) {
	rc := NewRequestContext("", ".SESSION", " abc ")
	if !rc.HasCredential() {
		t.Fatalf("expected credential")
	}
	h := rc.Header()
	if h.Get("Cookie") != ".SESSION=abc" {
		t.Fatalf("cookie = %q", h.Get("Cookie"))
	}
	h.Set("Cookie", "mutated")
	if rc.Header().Get("Cookie") != ".SESSION=abc" {
		t.Fatalf("request context mutated through returned header")
	}
	if NewRequestContext("", "", "").HasCredential() {
		t.Fatalf("empty credential must not attach a cookie")
	}
}
