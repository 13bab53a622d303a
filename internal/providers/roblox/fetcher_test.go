package roblox

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"

	"assetproxy/internal/domain"
)

var mirrors = []string{
	"https://cdn-a.test/v1/asset",
	"https://cdn-b.test/asset/",
	"https://cdn-c.test/asset/",
}

type countingObserver struct {
	ok, failed []string
}

func (o *countingObserver) ObserveAttempt(endpoint string, ok bool) {
	if ok {
		o.ok = append(o.ok, endpoint)
		return
	}
	o.failed = append(o.failed, endpoint)
}

func TestCandidatesByType(t *testing.T) {
	client := newTestClient(t, &fakeTransport{}, Options{Endpoints: []string{"https://cdn-a.test/v1/asset"}})
	tests := []struct {
		name  string
		typ   domain.AssetType
		place string
		want  string
	}{
		{"audio", domain.AssetTypeAudio, "99", "https://cdn-a.test/v1/asset?id=123"},
		{"sound", domain.AssetTypeSound, "", "https://cdn-a.test/v1/asset?id=123"},
		{"animation ignores place", domain.AssetTypeAnimation, "99", "https://cdn-a.test/v1/asset?id=123"},
		{"model with place", domain.AssetTypeModel, "99", "https://cdn-a.test/v1/asset?id=123&serverplaceid=99"},
		{"place with place", domain.AssetTypePlace, "99", "https://cdn-a.test/v1/asset?id=123&serverplaceid=99"},
		{"model without place", domain.AssetTypeModel, "", "https://cdn-a.test/v1/asset?id=123"},
		{"unknown", domain.AssetTypeUnknown, "99", "https://cdn-a.test/v1/asset?id=123"},
		{"decal", "decal", "", "https://cdn-a.test/v1/asset?id=123"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := client.Candidates(domain.FetchRequest{AssetID: "123", Type: tc.typ, PlaceID: tc.place})
			if len(got) != 1 || got[0].URL != tc.want {
				t.Fatalf("candidates = %+v, want %s", got, tc.want)
			}
			if got[0].Endpoint != "cdn-a.test" {
				t.Fatalf("endpoint = %q", got[0].Endpoint)
			}
		})
	}
}

func TestCandidatesKeepConfiguredOrder(t *testing.T) {
	client := newTestClient(t, &fakeTransport{}, Options{Endpoints: mirrors})
	got := client.Candidates(domain.FetchRequest{AssetID: "7", Type: domain.AssetTypeAnimation})
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	for i, host := range []string{"cdn-a.test", "cdn-b.test", "cdn-c.test"} {
		if got[i].Endpoint != host {
			t.Fatalf("candidate %d = %s, want %s", i, got[i].Endpoint, host)
		}
	}
}

func TestFetchStopsAtFirstSuccess(t *testing.T) {
	for failing := 0; failing < len(mirrors); failing++ {
		t.Run(fmt.Sprintf("%d failures", failing), func(t *testing.T) {
			transport := &fakeTransport{}
			for i, m := range mirrors {
				if i < failing {
					if i%2 == 0 {
						transport.on(http.MethodGet, m, respond(http.StatusServiceUnavailable, ""))
					} else {
						transport.on(http.MethodGet, m, failNetwork)
					}
					continue
				}
				transport.on(http.MethodGet, m, respond(http.StatusOK, "payload-"+fmt.Sprint(i)))
			}
			observer := &countingObserver{}
			client := newTestClient(t, transport, Options{Endpoints: mirrors, VerifyMode: VerifyBody, Observer: observer})

			outcome := client.Fetch(context.Background(), domain.FetchRequest{AssetID: "42", Type: domain.AssetTypeSound})
			if !outcome.Success {
				t.Fatalf("expected success, got %+v", outcome)
			}
			if outcome.Attempts != failing+1 {
				t.Fatalf("attempts = %d, want %d", outcome.Attempts, failing+1)
			}
			if calls := transport.calls(); len(calls) != failing+1 {
				t.Fatalf("calls = %v, want %d", calls, failing+1)
			}
			if !strings.HasPrefix(outcome.SourceURL, mirrors[failing]) {
				t.Fatalf("source = %s, want candidate %d", outcome.SourceURL, failing)
			}
			if string(outcome.Payload) != "payload-"+fmt.Sprint(failing) {
				t.Fatalf("payload = %q", outcome.Payload)
			}
			if len(observer.failed) != failing || len(observer.ok) != 1 {
				t.Fatalf("observer = %+v", observer)
			}
		})
	}
}

func TestFetchAllCandidatesFail(t *testing.T) {
	transport := &fakeTransport{}
	transport.on(http.MethodHead, mirrors[0], respond(http.StatusForbidden, ""))
	transport.on(http.MethodHead, mirrors[1], failNetwork)
	transport.on(http.MethodHead, mirrors[2], respond(http.StatusNotFound, ""))
	client := newTestClient(t, transport, Options{Endpoints: mirrors})

	outcome := client.Fetch(context.Background(), domain.FetchRequest{AssetID: "42"})
	if outcome.Success {
		t.Fatalf("expected failure")
	}
	if outcome.Attempts != 3 || len(transport.calls()) != 3 {
		t.Fatalf("attempts = %d calls = %v, want 3", outcome.Attempts, transport.calls())
	}
	if !strings.Contains(outcome.Error, "cdn-c.test") || !strings.Contains(outcome.Error, "HTTP 404") {
		t.Fatalf("error should carry the last failure, got %q", outcome.Error)
	}
	if outcome.Payload != nil || outcome.SourceURL != "" {
		t.Fatalf("failed outcome must not carry payload or source")
	}
}

func TestFetchHeadRequiresExactly200(t *testing.T) {
	for status, want := range map[int]bool{http.StatusOK: true, http.StatusNoContent: false, http.StatusPartialContent: false} {
		transport := &fakeTransport{}
		transport.on(http.MethodHead, testDelivery, respond(status, ""))
		client := newTestClient(t, transport, Options{VerifyMode: VerifyHead})
		outcome := client.Fetch(context.Background(), domain.FetchRequest{AssetID: "1"})
		if outcome.Success != want {
			t.Fatalf("status %d: success = %v, want %v", status, outcome.Success, want)
		}
		if outcome.Payload != nil {
			t.Fatalf("head mode must not carry a payload")
		}
		if calls := transport.calls(); len(calls) != 1 || !strings.HasPrefix(calls[0], "HEAD ") {
			t.Fatalf("calls = %v", calls)
		}
	}
}

func TestFetchBodyRejectsEmptyBody(t *testing.T) {
	transport := &fakeTransport{}
	transport.on(http.MethodGet, testDelivery, respond(http.StatusOK, ""))
	client := newTestClient(t, transport, Options{VerifyMode: VerifyBody})
	outcome := client.Fetch(context.Background(), domain.FetchRequest{AssetID: "1"})
	if outcome.Success {
		t.Fatalf("empty body must fail")
	}
	if !strings.Contains(outcome.Error, "empty body") {
		t.Fatalf("error = %q", outcome.Error)
	}
}

func TestFetchDecodesContentEncoding(t *testing.T) {
	payload := []byte(`<roblox><Item class="KeyframeSequence"/></roblox>`)

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, _ = gw.Write(payload)
	_ = gw.Close()

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	_, _ = bw.Write(payload)
	_ = bw.Close()

	for enc, body := range map[string][]byte{"gzip": gz.Bytes(), "br": br.Bytes(), "": payload} {
		t.Run("encoding "+enc, func(t *testing.T) {
			transport := &fakeTransport{}
			transport.on(http.MethodGet, testDelivery, func(req *http.Request) (*http.Response, error) {
				if got := req.Header.Get("Accept-Encoding"); got != acceptEncoding {
					t.Errorf("accept-encoding = %q", got)
				}
				h := http.Header{}
				if enc != "" {
					h.Set("Content-Encoding", enc)
				}
				return stubResponse(http.StatusOK, h, body), nil
			})
			client := newTestClient(t, transport, Options{VerifyMode: VerifyBody})
			outcome := client.Fetch(context.Background(), domain.FetchRequest{AssetID: "1"})
			if !outcome.Success {
				t.Fatalf("fetch failed: %s", outcome.Error)
			}
			if !bytes.Equal(outcome.Payload, payload) {
				t.Fatalf("payload = %q", outcome.Payload)
			}
		})
	}
}

func TestFetchEnforcesPayloadLimit(t *testing.T) {
	transport := &fakeTransport{}
	transport.on(http.MethodGet, testDelivery, respond(http.StatusOK, strings.Repeat("x", 32)))
	client := newTestClient(t, transport, Options{VerifyMode: VerifyBody, MaxPayloadBytes: 16})
	outcome := client.Fetch(context.Background(), domain.FetchRequest{AssetID: "1"})
	if outcome.Success || !strings.Contains(outcome.Error, "exceeds 16 bytes") {
		t.Fatalf("outcome = %+v", outcome)
	}
}

func TestFetchFollowsAtMostFiveRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var hop int
		fmt.Sscanf(r.URL.Query().Get("hop"), "%d", &hop)
		limit := 0
		fmt.Sscanf(r.URL.Query().Get("limit"), "%d", &limit)
		if hop < limit {
			http.Redirect(w, r, fmt.Sprintf("/asset?id=1&limit=%d&hop=%d", limit, hop+1), http.StatusFound)
			return
		}
		_, _ = w.Write([]byte("done"))
	}))
	defer srv.Close()

	for limit, want := range map[int]bool{5: true, 6: false} {
		client, err := NewClient(Options{
			Endpoints:  []string{fmt.Sprintf("%s/asset?limit=%d", srv.URL, limit)},
			VerifyMode: VerifyBody,
			HTTPClient: srv.Client(),
		})
		if err != nil {
			t.Fatalf("new client: %v", err)
		}
		outcome := client.Fetch(context.Background(), domain.FetchRequest{AssetID: "1"})
		if outcome.Success != want {
			t.Fatalf("%d redirects: success = %v (%s), want %v", limit, outcome.Success, outcome.Error, want)
		}
	}
}

func TestNewClientValidatesEndpoints(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatalf("expected error without endpoints")
	}
	if _, err := NewClient(Options{Endpoints: append(mirrors, "https://cdn-d.test/asset")}); err == nil {
		t.Fatalf("expected error with four endpoints")
	}
	if _, err := NewClient(Options{Endpoints: mirrors, VerifyMode: "race"}); err == nil {
		t.Fatalf("expected error for unknown verify mode")
	}
}
