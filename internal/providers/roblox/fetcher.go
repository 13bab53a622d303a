package roblox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"assetproxy/internal/domain"
)

// Candidates builds the ordered candidate URLs for req, one per configured
// endpoint. Model and place assets are place-scoped when a place ID is given.
func (c *Client) Candidates(req domain.FetchRequest) []domain.FetchCandidate {
	placeScoped := req.PlaceID != "" && req.Type.Canonical() == domain.AssetTypeModel
	out := make([]domain.FetchCandidate, 0, len(c.endpoints))
	for _, base := range c.endpoints {
		u, err := url.Parse(base)
		if err != nil {
			continue
		}
		q := u.Query()
		q.Set("id", req.AssetID)
		if placeScoped {
			q.Set("serverplaceid", req.PlaceID)
		}
		u.RawQuery = q.Encode()
		out = append(out, domain.FetchCandidate{URL: u.String(), Endpoint: u.Host})
	}
	return out
}

// Fetch tries each candidate in order and stops at the first success. It
// never returns an error: every failure is folded into the outcome, which
// carries the last candidate error when all of them fail.
func (c *Client) Fetch(ctx context.Context, req domain.FetchRequest) domain.FetchOutcome {
	rc := c.requestContext(req.Credential)
	candidates := c.Candidates(req)

	var outcome domain.FetchOutcome
	lastErr := errors.New("no candidate endpoints")
	for _, cand := range candidates {
		outcome.Attempts++
		payload, contentType, err := c.try(ctx, rc, cand.URL)
		c.observe(cand.Endpoint, err == nil)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", cand.Endpoint, err)
			c.logger.Debug().Err(err).
				Str("asset_id", req.AssetID).
				Str("source", cand.URL).
				Int("attempt", outcome.Attempts).
				Msg("candidate failed")
			continue
		}
		outcome.Success = true
		outcome.Payload = payload
		outcome.SourceURL = cand.URL
		outcome.ContentType = contentType
		return outcome
	}

	c.logger.Warn().Err(lastErr).
		Str("asset_id", req.AssetID).
		Int("attempts", outcome.Attempts).
		Msg("all candidates failed")
	outcome.Error = fmt.Sprintf("Failed to download asset: %v", lastErr)
	return outcome
}

func (c *Client) try(ctx context.Context, rc RequestContext, target string) ([]byte, string, error) {
	method := http.MethodGet
	if c.verify == VerifyHead {
		method = http.MethodHead
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	rc.Apply(req)
	if c.verify == VerifyBody {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	contentType := resp.Header.Get("Content-Type")

	if c.verify == VerifyHead {
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode != http.StatusOK {
			return nil, "", fmt.Errorf("%w: asset not accessible: HTTP %d", domain.ErrUpstream, resp.StatusCode)
		}
		return nil, contentType, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil, "", fmt.Errorf("%w: HTTP %d", domain.ErrUpstream, resp.StatusCode)
	}
	payload, err := decodeBody(resp, c.maxPayload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if len(payload) == 0 {
		return nil, "", fmt.Errorf("%w: empty body", domain.ErrUpstream)
	}
	return payload, contentType, nil
}

func (c *Client) observe(endpoint string, ok bool) {
	if c.observer != nil {
		c.observer.ObserveAttempt(endpoint, ok)
	}
}
