package roblox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"assetproxy/internal/assettype"
	"assetproxy/internal/domain"
)

type catalogResponse struct {
	Data []catalogItem `json:"data"`
}

type catalogItem struct {
	Name        string          `json:"name"`
	CreatorName string          `json:"creatorName"`
	ItemType    json.RawMessage `json:"itemType"`
	AssetType   *int            `json:"assetType"`
}

var errEmptyCatalog = errors.New("catalog returned no items")

// Resolve looks up name, creator and type for assetID. The catalog API is
// asked first; when it yields nothing usable, the existence API decides
// whether a placeholder record is returned. When both fail the error wraps
// domain.ErrNotFound.
func (c *Client) Resolve(ctx context.Context, assetID, credential string) (*domain.AssetMetadata, error) {
	rc := c.requestContext(credential)

	meta, err := c.catalogDetails(ctx, rc, assetID)
	if err == nil {
		return meta, nil
	}
	c.logger.Debug().Err(err).Str("asset_id", assetID).Str("source", "catalog").Msg("metadata lookup failed, trying existence check")

	if err := c.assetExists(ctx, rc, assetID); err != nil {
		c.logger.Warn().Err(err).Str("asset_id", assetID).Str("source", "existence").Msg("asset not resolvable")
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, assetID)
	}
	return &domain.AssetMetadata{
		Name:        "Asset_" + assetID,
		Creator:     "Unknown",
		Type:        domain.AssetTypeUnknown,
		Placeholder: true,
	}, nil
}

func (c *Client) catalogDetails(ctx context.Context, rc RequestContext, assetID string) (*domain.AssetMetadata, error) {
	endpoint := c.catalogBaseURL + "/v1/catalog/items/details?itemIds=" + url.QueryEscape(assetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	rc.Apply(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("catalog status %d", resp.StatusCode)
	}

	var decoded catalogResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	if len(decoded.Data) == 0 {
		return nil, errEmptyCatalog
	}
	item := decoded.Data[0]
	return &domain.AssetMetadata{
		Name:    strings.TrimSpace(item.Name),
		Creator: strings.TrimSpace(item.CreatorName),
		Type:    itemType(item),
	}, nil
}

// itemType prefers the numeric assetType field, then itemType as either a
// numeric code or a type name.
func itemType(item catalogItem) domain.AssetType {
	if item.AssetType != nil {
		return assettype.FromCode(*item.AssetType)
	}
	if len(item.ItemType) == 0 {
		return domain.AssetTypeUnknown
	}
	var code int
	if err := json.Unmarshal(item.ItemType, &code); err == nil {
		return assettype.FromCode(code)
	}
	var name string
	if err := json.Unmarshal(item.ItemType, &name); err == nil {
		return assettype.FromName(name)
	}
	return domain.AssetTypeUnknown
}

func (c *Client) assetExists(ctx context.Context, rc RequestContext, assetID string) error {
	endpoint := c.deliveryBaseURL + "/v1/assetId/" + url.PathEscape(assetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build existence request: %w", err)
	}
	rc.Apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("existence request: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("existence status %d", resp.StatusCode)
	}
	return nil
}
