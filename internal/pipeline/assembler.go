package pipeline

import (
	"context"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/zeebo/blake3"

	"assetproxy/internal/assettype"
	"assetproxy/internal/domain"
	"assetproxy/internal/infra"
)

// MetadataExtractor inspects a payload for metadata the catalog did not give.
type MetadataExtractor interface {
	Extract(payload []byte) domain.PartialMetadata
}

// AssemblerOptions configures an Assembler.
type AssemblerOptions struct {
	Policy        Policy
	Filenames     FilenameGenerator
	Persist       bool
	Store         domain.BlobStore
	PublicBaseURL string
	Extractor     MetadataExtractor
	Logger        *infra.Logger
}

// Assembler turns resolved metadata plus a fetch outcome into the result a
// client receives. In redirect mode the download URL points back at the
// upstream source; in persist mode the payload is written to the blob store
// and served from /downloads.
type Assembler struct {
	policy    Policy
	filenames FilenameGenerator
	persist   bool
	store     domain.BlobStore
	baseURL   string
	extractor MetadataExtractor
	logger    *infra.Logger
}

func NewAssembler(opts AssemblerOptions) *Assembler {
	return &Assembler{
		policy:    opts.Policy,
		filenames: opts.Filenames,
		persist:   opts.Persist,
		store:     opts.Store,
		baseURL:   strings.TrimRight(opts.PublicBaseURL, "/"),
		extractor: opts.Extractor,
		logger:    infra.OrDiscard(opts.Logger),
	}
}

// Assemble builds the download result. It fails with ErrNotFound when the
// fetch failed, ErrUnsupportedType when the policy rejects the effective
// type and ErrPersistence when the payload cannot be stored.
func (a *Assembler) Assemble(ctx context.Context, req domain.AssetRequest, meta *domain.AssetMetadata, outcome domain.FetchOutcome) (*domain.DownloadResult, error) {
	if !outcome.Success {
		msg := outcome.Error
		if msg == "" {
			msg = "Failed to download asset"
		}
		return nil, domain.Errorf(domain.ErrNotFound, "%s", msg)
	}

	info := domain.AssetMetadata{Type: domain.AssetTypeUnknown}
	if meta != nil {
		info = *meta
	}
	assetType := info.Type.Canonical()
	if assetType == domain.AssetTypeUnknown && len(outcome.Payload) > 0 {
		assetType = assettype.Sniff(outcome.Payload)
	}
	if info.Placeholder && a.extractor != nil && len(outcome.Payload) > 0 {
		partial := a.extractor.Extract(outcome.Payload)
		if partial.Name != "" {
			info.Name = partial.Name
		}
		if partial.Creator != "" {
			info.Creator = partial.Creator
		}
		if assetType == domain.AssetTypeUnknown && partial.Type != "" {
			assetType = partial.Type.Canonical()
		}
	}

	if !a.policy.Allows(assetType) {
		return nil, domain.Errorf(domain.ErrUnsupportedType, "Asset type %s is not supported", assetType)
	}

	result := &domain.DownloadResult{
		AssetID:   req.AssetID,
		AssetType: assetType,
		AssetName: info.Name,
		Creator:   info.Creator,
		Filename:  a.filenames.Filename(assetType, req.AssetID),
		SourceURL: outcome.SourceURL,
		Size:      len(outcome.Payload),
		Message:   "Successfully processed " + assetType.DisplayName(),
	}
	if len(outcome.Payload) > 0 {
		sum := blake3.Sum256(outcome.Payload)
		result.Checksum = hex.EncodeToString(sum[:])
	}

	if !a.persist {
		result.DownloadURL = outcome.SourceURL
		return result, nil
	}
	if len(outcome.Payload) == 0 || a.store == nil {
		return nil, domain.Errorf(domain.ErrPersistence, "No payload available to store for asset %s", req.AssetID)
	}
	key, err := a.store.Write(ctx, result.Filename, outcome.Payload)
	if err != nil {
		a.logger.Error().Err(err).Str("asset_id", req.AssetID).Str("filename", result.Filename).Msg("persist payload")
		return nil, domain.Errorf(domain.ErrPersistence, "Failed to store asset %s", req.AssetID)
	}
	result.Filename = key
	result.DownloadURL = a.baseURL + "/downloads/" + url.PathEscape(key)
	result.Persisted = true
	return result, nil
}
