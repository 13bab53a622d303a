// Package pipeline runs the single-asset and batch download flows: validate,
// resolve metadata, fetch across candidate endpoints, then assemble.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"assetproxy/internal/domain"
	"assetproxy/internal/infra"
)

// DefaultBatchMax bounds a batch when no explicit maximum is configured.
const DefaultBatchMax = 10

// Resolver determines what an asset is.
type Resolver interface {
	Resolve(ctx context.Context, assetID, credential string) (*domain.AssetMetadata, error)
}

// Fetcher retrieves the payload across candidate endpoints.
type Fetcher interface {
	Fetch(ctx context.Context, req domain.FetchRequest) domain.FetchOutcome
}

// DownloadObserver counts pipeline outcomes.
type DownloadObserver interface {
	ObserveDownload(outcome string)
}

// Options wires a Service.
type Options struct {
	Resolver  Resolver
	Fetcher   Fetcher
	Assembler *Assembler
	History   domain.DownloadRepository
	Observer  DownloadObserver
	BatchMax  int
	Logger    *infra.Logger
}

// Service is safe for concurrent use; it holds no per-request state.
type Service struct {
	resolver  Resolver
	fetcher   Fetcher
	assembler *Assembler
	history   domain.DownloadRepository
	observer  DownloadObserver
	batchMax  int
	logger    *infra.Logger
}

func NewService(opts Options) (*Service, error) {
	if opts.Resolver == nil || opts.Fetcher == nil || opts.Assembler == nil {
		return nil, errors.New("pipeline: resolver, fetcher and assembler are required")
	}
	batchMax := opts.BatchMax
	if batchMax <= 0 {
		batchMax = DefaultBatchMax
	}
	return &Service{
		resolver:  opts.Resolver,
		fetcher:   opts.Fetcher,
		assembler: opts.Assembler,
		history:   opts.History,
		observer:  opts.Observer,
		batchMax:  batchMax,
		logger:    infra.OrDiscard(opts.Logger),
	}, nil
}

// BatchMax reports the largest accepted batch.
func (s *Service) BatchMax() int { return s.batchMax }

// Info resolves metadata only. Types outside the delivery policy are
// reported as unsupported.
func (s *Service) Info(ctx context.Context, assetID, credential string) (*domain.AssetMetadata, error) {
	assetID = strings.TrimSpace(assetID)
	if err := validateAssetID(assetID); err != nil {
		return nil, err
	}
	meta, err := s.resolve(ctx, assetID, credential)
	if err != nil {
		return nil, err
	}
	if !s.assembler.policy.Allows(meta.Type) {
		return nil, domain.Errorf(domain.ErrUnsupportedType, "Asset type %s is not supported", meta.Type.Canonical())
	}
	return meta, nil
}

// Download runs the full pipeline for one asset. Validation happens before
// any outbound call.
func (s *Service) Download(ctx context.Context, req domain.AssetRequest) (*domain.DownloadResult, error) {
	req.AssetID = strings.TrimSpace(req.AssetID)
	req.PlaceID = strings.TrimSpace(req.PlaceID)
	if err := validateRequest(req); err != nil {
		s.observe(err)
		return nil, err
	}
	result, err := s.download(ctx, req)
	s.observe(err)
	s.record(ctx, req, result, err)
	return result, err
}

func (s *Service) download(ctx context.Context, req domain.AssetRequest) (*domain.DownloadResult, error) {
	start := time.Now()
	meta, err := s.resolve(ctx, req.AssetID, req.Credential)
	if err != nil {
		return nil, err
	}
	outcome := s.fetcher.Fetch(ctx, domain.FetchRequest{
		AssetID:    req.AssetID,
		Type:       meta.Type,
		Credential: req.Credential,
		PlaceID:    req.PlaceID,
	})
	result, err := s.assembler.Assemble(ctx, req, meta, outcome)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("asset_id", req.AssetID).
		Str("asset_type", string(result.AssetType)).
		Str("source", result.SourceURL).
		Bool("persisted", result.Persisted).
		Dur("took", time.Since(start)).
		Msg("asset processed")
	return result, nil
}

func (s *Service) resolve(ctx context.Context, assetID, credential string) (*domain.AssetMetadata, error) {
	meta, err := s.resolver.Resolve(ctx, assetID, credential)
	if err != nil {
		s.logger.Warn().Err(err).Str("asset_id", assetID).Msg("resolve asset")
		return nil, domain.Errorf(domain.ErrNotFound, "Asset not found or is private")
	}
	if meta == nil {
		return &domain.AssetMetadata{Type: domain.AssetTypeUnknown}, nil
	}
	return meta, nil
}

func (s *Service) observe(err error) {
	if s.observer != nil {
		s.observer.ObserveDownload(Outcome(err))
	}
}

func (s *Service) record(ctx context.Context, req domain.AssetRequest, result *domain.DownloadResult, err error) {
	if s.history == nil {
		return
	}
	rec := domain.DownloadRecord{
		AssetID:   req.AssetID,
		AssetType: domain.AssetTypeUnknown,
		Success:   err == nil,
		RequestID: infra.RequestIDFromContext(ctx),
	}
	if result != nil {
		rec.AssetType = result.AssetType
		rec.Filename = result.Filename
		rec.SourceURL = result.SourceURL
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if recErr := s.history.Record(ctx, rec); recErr != nil && !errors.Is(recErr, domain.ErrHistoryDisabled) {
		s.logger.Error().Err(recErr).Str("asset_id", req.AssetID).Msg("record download history")
	}
}

// Outcome classifies a pipeline error into a metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	default:
		return "error"
	}
}

func validateAssetID(assetID string) error {
	if assetID == "" {
		return domain.Errorf(domain.ErrValidation, "Asset ID is required")
	}
	if !domain.IsNumericID(assetID) {
		return domain.Errorf(domain.ErrValidation, "Asset ID must be numeric")
	}
	return nil
}

func validateRequest(req domain.AssetRequest) error {
	if err := validateAssetID(req.AssetID); err != nil {
		return err
	}
	if req.PlaceID != "" && !domain.IsNumericID(req.PlaceID) {
		return domain.Errorf(domain.ErrValidation, "Place ID must be numeric")
	}
	return nil
}
