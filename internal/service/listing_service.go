package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uchejames/vibeshop/internal/catalog"
	"github.com/uchejames/vibeshop/internal/domain"
	"github.com/uchejames/vibeshop/internal/poster"
	"github.com/uchejames/vibeshop/internal/repository"
	"github.com/uchejames/vibeshop/internal/textgen"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// recordTimeout bounds the audit write, which outlives a cancelled request
const recordTimeout = 2 * time.Second

var (
	ErrInvalidInput    = errors.New("no image reference provided")
	ErrHistoryDisabled = errors.New("generation history is disabled")
)

// ListingService defines the interface for listing generation
type ListingService interface {
	Generate(ctx context.Context, req domain.ListingRequest) (*domain.ListingResult, error)
	Categories() []domain.CategoryPricing
	RecentGenerations(ctx context.Context, limit int) ([]*domain.GenerationRecord, error)
	GenerationStats(ctx context.Context) (*GenerationStats, error)
}

// GenerationStats summarizes the audit log
type GenerationStats struct {
	Total    int64                          `json:"total"`
	BySource map[domain.ListingSource]int64 `json:"by_source"`
}

type listingService struct {
	generator textgen.Generator
	renderer  poster.Renderer
	repo      repository.GenerationRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewListingService creates a new instance of ListingService.
// repo may be nil, which disables generation history.
func NewListingService(
	generator textgen.Generator,
	renderer poster.Renderer,
	repo repository.GenerationRepository,
	logger *zap.Logger,
) ListingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &listingService{
		generator: generator,
		renderer:  renderer,
		repo:      repo,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate runs the listing pipeline for one image. Failures of the text
// generator degrade to template listings; only a poster failure is an error.
func (s *listingService) Generate(ctx context.Context, req domain.ListingRequest) (*domain.ListingResult, error) {
	if strings.TrimSpace(req.ImageReference) == "" {
		return nil, ErrInvalidInput
	}

	start := s.now()

	display := req.Category
	if display == "" {
		display = string(domain.DefaultCategory)
	}
	pricing := catalog.Resolve(display)

	listing, source, cause := s.generateListing(ctx, display, pricing)
	if cause != nil {
		s.logger.Warn("Listing generation degraded",
			zap.String("category", display),
			zap.String("source", string(source)),
			zap.Error(cause),
		)
	}

	img, err := s.renderer.Render(listing.Title, display)
	if err != nil {
		return nil, fmt.Errorf("failed to render poster: %w", err)
	}

	duration := s.now().Sub(start)
	s.logger.Info("Listing generated",
		zap.String("category", display),
		zap.String("resolved_category", string(pricing.Category)),
		zap.String("source", string(source)),
		zap.String("model", s.generator.Model()),
		zap.String("renderer", img.Renderer),
		zap.Duration("duration", duration),
	)

	s.record(ctx, &domain.GenerationRecord{
		ID:                uuid.New(),
		RequestedCategory: req.Category,
		ResolvedCategory:  pricing.Category,
		Source:            source,
		Model:             s.generator.Model(),
		Renderer:          img.Renderer,
		DurationMs:        duration.Milliseconds(),
		ErrorMessage:      errorText(cause),
		CreatedAt:         start.UTC(),
	})

	return &domain.ListingResult{
		RemovedBg: req.ImageReference,
		Enhanced:  req.ImageReference,
		Poster:    img.DataURI(),
		Listing:   listing,
		ShareLink: nil,
	}, nil
}

// generateListing returns the listing, where it came from, and the reason it
// was degraded, if it was.
func (s *listingService) generateListing(ctx context.Context, display string, pricing domain.CategoryPricing) (domain.GeneratedListing, domain.ListingSource, error) {
	text, err := s.generator.Generate(ctx, textgen.BuildListingPrompt(display))
	if err != nil {
		return FallbackListing(display, pricing), domain.SourceFallback, fmt.Errorf("text generation failed: %w", err)
	}

	parsed, err := ParseListing(text)
	if err != nil {
		return FallbackListing(display, pricing), domain.SourceFallback, err
	}

	listing, defaulted := MergeListing(parsed, pricing)
	if defaulted {
		return listing, domain.SourcePartial, errors.New("generated listing was incomplete")
	}
	return listing, domain.SourceAI, nil
}

func (s *listingService) record(ctx context.Context, record *domain.GenerationRecord) {
	if s.repo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("Failed to record generation",
			zap.String("id", record.ID.String()),
			zap.Error(err),
		)
	}
}

// Categories returns the pricing table in enumeration order
func (s *listingService) Categories() []domain.CategoryPricing {
	return catalog.Categories()
}

// RecentGenerations returns the newest audit records
func (s *listingService) RecentGenerations(ctx context.Context, limit int) ([]*domain.GenerationRecord, error) {
	if s.repo == nil {
		return nil, ErrHistoryDisabled
	}

	records, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	return records, nil
}

// GenerationStats counts audit records per listing source
func (s *listingService) GenerationStats(ctx context.Context) (*GenerationStats, error) {
	if s.repo == nil {
		return nil, ErrHistoryDisabled
	}

	counts, err := s.repo.CountBySource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count generations: %w", err)
	}

	stats := &GenerationStats{BySource: counts}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
