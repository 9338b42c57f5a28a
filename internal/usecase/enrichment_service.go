package usecase

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smartshop/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// EnrichmentServiceConfig holds configuration for the validation and enrichment pipeline
type EnrichmentServiceConfig struct {
	CacheTTL     time.Duration
	ImageTimeout time.Duration
}

// EnrichmentService confirms alternative URLs are live and recovers a picture for each
type EnrichmentService struct {
	checker      domain.LinkChecker
	renderer     domain.PageRenderer
	validity     domain.CacheRepository
	images       domain.CacheRepository
	cacheTTL     time.Duration
	imageTimeout time.Duration
	logger       logrus.FieldLogger
}

// NewEnrichmentService creates the pipeline. validity and images must be separate caches
// since both are keyed by the candidate URL.
func NewEnrichmentService(
	checker domain.LinkChecker,
	renderer domain.PageRenderer,
	validity domain.CacheRepository,
	images domain.CacheRepository,
	config EnrichmentServiceConfig,
	logger logrus.FieldLogger,
) *EnrichmentService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}
	imageTimeout := config.ImageTimeout
	if imageTimeout == 0 {
		imageTimeout = 25 * time.Second
	}

	return &EnrichmentService{
		checker:      checker,
		renderer:     renderer,
		validity:     validity,
		images:       images,
		cacheTTL:     cacheTTL,
		imageTimeout: imageTimeout,
		logger:       logger.WithField("component", "enrichment"),
	}
}

// ValidateURL reports whether rawURL answers with a 2xx status.
// Outcomes, including negative ones for malformed URLs, are cached by the exact URL string.
func (s *EnrichmentService) ValidateURL(ctx context.Context, rawURL string) bool {
	if cached, err := s.validity.Get(ctx, rawURL); err == nil {
		if valid, ok := cached.(bool); ok {
			return valid
		}
	}

	valid := false
	if isHTTPURL(rawURL) {
		ok, err := s.checker.Check(ctx, rawURL)
		if err != nil {
			s.logger.WithError(err).WithField("url", rawURL).Debug("URL validation failed")
		}
		valid = ok && err == nil
	}

	s.store(ctx, s.validity, rawURL, valid)
	return valid
}

// RecoverImage renders the page at pageURL and returns a representative image, or nil.
// A nil outcome is cached like any other.
func (s *EnrichmentService) RecoverImage(ctx context.Context, pageURL string) *string {
	if cached, err := s.images.Get(ctx, pageURL); err == nil {
		switch v := cached.(type) {
		case nil:
			return nil
		case string:
			return domain.StringPtr(v)
		}
	}

	var image *string
	snapshot, err := s.renderer.Render(ctx, pageURL, s.imageTimeout)
	if err != nil {
		s.logger.WithError(err).WithField("url", pageURL).Warn("Image recovery render failed")
	} else if doc, parseErr := ParseSnapshot(snapshot); parseErr == nil {
		finalURL := snapshot.URL
		if finalURL == "" {
			finalURL = pageURL
		}
		image = ExtractRecoveryImage(doc, finalURL)
	}

	if image == nil {
		s.store(ctx, s.images, pageURL, nil)
	} else {
		s.store(ctx, s.images, pageURL, *image)
	}
	return image
}

// ValidateAndEnrich returns candidate with a refreshed ImageURL, or nil when its URL is not live
func (s *EnrichmentService) ValidateAndEnrich(ctx context.Context, candidate domain.AlternativeCandidate) *domain.AlternativeCandidate {
	if !s.ValidateURL(ctx, candidate.URL) {
		return nil
	}

	enriched := candidate
	if image := s.RecoverImage(ctx, candidate.URL); image != nil {
		enriched.ImageURL = image
	}
	return &enriched
}

// ValidateAndEnrichAll runs ValidateAndEnrich for every candidate concurrently.
// The result keeps input order and omits candidates that failed validation.
func (s *EnrichmentService) ValidateAndEnrichAll(ctx context.Context, candidates []domain.AlternativeCandidate) []domain.AlternativeCandidate {
	results := make([]*domain.AlternativeCandidate, len(candidates))

	var g errgroup.Group
	for i, candidate := range candidates {
		i, candidate := i, candidate
		g.Go(func() error {
			results[i] = s.ValidateAndEnrich(ctx, candidate)
			return nil
		})
	}
	_ = g.Wait()

	kept := make([]domain.AlternativeCandidate, 0, len(candidates))
	for _, r := range results {
		if r != nil {
			kept = append(kept, *r)
		}
	}
	return kept
}

// store writes to a cache, logging instead of failing when the backend is down.
// Outcomes observed under a done context say nothing about the URL and are not kept.
func (s *EnrichmentService) store(ctx context.Context, cache domain.CacheRepository, key string, value interface{}) {
	if ctx.Err() != nil {
		s.logger.WithField("key", key).Debug("Context done, outcome not cached")
		return
	}
	if err := cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		entry := s.logger.WithError(err).WithField("key", key)
		if errors.Is(err, domain.ErrCacheUnavailable) {
			entry.Warn("Cache unavailable")
			return
		}
		entry.Debug("Cache write failed")
	}
}

func isHTTPURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
