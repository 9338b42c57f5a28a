package usecase

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/smartshop/backend/internal/domain"
)

// DiscoveryService asks the model for alternatives and keeps the relevant, live ones
type DiscoveryService struct {
	generator  domain.Generator
	relevance  *RelevanceFilter
	enrichment *EnrichmentService
	logger     logrus.FieldLogger
}

// NewDiscoveryService creates the discovery engine. A nil generator makes every
// discovery return an empty list.
func NewDiscoveryService(
	generator domain.Generator,
	relevance *RelevanceFilter,
	enrichment *EnrichmentService,
	logger logrus.FieldLogger,
) *DiscoveryService {
	return &DiscoveryService{
		generator:  generator,
		relevance:  relevance,
		enrichment: enrichment,
		logger:     logger.WithField("component", "discovery"),
	}
}

// Discover returns up to five validated alternatives for product.
// Flow: grounded generation -> parse -> relevance filter -> validate and enrich -> truncate.
// Model failures are logged and produce an empty list.
func (s *DiscoveryService) Discover(ctx context.Context, product *domain.ProductInfo) []domain.AlternativeCandidate {
	empty := []domain.AlternativeCandidate{}
	if product == nil {
		return empty
	}
	if s.generator == nil {
		s.logger.WithError(domain.ErrAIUnavailable).Warn("Skipping alternative search")
		return empty
	}

	result, err := s.generator.Generate(ctx, domain.GenerationRequest{
		Prompt:    AlternativesPrompt(product),
		Grounding: true,
	})
	if err != nil {
		s.logger.WithError(err).WithField("product", product.Name).Warn("Alternative search failed")
		return empty
	}
	s.logCitations(result.Citations)

	parsed, err := ParseCandidates(result.Text)
	if err != nil {
		s.logger.WithError(err).Warn("Could not parse alternatives")
		return empty
	}
	if parsed.Dropped > 0 {
		s.logger.WithField("dropped", parsed.Dropped).Debug("Discarded alternatives without name or url")
	}

	category := deref(product.Category)
	relevant := make([]domain.AlternativeCandidate, 0, len(parsed.Candidates))
	for _, candidate := range parsed.Candidates {
		if s.relevance.IsRelevant(category, product, candidate) {
			relevant = append(relevant, candidate)
			continue
		}
		s.logger.WithField("candidate", candidate.Name).Debug("Rejected irrelevant alternative")
	}

	alternatives := s.enrichment.ValidateAndEnrichAll(ctx, relevant)
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}

	s.logger.WithFields(logrus.Fields{
		"proposed": len(parsed.Candidates),
		"relevant": len(relevant),
		"returned": len(alternatives),
	}).Info("Alternative search complete")
	return alternatives
}

func (s *DiscoveryService) logCitations(citations []domain.Citation) {
	if len(citations) == 0 {
		return
	}
	s.logger.WithField("citations", len(citations)).Info("Search grounding used")
	for _, c := range citations {
		s.logger.WithFields(logrus.Fields{"uri": c.URI, "title": c.Title}).Debug("Grounding source")
	}
}
