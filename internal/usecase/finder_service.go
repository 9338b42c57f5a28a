package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/smartshop/backend/internal/domain"
)

const (
	messageAlternativesFound = "Alternatives found."
	messageNoAlternatives    = "No cheaper alternatives found."
	messageNoImageMatches    = "No cheaper alternatives found for the product in the image."
)

// FinderService sequences extraction and discovery for a single lookup
type FinderService struct {
	extraction *ExtractionService
	discovery  *DiscoveryService
}

// NewFinderService creates the orchestrator
func NewFinderService(extraction *ExtractionService, discovery *DiscoveryService) *FinderService {
	return &FinderService{
		extraction: extraction,
		discovery:  discovery,
	}
}

// FindByURL extracts the product at rawURL and returns its alternatives.
// An empty alternatives list is a successful response. Stages run to completion or their own
// timeouts even if ctx is cancelled, since their outcomes feed the shared caches.
func (s *FinderService) FindByURL(ctx context.Context, request *domain.FindByURLRequest) (*domain.FindResponse, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}
	productURL := strings.TrimSpace(request.URL)
	if productURL == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidRequest)
	}
	if !isHTTPURL(productURL) {
		return nil, fmt.Errorf("%w: url must be an absolute http(s) URL", domain.ErrInvalidRequest)
	}

	ctx = context.WithoutCancel(ctx)
	product, err := s.extraction.ExtractFromURL(ctx, productURL)
	if err != nil {
		return nil, err
	}

	alternatives := s.discovery.Discover(ctx, product)
	return buildResponse(product, alternatives, messageNoAlternatives), nil
}

// FindByImage identifies the product in an uploaded photo and returns its alternatives.
// Like FindByURL it ignores cancellation of ctx.
func (s *FinderService) FindByImage(ctx context.Context, image *domain.ImageInput) (*domain.FindResponse, error) {
	if image == nil || len(image.Data) == 0 {
		return nil, fmt.Errorf("%w: image is required", domain.ErrInvalidRequest)
	}

	ctx = context.WithoutCancel(ctx)
	product, err := s.extraction.ExtractFromImage(ctx, *image)
	if err != nil {
		return nil, err
	}

	alternatives := s.discovery.Discover(ctx, product)
	return buildResponse(product, alternatives, messageNoImageMatches), nil
}

func buildResponse(product *domain.ProductInfo, alternatives []domain.AlternativeCandidate, emptyMessage string) *domain.FindResponse {
	if alternatives == nil {
		alternatives = []domain.AlternativeCandidate{}
	}
	message := messageAlternativesFound
	if len(alternatives) == 0 {
		message = emptyMessage
	}
	return &domain.FindResponse{
		Message:         message,
		OriginalProduct: product,
		Alternatives:    alternatives,
	}
}
