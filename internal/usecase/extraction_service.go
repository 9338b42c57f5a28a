package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smartshop/backend/internal/domain"
)

const (
	aiNameNotFound        = "Name not found (AI)"
	imageNameUnclear      = "Product identified (details unclear)"
	imageCategoryUnknown  = "Unknown"
	rawDescriptionMaxRune = 200
)

// ExtractionServiceConfig holds configuration for the extraction stage
type ExtractionServiceConfig struct {
	RenderTimeout time.Duration
}

// ExtractionService turns a product URL or photo into a ProductInfo
type ExtractionService struct {
	renderer      domain.PageRenderer
	generator     domain.Generator
	renderTimeout time.Duration
	logger        logrus.FieldLogger
}

// NewExtractionService creates the extraction stage. generator may be nil, which disables
// the AI fallback and image identification.
func NewExtractionService(
	renderer domain.PageRenderer,
	generator domain.Generator,
	config ExtractionServiceConfig,
	logger logrus.FieldLogger,
) *ExtractionService {
	renderTimeout := config.RenderTimeout
	if renderTimeout == 0 {
		renderTimeout = 15 * time.Second
	}

	return &ExtractionService{
		renderer:      renderer,
		generator:     generator,
		renderTimeout: renderTimeout,
		logger:        logger.WithField("component", "extraction"),
	}
}

// ExtractFromURL renders the page and applies DOM heuristics, falling back to
// grounded AI extraction if rendering fails.
// Flow: render -> DOM heuristics | AI extraction -> ErrExtractionExhausted
func (s *ExtractionService) ExtractFromURL(ctx context.Context, productURL string) (*domain.ProductInfo, error) {
	info, renderErr := s.extractFromPage(ctx, productURL)
	if renderErr == nil {
		return info, nil
	}
	s.logger.WithError(renderErr).WithField("url", productURL).Warn("Scraping failed, falling back to AI extraction")

	info, aiErr := s.extractWithAI(ctx, productURL)
	if aiErr != nil {
		s.logger.WithError(aiErr).WithField("url", productURL).Error("AI extraction failed")
		return nil, fmt.Errorf("%w: render: %v; ai: %v", domain.ErrExtractionExhausted, renderErr, aiErr)
	}
	return info, nil
}

func (s *ExtractionService) extractFromPage(ctx context.Context, productURL string) (*domain.ProductInfo, error) {
	snapshot, err := s.renderer.Render(ctx, productURL, s.renderTimeout)
	if err != nil {
		return nil, err
	}
	doc, err := ParseSnapshot(snapshot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailure, err)
	}

	finalURL := snapshot.URL
	if finalURL == "" {
		finalURL = productURL
	}
	return ExtractProductInfo(doc, finalURL), nil
}

func (s *ExtractionService) extractWithAI(ctx context.Context, productURL string) (*domain.ProductInfo, error) {
	if s.generator == nil {
		return nil, domain.ErrAIUnavailable
	}

	result, err := s.generator.Generate(ctx, domain.GenerationRequest{
		Prompt:    ExtractionPrompt(productURL),
		Grounding: true,
	})
	if err != nil {
		return nil, err
	}

	fields, err := ParseObject(result.Text)
	if err != nil {
		return nil, err
	}

	name := stringField(fields, "name")
	if name == "" {
		name = aiNameNotFound
	}

	return &domain.ProductInfo{
		Name:        name,
		Price:       NormalizePrice(fields["price"]),
		Description: domain.StringPtr(stringField(fields, "description")),
		Category:    domain.StringPtr(stringField(fields, "category")),
		ImageURL:    domain.StringPtr(stringField(fields, "imageUrl")),
		URL:         domain.StringPtr(productURL),
	}, nil
}

// ExtractFromImage identifies the product in an uploaded photo.
// An unparseable answer still yields a best-effort ProductInfo built from the raw text.
func (s *ExtractionService) ExtractFromImage(ctx context.Context, image domain.ImageInput) (*domain.ProductInfo, error) {
	if s.generator == nil {
		return nil, domain.ErrAIUnavailable
	}

	result, err := s.generator.Generate(ctx, domain.GenerationRequest{
		Prompt: visionPrompt,
		Image:  &domain.ImagePart{Data: image.Data, MIMEType: image.MIMEType},
	})
	if err != nil {
		return nil, err
	}

	info := &domain.ProductInfo{
		ImageURL: domain.StringPtr(dataURI(image)),
	}

	fields, err := ParseObject(result.Text)
	if err == nil && stringField(fields, "name") != "" {
		info.Name = stringField(fields, "name")
		info.Category = domain.StringPtr(stringField(fields, "category"))
		info.Description = domain.StringPtr(stringField(fields, "description"))
		return info, nil
	}

	s.logger.WithError(err).Warn("Could not parse image identification, using raw response")
	info.Name = imageNameUnclear
	info.Category = domain.StringPtr(imageCategoryUnknown)
	info.Description = domain.StringPtr(truncateRunes(result.Text, rawDescriptionMaxRune))
	return info, nil
}

func dataURI(image domain.ImageInput) string {
	return "data:" + image.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
