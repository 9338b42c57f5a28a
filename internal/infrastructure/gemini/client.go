package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smartshop/backend/internal/domain"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Config holds model selection and sampling parameters
type Config struct {
	APIKey            string
	Model             string
	Temperature       float32
	TopP              float32
	TopK              float32
	MaxOutputTokens   int32
	RequestsPerMinute int
}

// ErrMissingAPIKey is returned by NewClient when no API key is configured
var ErrMissingAPIKey = errors.New("gemini API key is not set")

// contentGenerator is the subset of the genai Models service used by the client
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client adapts the Gemini API to domain.Generator
type Client struct {
	models      contentGenerator
	cfg         Config
	rateLimiter *rate.Limiter
	logger      logrus.FieldLogger
}

// NewClient creates a Gemini client. It returns ErrMissingAPIKey when cfg.APIKey is empty
// so callers can run with AI features disabled.
func NewClient(ctx context.Context, cfg Config, logger logrus.FieldLogger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newClient(gc.Models, cfg, logger), nil
}

func newClient(models contentGenerator, cfg Config, logger logrus.FieldLogger) *Client {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 5)

	return &Client{
		models:      models,
		cfg:         cfg,
		rateLimiter: limiter,
		logger:      logger.WithFields(logrus.Fields{"component": "gemini", "model": cfg.Model}),
	}
}

// Generate sends one prompt, optionally with an inline image and search grounding
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.cfg.Model, contents, c.generateConfig(req.Grounding))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		c.logger.WithFields(logrus.Fields{
			"block_reason": resp.PromptFeedback.BlockReason,
			"message":      resp.PromptFeedback.BlockReasonMessage,
		}).Warn("prompt blocked by safety filters")
	}

	result := &domain.GenerationResult{
		Text:      resp.Text(),
		Citations: citations(resp),
	}

	c.logger.WithFields(logrus.Fields{
		"grounding": req.Grounding,
		"image":     req.Image != nil,
		"citations": len(result.Citations),
		"duration":  time.Since(start).String(),
	}).Info("generation completed")

	return result, nil
}

// generateConfig builds the sampling, safety and tool configuration for a request.
// JSON response mode cannot be combined with the search tool, so output format is left to the prompt.
func (c *Client) generateConfig(grounding bool) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.cfg.Temperature),
		TopP:            genai.Ptr(c.cfg.TopP),
		TopK:            genai.Ptr(c.cfg.TopK),
		MaxOutputTokens: c.cfg.MaxOutputTokens,
		SafetySettings:  safetySettings(),
	}
	if grounding {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return config
}

func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}

	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	return settings
}

// citations collects the web sources from every candidate's grounding metadata
func citations(resp *genai.GenerateContentResponse) []domain.Citation {
	var out []domain.Citation
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			out = append(out, domain.Citation{URI: chunk.Web.URI, Title: chunk.Web.Title})
		}
	}
	return out
}
