package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// PageRenderer loads a URL in a headless browser and returns the rendered DOM.
// Implementations must release every browser resource before returning.
type PageRenderer interface {
	Render(ctx context.Context, url string, timeout time.Duration) (*PageSnapshot, error)
}

// LinkChecker reports whether a URL currently answers with a 2xx status
type LinkChecker interface {
	Check(ctx context.Context, url string) (bool, error)
}

// ImagePart is binary image content sent alongside a prompt
type ImagePart struct {
	Data     []byte
	MIMEType string
}

// GenerationRequest is a single prompt for the generative model
type GenerationRequest struct {
	Prompt    string
	Image     *ImagePart
	Grounding bool
}

// Citation is a grounding source reported by the model
type Citation struct {
	URI   string
	Title string
}

// GenerationResult holds the model's text output and any grounding citations
type GenerationResult struct {
	Text      string
	Citations []Citation
}

// Generator defines the interface for the generative model
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
}
