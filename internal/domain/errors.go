package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrRenderFailure is returned when the headless browser cannot load or read a page
	ErrRenderFailure = errors.New("page render failed")

	// ErrAIUnavailable is returned when no generative model is configured
	ErrAIUnavailable = errors.New("AI model not available")

	// ErrAIParseFailure is returned when model output does not contain the expected JSON
	ErrAIParseFailure = errors.New("could not parse AI response")

	// ErrValidationNetwork is returned when a candidate URL cannot be reached
	ErrValidationNetwork = errors.New("URL validation request failed")

	// ErrExtractionExhausted is returned when both page rendering and AI extraction failed
	ErrExtractionExhausted = errors.New("failed to extract product details using scraping and AI")

	// ErrUnsupportedImage is returned for uploads that are not JPEG, PNG or WEBP
	ErrUnsupportedImage = errors.New("invalid file type, only JPEG, PNG, and WEBP are allowed")
)
