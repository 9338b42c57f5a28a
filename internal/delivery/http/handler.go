package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smartshop/backend/internal/domain"
)

const (
	msgURLRequired        = "URL is required."
	msgURLInvalid         = "A valid http(s) URL is required."
	msgImageRequired      = "Image file is required."
	msgImageTooLarge      = "Image file is too large."
	msgImageType          = "Invalid file type, only JPEG, PNG, and WEBP are allowed."
	msgExtractionFailed   = "Failed to extract product details using scraping and AI."
	msgAIDisabled         = "AI functionality disabled: API key not configured."
	msgURLInternalError   = "Failed to find alternatives due to an internal server error."
	msgImageInternalError = "Failed to process image."
)

// multipartOverhead is the room left for boundaries and part headers around the image
const multipartOverhead = 64 << 10

// Finder runs a complete lookup for a URL or an uploaded photo
type Finder interface {
	FindByURL(ctx context.Context, request *domain.FindByURLRequest) (*domain.FindResponse, error)
	FindByImage(ctx context.Context, image *domain.ImageInput) (*domain.FindResponse, error)
}

// HandlerConfig describes upload limits and what the health endpoint reports
type HandlerConfig struct {
	MaxUploadBytes   int64
	AllowedMIMETypes []string
	AIEnabled        bool
	CacheType        string
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	finder Finder
	config HandlerConfig
}

// NewHandler creates a new HTTP handler
func NewHandler(finder Finder, config HandlerConfig) *Handler {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 10 << 20
	}
	if len(config.AllowedMIMETypes) == 0 {
		config.AllowedMIMETypes = []string{"image/jpeg", "image/png", "image/webp"}
	}
	return &Handler{finder: finder, config: config}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	ai := "disabled"
	if h.config.AIEnabled {
		ai = "enabled"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "smartshop-backend",
		"version": "1.0.0",
		"ai":      ai,
		"cache":   h.config.CacheType,
	})
}

// FindByURL handles POST /api/v1/find-by-url with body {"url": "..."}
func (h *Handler) FindByURL(c *gin.Context) {
	var request domain.FindByURLRequest
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgURLRequired})
		return
	}

	response, err := h.finder.FindByURL(c.Request.Context(), &request)
	if err != nil {
		status, message := urlErrorResponse(err, request.URL)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, response)
}

// FindByImage handles POST /api/v1/find-by-image with a multipart "productImage" file
func (h *Handler) FindByImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxUploadBytes+multipartOverhead)

	header, err := c.FormFile("productImage")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgImageTooLarge})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgImageRequired})
		return
	}
	if header.Size > h.config.MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgImageTooLarge})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgImageRequired})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.config.MaxUploadBytes+1))
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgImageRequired})
		return
	}
	if int64(len(data)) > h.config.MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgImageTooLarge})
		return
	}

	mimeType := uploadMIMEType(header.Header.Get("Content-Type"), data)
	if !h.allowedMIME(mimeType) {
		_ = c.Error(fmt.Errorf("%w: %s", domain.ErrUnsupportedImage, mimeType))
		c.JSON(http.StatusBadRequest, gin.H{"error": msgImageType})
		return
	}

	response, err := h.finder.FindByImage(c.Request.Context(), &domain.ImageInput{Data: data, MIMEType: mimeType})
	if err != nil {
		status, message := imageErrorResponse(err)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) allowedMIME(mimeType string) bool {
	for _, allowed := range h.config.AllowedMIMETypes {
		if mimeType == allowed {
			return true
		}
	}
	return false
}

// uploadMIMEType trusts the declared type and sniffs the bytes when none was sent
func uploadMIMEType(declared string, data []byte) string {
	declared = strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}

func urlErrorResponse(err error, rawURL string) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		if strings.TrimSpace(rawURL) == "" {
			return http.StatusBadRequest, msgURLRequired
		}
		return http.StatusBadRequest, msgURLInvalid
	case errors.Is(err, domain.ErrExtractionExhausted):
		return http.StatusInternalServerError, msgExtractionFailed
	default:
		return http.StatusInternalServerError, msgURLInternalError
	}
}

func imageErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, msgImageRequired
	case errors.Is(err, domain.ErrAIUnavailable):
		return http.StatusServiceUnavailable, msgAIDisabled
	default:
		return http.StatusInternalServerError, msgImageInternalError
	}
}
