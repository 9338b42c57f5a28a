package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/smartshop/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productURL = "https://shop.example/item/42"

func TestExtractFromURL_RenderSuccess(t *testing.T) {
	renderer := NewMockPageRenderer()
	renderer.pages[productURL] = amazonStyleFixture
	generator := NewMockGenerator()
	svc := NewExtractionService(renderer, generator, ExtractionServiceConfig{}, nullLogger())

	info, err := svc.ExtractFromURL(context.Background(), productURL)
	require.NoError(t, err)

	assert.Equal(t, "Sony WH-1000XM5 Wireless Headphones", info.Name)
	assert.InDelta(t, 1299.99, *info.Price, 1e-9)
	assert.Equal(t, productURL, *info.URL)
	assert.Equal(t, []time.Duration{15 * time.Second}, renderer.timeouts)
	assert.Empty(t, generator.requests, "AI should not be used when scraping works")
}

func TestExtractFromURL_AIFallback(t *testing.T) {
	renderer := NewMockPageRenderer()
	renderer.err = errors.New("navigation timeout")
	generator := NewMockGenerator("```json\n" + `{"name":"Acme Kettle","price":"$1,049.50","description":"Steel","category":"Kitchen","imageUrl":"https://cdn.example/k.jpg","url":"https://elsewhere.example"}` + "\n```")
	svc := NewExtractionService(renderer, generator, ExtractionServiceConfig{}, nullLogger())

	info, err := svc.ExtractFromURL(context.Background(), productURL)
	require.NoError(t, err)

	assert.Equal(t, "Acme Kettle", info.Name)
	require.NotNil(t, info.Price)
	assert.InDelta(t, 1049.50, *info.Price, 1e-9)
	assert.Equal(t, "Kitchen", *info.Category)
	assert.Equal(t, "https://cdn.example/k.jpg", *info.ImageURL)
	assert.Equal(t, productURL, *info.URL, "input URL must win over the model's")

	require.Len(t, generator.requests, 1)
	assert.True(t, generator.requests[0].Grounding)
	assert.Contains(t, generator.requests[0].Prompt, productURL)
}

func TestExtractFromURL_AIFallbackDefaults(t *testing.T) {
	renderer := NewMockPageRenderer()
	generator := NewMockGenerator(`{"price":"N/A"}`)
	svc := NewExtractionService(renderer, generator, ExtractionServiceConfig{}, nullLogger())

	info, err := svc.ExtractFromURL(context.Background(), productURL)
	require.NoError(t, err)

	assert.Equal(t, "Name not found (AI)", info.Name)
	assert.Nil(t, info.Price)
	assert.Nil(t, info.Description)
}

// Rendering times out, then the AI fallback fails: the request must error, not partially succeed.
func TestExtractFromURL_Exhausted(t *testing.T) {
	tests := []struct {
		name      string
		generator domain.Generator
	}{
		{name: "model unavailable", generator: nil},
		{name: "unparseable answer", generator: NewMockGenerator("I cannot browse that page.")},
		{name: "model error", generator: &MockGenerator{err: domain.ErrAIUnavailable}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := NewMockPageRenderer()
			renderer.err = domain.ErrRenderFailure
			svc := NewExtractionService(renderer, tt.generator, ExtractionServiceConfig{}, nullLogger())

			info, err := svc.ExtractFromURL(context.Background(), productURL)
			assert.Nil(t, info)
			assert.ErrorIs(t, err, domain.ErrExtractionExhausted)
		})
	}
}

func TestExtractFromImage(t *testing.T) {
	image := domain.ImageInput{Data: []byte("fake-jpeg"), MIMEType: "image/jpeg"}
	wantDataURI := "data:image/jpeg;base64,ZmFrZS1qcGVn"

	t.Run("parsed answer", func(t *testing.T) {
		generator := NewMockGenerator(`{"name":"Hydro Flask 32oz","category":"Water Bottles","description":"Insulated bottle"}`)
		svc := NewExtractionService(NewMockPageRenderer(), generator, ExtractionServiceConfig{}, nullLogger())

		info, err := svc.ExtractFromImage(context.Background(), image)
		require.NoError(t, err)

		assert.Equal(t, "Hydro Flask 32oz", info.Name)
		assert.Equal(t, "Water Bottles", *info.Category)
		assert.Equal(t, "Insulated bottle", *info.Description)
		assert.Nil(t, info.Price)
		assert.Nil(t, info.URL)
		assert.Equal(t, wantDataURI, *info.ImageURL)

		require.Len(t, generator.requests, 1)
		req := generator.requests[0]
		require.NotNil(t, req.Image)
		assert.Equal(t, image.Data, req.Image.Data)
		assert.Equal(t, "image/jpeg", req.Image.MIMEType)
		assert.False(t, req.Grounding)
	})

	t.Run("unparseable answer becomes a best effort product", func(t *testing.T) {
		raw := strings.Repeat("é", 250)
		generator := NewMockGenerator(raw)
		svc := NewExtractionService(NewMockPageRenderer(), generator, ExtractionServiceConfig{}, nullLogger())

		info, err := svc.ExtractFromImage(context.Background(), image)
		require.NoError(t, err)

		assert.Equal(t, "Product identified (details unclear)", info.Name)
		assert.Equal(t, "Unknown", *info.Category)
		assert.Equal(t, strings.Repeat("é", 200), *info.Description)
		assert.Nil(t, info.Price)
		assert.Nil(t, info.URL)
		assert.Equal(t, wantDataURI, *info.ImageURL)
	})

	t.Run("answer without a name", func(t *testing.T) {
		generator := NewMockGenerator(`{"category":"Bottles"}`)
		svc := NewExtractionService(NewMockPageRenderer(), generator, ExtractionServiceConfig{}, nullLogger())

		info, err := svc.ExtractFromImage(context.Background(), image)
		require.NoError(t, err)
		assert.Equal(t, "Product identified (details unclear)", info.Name)
		assert.Equal(t, `{"category":"Bottles"}`, *info.Description)
	})

	t.Run("model unavailable", func(t *testing.T) {
		svc := NewExtractionService(NewMockPageRenderer(), nil, ExtractionServiceConfig{}, nullLogger())

		_, err := svc.ExtractFromImage(context.Background(), image)
		assert.ErrorIs(t, err, domain.ErrAIUnavailable)
	})
}
