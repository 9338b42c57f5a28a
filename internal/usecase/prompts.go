package usecase

import (
	"strconv"
	"strings"
	"text/template"

	"github.com/smartshop/backend/internal/domain"
)

// maxAlternatives is the most candidates returned for one product
const maxAlternatives = 5

var alternativesTemplate = template.Must(template.New("alternatives").Parse(
	`You are a shopping assistant. Find up to {{.Max}} {{if .HasPrice}}cheaper{{else}}similar{{end}} alternatives to the product below.

Original product:
- Name: {{.Name}}
- Price: {{if .HasPrice}}{{.Price}}{{else}}unknown{{end}}
- Description: {{or .Description "not available"}}
- Category: {{or .Category "not available"}}
- Image: {{or .ImageURL "not available"}}

Rules:
- Every alternative must be the same type of product as the original.
{{- if .HasPrice}}
- Every alternative must cost less than {{.Price}}.
{{- end}}
- Only use reputable retailers and listings that are currently active.
- Use live search results to confirm each product page exists.

Respond with ONLY a JSON array of objects with the fields "name", "description", "price", "source", "url" and "imageUrl".
Use null for unknown values. Respond with [] if nothing suitable exists.`))

var extractionTemplate = template.Must(template.New("extraction").Parse(
	`Use live search to identify the product sold at this URL: {{.}}

Respond with ONLY a JSON object with the fields "name", "price", "description", "category" and "imageUrl".
"price" is the current price as a number. Use null for anything you cannot determine.`))

// visionPrompt is sent together with an uploaded product photo
const visionPrompt = `Identify the product in this image.
Respond with ONLY a JSON object with the fields "name", "category" and "description".
Use the most specific product name you can, including brand and model when visible.`

type alternativesPromptData struct {
	Max         int
	Name        string
	HasPrice    bool
	Price       string
	Description string
	Category    string
	ImageURL    string
}

// AlternativesPrompt builds the grounded search instruction for product
func AlternativesPrompt(product *domain.ProductInfo) string {
	data := alternativesPromptData{
		Max:         maxAlternatives,
		Name:        product.Name,
		Description: deref(product.Description),
		Category:    deref(product.Category),
		ImageURL:    promptImage(product.ImageURL),
	}
	if product.Price != nil {
		data.HasPrice = true
		data.Price = strconv.FormatFloat(*product.Price, 'f', -1, 64)
	}
	return render(alternativesTemplate, data)
}

// ExtractionPrompt asks the model to describe the product at pageURL
func ExtractionPrompt(pageURL string) string {
	return render(extractionTemplate, pageURL)
}

func render(tmpl *template.Template, data interface{}) string {
	var sb strings.Builder
	// Templates are fixed and fed plain strings, execution cannot fail.
	_ = tmpl.Execute(&sb, data)
	return sb.String()
}

// promptImage keeps web image links and replaces inline uploads, which can be megabytes of base64
func promptImage(image *string) string {
	switch {
	case image == nil:
		return ""
	case strings.HasPrefix(*image, "data:"):
		return "uploaded photo"
	case isHTTPURL(*image):
		return *image
	default:
		return ""
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
