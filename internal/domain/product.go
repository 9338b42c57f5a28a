package domain

// ProductInfo is the canonical description of the product the user started from.
// Absent fields are nil and serialize as JSON null.
type ProductInfo struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	ImageURL    *string  `json:"imageUrl"`
	URL         *string  `json:"url"`
}

// AlternativeCandidate is a product proposed by the model as a cheaper or similar option
type AlternativeCandidate struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Source      *string  `json:"source"`
	URL         string   `json:"url"`
	ImageURL    *string  `json:"imageUrl"`
}

// FindByURLRequest is the body of a URL lookup
type FindByURLRequest struct {
	URL string `json:"url"`
}

// ImageInput is an uploaded product photo
type ImageInput struct {
	Data     []byte
	MIMEType string
}

// FindResponse is returned for every successful lookup, including ones with no alternatives
type FindResponse struct {
	Message         string                 `json:"message"`
	OriginalProduct *ProductInfo           `json:"originalProduct"`
	Alternatives    []AlternativeCandidate `json:"alternatives"`
}

// PageSnapshot is the DOM of a rendered page together with the URL it ended up on
type PageSnapshot struct {
	URL  string
	HTML string
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
