package usecase

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/smartshop/backend/internal/domain"
)

// domField is a selector and the attribute to read; an empty attr reads the text content
type domField struct {
	selector string
	attr     string
}

var (
	nameSelectors = []domField{
		{selector: "#productTitle"},
		{selector: `h1[class*="title"]`},
		{selector: `[itemprop="name"]`},
		{selector: "title"},
	}

	priceSelectors = []domField{
		{selector: "#priceblock_ourprice"},
		{selector: "#priceblock_dealprice"},
		{selector: ".a-price .a-offscreen"},
		{selector: `[itemprop="price"]`},
		{selector: `meta[property="product:price:amount"]`, attr: "content"},
		{selector: `meta[property="og:price:amount"]`, attr: "content"},
	}

	descriptionSelectors = []domField{
		{selector: "#productDescription"},
		{selector: `[itemprop="description"]`},
		{selector: ".product-description"},
		{selector: `meta[name="description"]`, attr: "content"},
	}

	breadcrumbSelectors = []string{
		"#wayfinding-breadcrumbs_feature_div ul a",
		".a-breadcrumb li a",
		`nav[aria-label="breadcrumb"] ol li a`,
	}

	productImageSelectors = []domField{
		{selector: "#landingImage", attr: "src"},
		{selector: "#mainImage img", attr: "src"},
		{selector: `[itemprop="image"]`, attr: "src"},
		{selector: `meta[property="og:image"]`, attr: "content"},
	}

	// recoverySelectors are tried after og:image when looking for an alternative's picture
	recoverySelectors = []string{
		"#main-image-container img",
		"#landingImage",
		".product-image-gallery img",
		".product-image img",
		`img[itemprop="image"]`,
		".gallery-image img",
		"#product-image img",
	}

	placeholderMarkers = []string{"placeholder", "no-image", "default"}
)

const nameNotFound = "Name not found"

// ParseSnapshot parses rendered HTML into a queryable document
func ParseSnapshot(snapshot *domain.PageSnapshot) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snapshot.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}
	return doc, nil
}

// ExtractProductInfo applies the product page heuristics to a rendered page.
// pageURL is the URL the browser ended on and becomes ProductInfo.URL.
func ExtractProductInfo(doc *goquery.Document, pageURL string) *domain.ProductInfo {
	name := firstValue(doc, nameSelectors)
	if name == "" {
		name = nameNotFound
	}

	info := &domain.ProductInfo{
		Name:        name,
		Price:       NormalizePriceString(firstValue(doc, priceSelectors)),
		Description: domain.StringPtr(firstValue(doc, descriptionSelectors)),
		Category:    domain.StringPtr(extractCategory(doc, name)),
		URL:         domain.StringPtr(pageURL),
	}

	if raw := firstValue(doc, productImageSelectors); raw != "" {
		info.ImageURL = resolveAgainst(raw, pageURL)
	}

	return info
}

// ExtractRecoveryImage finds a representative image on an alternative's page.
// Relative URLs are resolved against the page origin and placeholder images are ignored.
func ExtractRecoveryImage(doc *goquery.Document, pageURL string) *string {
	raw := attrOf(doc.Find(`meta[property="og:image"]`).First(), "content")
	if raw == "" {
		for _, selector := range recoverySelectors {
			sel := doc.Find(selector).First()
			if sel.Length() == 0 {
				continue
			}
			raw = attrOf(sel, "src")
			if raw == "" {
				raw = attrOf(sel, "data-src")
			}
			if raw != "" {
				break
			}
		}
	}
	if raw == "" {
		return nil
	}

	resolved := resolveAgainstOrigin(raw, pageURL)
	if resolved == nil || isPlaceholderImage(*resolved) {
		return nil
	}
	return resolved
}

func extractCategory(doc *goquery.Document, name string) string {
	var category string
	for _, selector := range breadcrumbSelectors {
		if crumbs := doc.Find(selector); crumbs.Length() > 0 {
			category = strings.TrimSpace(crumbs.Last().Text())
			break
		}
	}

	if category == "" {
		keywords := attrOf(doc.Find(`meta[name="keywords"]`).First(), "content")
		if keywords != "" {
			category = strings.TrimSpace(strings.Split(keywords, ",")[0])
		}
	}

	if category == "" || strings.EqualFold(category, "unknown") {
		if guess := CategoryFromName(name); guess != "" {
			category = guess
		}
	}
	return category
}

// firstValue returns the first non-empty value across fields in priority order
func firstValue(doc *goquery.Document, fields []domField) string {
	for _, field := range fields {
		sel := doc.Find(field.selector).First()
		if sel.Length() == 0 {
			continue
		}
		var value string
		if field.attr == "" {
			value = strings.TrimSpace(sel.Text())
		} else {
			value = attrOf(sel, field.attr)
		}
		if value != "" {
			return value
		}
	}
	return ""
}

func attrOf(sel *goquery.Selection, attr string) string {
	value, _ := sel.Attr(attr)
	return strings.TrimSpace(value)
}

// resolveAgainst resolves raw relative to the full page URL
func resolveAgainst(raw, pageURL string) *string {
	if strings.HasPrefix(raw, "http") {
		return &raw
	}
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		return nil
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	resolved := base.ResolveReference(ref).String()
	return &resolved
}

// resolveAgainstOrigin resolves raw relative to scheme://host of the page
func resolveAgainstOrigin(raw, pageURL string) *string {
	if strings.HasPrefix(raw, "http") {
		return &raw
	}
	page, err := url.Parse(pageURL)
	if err != nil || !page.IsAbs() {
		return nil
	}
	origin := &url.URL{Scheme: page.Scheme, Host: page.Host, Path: "/"}
	return resolveAgainst(raw, origin.String())
}

func isPlaceholderImage(imageURL string) bool {
	return containsAny(strings.ToLower(imageURL), placeholderMarkers)
}
