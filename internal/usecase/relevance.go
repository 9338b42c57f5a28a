package usecase

import (
	"strings"

	"github.com/smartshop/backend/internal/domain"
)

// categoryKeywords ties a category family to the words an alternative must mention
type categoryKeywords struct {
	family   string
	triggers []string
	keywords []string
}

// RelevancePolicy is the data behind the relevance decision
type RelevancePolicy struct {
	// Denylist words reject a candidate unless the original category also contains them
	Denylist []string
	// Families are matched against the lowercased original category in order
	Families []categoryKeywords
	// Stopwords are ignored when keywords come from the original product name
	Stopwords []string
	// MinNameKeywordLen is the shortest name word used as a keyword
	MinNameKeywordLen int
}

// DefaultRelevancePolicy returns the built-in keyword tables
func DefaultRelevancePolicy() RelevancePolicy {
	return RelevancePolicy{
		Denylist: []string{
			"book", "cd", "dvd", "music", "album", "clock", "watch", "timer",
			"toy", "game", "puzzle", "doorbell", "camera", "security",
		},
		Families: []categoryKeywords{
			{
				family:   "television",
				triggers: []string{"tv", "television"},
				keywords: []string{"tv", "television", "qled", "oled", "4k", "hdr", "screen", "display", "smart tv"},
			},
			{
				family:   "phone",
				triggers: []string{"phone", "mobile"},
				keywords: []string{"phone", "mobile", "smartphone", "android", "ios", "iphone", "galaxy"},
			},
			{
				family:   "laptop",
				triggers: []string{"laptop", "notebook"},
				keywords: []string{"laptop", "notebook", "computer", "pc", "macbook"},
			},
			{
				family:   "headphone",
				triggers: []string{"headphone", "earbud"},
				keywords: []string{"headphone", "earbud", "headset", "audio", "sound", "wireless", "bluetooth"},
			},
		},
		Stopwords:         []string{"product", "item", "deal"},
		MinNameKeywordLen: 4,
	}
}

// RelevanceFilter rejects alternatives whose product type does not match the original
type RelevanceFilter struct {
	policy RelevancePolicy
}

// NewRelevanceFilter creates a filter for policy
func NewRelevanceFilter(policy RelevancePolicy) *RelevanceFilter {
	return &RelevanceFilter{policy: policy}
}

// IsRelevant reports whether candidate plausibly is the same kind of product as original.
// originalCategory may be empty, in which case the category is inferred from the original name.
func (f *RelevanceFilter) IsRelevant(originalCategory string, original *domain.ProductInfo, candidate domain.AlternativeCandidate) bool {
	text := candidateText(candidate)
	category := f.inferCategory(originalCategory, original)

	for _, word := range f.policy.Denylist {
		if strings.Contains(text, word) && (category == "" || !strings.Contains(category, word)) {
			return false
		}
	}

	keywords := f.keywordsFor(category, original)
	if len(keywords) == 0 {
		return true
	}
	return containsAny(text, keywords)
}

// inferCategory lowercases an explicit category, or maps the original name to a family
func (f *RelevanceFilter) inferCategory(originalCategory string, original *domain.ProductInfo) string {
	if originalCategory != "" {
		return strings.ToLower(originalCategory)
	}
	if original == nil || original.Name == "" {
		return ""
	}
	name := strings.ToLower(original.Name)
	for _, family := range f.policy.Families {
		if containsAny(name, family.triggers) {
			return family.family
		}
	}
	return ""
}

func (f *RelevanceFilter) keywordsFor(category string, original *domain.ProductInfo) []string {
	if category != "" {
		for _, family := range f.policy.Families {
			if containsAny(category, family.triggers) {
				return family.keywords
			}
		}
	}
	if original == nil {
		return nil
	}
	return f.nameKeywords(original.Name)
}

func (f *RelevanceFilter) nameKeywords(name string) []string {
	var keywords []string
	for _, word := range strings.Split(strings.ToLower(name), " ") {
		if len(word) < f.policy.MinNameKeywordLen || f.isStopword(word) {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

func (f *RelevanceFilter) isStopword(word string) bool {
	for _, stop := range f.policy.Stopwords {
		if word == stop {
			return true
		}
	}
	return false
}

func candidateText(candidate domain.AlternativeCandidate) string {
	description := ""
	if candidate.Description != nil {
		description = *candidate.Description
	}
	return strings.ToLower(candidate.Name + " " + description)
}
