package usecase

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/smartshop/backend/internal/domain"
)

var fencedJSONRegex = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

// ParsedCandidates is the outcome of parsing an alternatives response
type ParsedCandidates struct {
	Candidates []domain.AlternativeCandidate
	// Dropped counts array items rejected for missing name or url
	Dropped int
}

// ParseCandidates extracts alternative products from free-form model text.
// It tries, in order, a fenced code block, the outermost [...] span and the whole text.
// The first source found must decode to a JSON array, otherwise an ErrAIParseFailure is returned.
func ParseCandidates(text string) (*ParsedCandidates, error) {
	payload := jsonPayload(text, '[', ']')

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array: %v", domain.ErrAIParseFailure, err)
	}

	result := &ParsedCandidates{Candidates: make([]domain.AlternativeCandidate, 0, len(items))}
	for _, item := range items {
		candidate, ok := decodeCandidate(item)
		if !ok {
			result.Dropped++
			continue
		}
		result.Candidates = append(result.Candidates, candidate)
	}
	return result, nil
}

// ParseObject extracts a single JSON object from free-form model text using
// the same fallback order as ParseCandidates, with {...} as the bare span.
func ParseObject(text string) (map[string]interface{}, error) {
	payload := jsonPayload(text, '{', '}')

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON object: %v", domain.ErrAIParseFailure, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: response was null", domain.ErrAIParseFailure)
	}
	return obj, nil
}

// jsonPayload picks the text to decode: fenced block, then open..close span, then everything
func jsonPayload(text string, open, close byte) string {
	if m := fencedJSONRegex.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func decodeCandidate(raw json.RawMessage) (domain.AlternativeCandidate, bool) {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return domain.AlternativeCandidate{}, false
	}

	name := stringField(fields, "name")
	url := stringField(fields, "url")
	if name == "" || url == "" {
		return domain.AlternativeCandidate{}, false
	}

	return domain.AlternativeCandidate{
		Name:        name,
		Description: domain.StringPtr(stringField(fields, "description")),
		Price:       NormalizePrice(fields["price"]),
		Source:      domain.StringPtr(stringField(fields, "source")),
		URL:         url,
		ImageURL:    domain.StringPtr(stringField(fields, "imageUrl")),
	}, true
}

// stringField returns the trimmed string at key, or "" for missing and non-string values
func stringField(fields map[string]interface{}, key string) string {
	s, ok := fields[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
