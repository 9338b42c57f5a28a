package usecase

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	currencySymbolsRegex = regexp.MustCompile(`[$£€,]`)
	leadingNumberRegex   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// NormalizePrice converts a scraped or model-supplied price into a number.
// Currency symbols and thousand separators are stripped and the leading
// numeric prefix is parsed. Anything that does not yield a finite,
// non-negative number returns nil.
func NormalizePrice(value interface{}) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return validPrice(v)
	case float32:
		return validPrice(float64(v))
	case int:
		return validPrice(float64(v))
	case int64:
		return validPrice(float64(v))
	case json.Number:
		return NormalizePriceString(v.String())
	case string:
		return NormalizePriceString(v)
	default:
		return nil
	}
}

// NormalizePriceString is NormalizePrice for text such as "$1,299.99"
func NormalizePriceString(raw string) *float64 {
	cleaned := strings.TrimSpace(currencySymbolsRegex.ReplaceAllString(raw, ""))
	if cleaned == "" {
		return nil
	}

	match := leadingNumberRegex.FindString(cleaned)
	if match == "" {
		return nil
	}

	parsed, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return validPrice(parsed)
}

func validPrice(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	return &v
}
