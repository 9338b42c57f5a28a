package usecase

import "strings"

// categoryLabel maps product-name substrings to a display category
type categoryLabel struct {
	substrings []string
	label      string
}

// productNameCategories is checked in order; the first matching entry wins
var productNameCategories = []categoryLabel{
	{substrings: []string{"tv", "television"}, label: "Televisions"},
	{substrings: []string{"phone", "mobile"}, label: "Mobile Phones"},
	{substrings: []string{"laptop", "notebook"}, label: "Laptops"},
	{substrings: []string{"headphone", "earbud"}, label: "Headphones"},
}

// CategoryFromName guesses a display category such as "Televisions" from a product name.
// It returns "" when no entry matches.
func CategoryFromName(name string) string {
	lower := strings.ToLower(name)
	for _, entry := range productNameCategories {
		if containsAny(lower, entry.substrings) {
			return entry.label
		}
	}
	return ""
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
