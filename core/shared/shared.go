// Package shared holds the name conversions used for generated identifiers
// and file names. Every conversion is pure: the same schema name always maps
// to the same camel, pascal and kebab form.
package shared

import (
	"strings"
	"unicode"
)

// ToTitle upper-cases the first letter and leaves the rest alone.
func ToTitle(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Words splits a schema name into words on separators (anything that is not a
// letter or digit) and on case boundaries. "OrderItem", "order_item",
// "order-item" and "Order Item" all split into [Order Item].
func Words(s string) []string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if i > 0 && unicode.IsUpper(r) && len(current) > 0 {
			prev := runes[i-1]
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			// "someWord" splits at W, "XMLParser" splits at P.
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextIsLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()

	return words
}

func ToPascalCase(s string) string {
	var b strings.Builder
	for _, word := range Words(s) {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

func ToCamelCase(s string) string {
	pascal := []rune(ToPascalCase(s))
	if len(pascal) == 0 {
		return ""
	}
	pascal[0] = unicode.ToLower(pascal[0])
	return string(pascal)
}

func ToKebabCase(s string) string {
	words := Words(s)
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}
	return strings.Join(words, "-")
}
