// Package render substitutes {{aggregation.<label>}} placeholders in
// template HTML with computed values.
package render

import (
	"regexp"
	"strconv"
	"strings"

	"JetScheduler/internal/models"
)

var placeholderRe = regexp.MustCompile(`\{\{aggregation\.([^}]+)\}\}`)

// Placeholder returns the token that Render replaces for label.
func Placeholder(label string) string {
	return "{{aggregation." + label + "}}"
}

// FormatValue renders v in plain decimal with no trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Render replaces every placeholder whose label matches an entry in values.
// Labels match literally and case-sensitively. All replacements happen in a
// single pass, so a substituted value is never itself substituted again.
// When a label is listed twice the first value wins.
func Render(template string, values []models.ComputedAggregation) string {
	if len(values) == 0 {
		return template
	}

	pairs := make([]string, 0, len(values)*2)
	for _, v := range values {
		pairs = append(pairs, Placeholder(v.Label), FormatValue(v.Value))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// HasUnresolved reports whether text still contains an aggregation placeholder.
func HasUnresolved(text string) bool {
	return placeholderRe.MatchString(text)
}

// DetectPlaceholders lists the labels of all placeholders in text in order
// of appearance, duplicates included.
func DetectPlaceholders(text string) []string {
	matches := placeholderRe.FindAllStringSubmatch(text, -1)
	labels := make([]string, 0, len(matches))
	for _, m := range matches {
		labels = append(labels, m[1])
	}
	return labels
}
