package vendormatch

import (
	"regexp"
	"strings"
)

// Corporate suffix patterns stripped during normalization. Order matters:
// each pattern is applied independently so overlapping suffixes like
// "tic. ltd. şti." are each removed once.
var suffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\s*ltd\.?\s*[şs]ti\.?`),
	regexp.MustCompile(`\s*a\.?[şs]\.?`),
	regexp.MustCompile(`\s*tic\.?\s*(?:ltd\.?\s*[şs]ti\.?)?`),
	regexp.MustCompile(`\s*san\.?\s*(?:tic\.?)?`),
	regexp.MustCompile(`\s*org\.?`),
	regexp.MustCompile(`\s*holding`),
	regexp.MustCompile(`\s*group`),
	regexp.MustCompile(`\s*[şs]irket(?:i)?`),
	regexp.MustCompile(`\s*market(?:i)?`),
}

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// NormalizeName canonicalizes a vendor or alias name for matching:
// lowercase, strip corporate suffixes, strip punctuation, collapse
// whitespace. Normalizing an already-normalized name returns it unchanged.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}

	normalized := strings.ToLower(name)
	// Lowercasing İ yields "i" plus a combining dot; drop the dot so
	// "MİGROS" and "Migros" normalize identically.
	normalized = strings.ReplaceAll(normalized, "\u0307", "")

	for _, p := range suffixPatterns {
		normalized = p.ReplaceAllString(normalized, "")
	}

	normalized = punctuation.ReplaceAllString(normalized, "")

	return strings.Join(strings.Fields(normalized), " ")
}
