package intel

import "golang.org/x/text/unicode/norm"

// Normalize applies NFKC normalization so stylistic Unicode variants
// (fullwidth, mathematical bold, circled letters) collapse to their ASCII
// equivalents before pattern matching.
func Normalize(text string) (normalized string, wasNormalized bool) {
	normalized = norm.NFKC.String(text)
	wasNormalized = normalized != text
	return
}
