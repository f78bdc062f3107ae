// Package statement parses PhonePe-style debit statement text into
// transaction batches. Input is the ordered page texts produced by text
// extraction; output is the canonical domain.Transaction shape plus
// non-fatal normalization warnings.
package statement

import "strings"

// JoinPages splits each page text on line breaks and concatenates the lines
// in page order. Pages that yielded no text are skipped, never treated as an
// error. An empty input yields an empty output.
func JoinPages(pages []string) []string {
	var lines []string
	for _, page := range pages {
		if page == "" {
			continue
		}
		lines = append(lines, strings.Split(page, "\n")...)
	}
	return lines
}
