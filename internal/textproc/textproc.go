// Package textproc cleans raw OCR output and derives structure from it:
// normalized text, a paragraph-formatted variant, counting stats, and
// extracted entities.
package textproc

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	runSpaces  = regexp.MustCompile(`[ \t]+`)
	blankLines = regexp.MustCompile(`\n\s*\n`)
	anySpaces  = regexp.MustCompile(`\s+`)
	paraSplit  = regexp.MustCompile(`\n{2,}`)
)

// Cleanup normalizes raw engine output: Unicode compatibility
// normalization, whitespace-run collapse, and blank-line squashing.
// Cleanup is idempotent.
func Cleanup(raw string) string {
	text := norm.NFKC.String(raw)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = runSpaces.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// FormatParagraphs reflows cleaned text into paragraphs: blocks split on
// blank lines, with each block's internal line breaks collapsed into
// single spaces.
func FormatParagraphs(text string) string {
	blocks := paraSplit.Split(text, -1)
	out := make([]string, 0, len(blocks))
	for _, block := range blocks {
		block = anySpaces.ReplaceAllString(strings.TrimSpace(block), " ")
		if block != "" {
			out = append(out, block)
		}
	}
	return strings.Join(out, "\n\n")
}

// Stats holds counting statistics over cleaned text.
type Stats struct {
	WordCount         int `json:"word_count"`
	CharCount         int `json:"char_count"`
	CharCountNoSpaces int `json:"char_count_no_spaces"`
	LineCount         int `json:"line_count"`
}

// Count computes text statistics. An empty string yields all zeros.
func Count(text string) Stats {
	if text == "" {
		return Stats{}
	}
	noSpaces := anySpaces.ReplaceAllString(text, "")
	return Stats{
		WordCount:         len(strings.Fields(text)),
		CharCount:         len([]rune(text)),
		CharCountNoSpaces: len([]rune(noSpaces)),
		LineCount:         len(strings.Split(text, "\n")),
	}
}
