package textproc

import (
	"regexp"
	"strings"
)

// Entities holds structured values recognized in extracted text. Each
// list is deduplicated and keeps first-occurrence order.
type Entities struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
	URLs   []string `json:"urls"`
	Dates  []string `json:"dates"`
}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// Two phone shapes: international-ish with separators, and plain
	// grouped national numbers. Both are filtered by digit count.
	phoneIntl    = regexp.MustCompile(`\+?\d[\d\s\-().]{8,}\d`)
	phoneGrouped = regexp.MustCompile(`\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`)
	phoneDigits  = regexp.MustCompile(`\d`)
	urlPattern   = regexp.MustCompile(`https?://[^\s<>"']+|www\.[^\s<>"']+`)
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{4}\b`),
	}
)

// ExtractEntities scans text for emails, phone numbers, URLs and dates.
func ExtractEntities(text string) Entities {
	return Entities{
		Emails: dedupe(emailPattern.FindAllString(text, -1)),
		Phones: extractPhones(text),
		URLs:   dedupe(urlPattern.FindAllString(text, -1)),
		Dates:  extractDates(text),
	}
}

// extractPhones merges both phone shapes and drops candidates whose
// digit count falls outside the plausible 10-15 range. That filter is
// what keeps long serial numbers and short codes out.
func extractPhones(text string) []string {
	candidates := append(phoneIntl.FindAllString(text, -1), phoneGrouped.FindAllString(text, -1)...)
	valid := candidates[:0]
	for _, c := range candidates {
		digits := len(phoneDigits.FindAllString(c, -1))
		if digits >= 10 && digits <= 15 {
			valid = append(valid, strings.TrimSpace(c))
		}
	}
	return dedupe(valid)
}

func extractDates(text string) []string {
	var all []string
	for _, p := range datePatterns {
		all = append(all, p.FindAllString(text, -1)...)
	}
	return dedupe(all)
}

// dedupe removes duplicates while preserving first-occurrence order. It
// always returns a non-nil slice so JSON encodes [] rather than null.
func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
