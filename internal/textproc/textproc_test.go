package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses space runs", "hello    world\tand\t\tmore", "hello world and more"},
		{"squashes blank lines", "one\n\n\n\ntwo", "one\n\ntwo"},
		{"trims line edges", "  padded line  \n  next  ", "padded line\nnext"},
		{"normalizes crlf", "a\r\nb\rc", "a\nb\nc"},
		{"nfkc folds ligatures", "ﬁle oﬃce", "file office"},
		{"nfkc folds fullwidth", "ＡＢＣ １２３", "ABC 123"},
		{"empty", "", ""},
		{"whitespace only", " \n\t \n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cleanup(tt.in))
		})
	}
}

func TestCleanup_Idempotent(t *testing.T) {
	raw := "  Invoice   #42\r\n\r\n\r\nTotal:\t $10.00  \n\n  Thanks  "
	once := Cleanup(raw)
	assert.Equal(t, once, Cleanup(once))
}

func TestFormatParagraphs(t *testing.T) {
	in := "line one\nline two\n\nsecond para\nwraps here"
	assert.Equal(t, "line one line two\n\nsecond para wraps here", FormatParagraphs(in))
}

func TestFormatParagraphs_DropsEmptyBlocks(t *testing.T) {
	assert.Equal(t, "a\n\nb", FormatParagraphs("a\n\n\n\n  \n\nb"))
}

func TestCount(t *testing.T) {
	stats := Count("hello world\nsecond line")
	assert.Equal(t, 4, stats.WordCount)
	assert.Equal(t, 23, stats.CharCount)
	assert.Equal(t, 20, stats.CharCountNoSpaces)
	assert.Equal(t, 2, stats.LineCount)
}

func TestCount_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, Count(""))
}

func TestExtractEntities_Emails(t *testing.T) {
	ents := ExtractEntities("Contact ops@example.com or billing@test.co.uk, or ops@example.com again.")
	assert.Equal(t, []string{"ops@example.com", "billing@test.co.uk"}, ents.Emails)
}

func TestExtractEntities_Phones(t *testing.T) {
	ents := ExtractEntities("Call +1 (555) 123-4567 or 555-867-5309. Ref 12345 is not a phone.")
	assert.Contains(t, ents.Phones, "+1 (555) 123-4567")
	assert.Contains(t, ents.Phones, "555-867-5309")
	assert.NotContains(t, ents.Phones, "12345")
}

func TestExtractEntities_PhoneDigitBounds(t *testing.T) {
	// 16 digits in a row reads like a card or serial number, not a phone.
	ents := ExtractEntities("serial 1234 5678 9012 3456 end")
	assert.Empty(t, ents.Phones)
}

func TestExtractEntities_URLs(t *testing.T) {
	ents := ExtractEntities("See https://example.com/a?b=1 and www.test.org for details.")
	assert.Equal(t, []string{"https://example.com/a?b=1", "www.test.org"}, ents.URLs)
}

func TestExtractEntities_Dates(t *testing.T) {
	ents := ExtractEntities("Issued 03/15/2024, due 2024-04-01, signed March 15, 2024 and 2 Jan 2023.")
	assert.Contains(t, ents.Dates, "03/15/2024")
	assert.Contains(t, ents.Dates, "2024-04-01")
	assert.Contains(t, ents.Dates, "March 15, 2024")
	assert.Contains(t, ents.Dates, "2 Jan 2023")
}

func TestExtractEntities_EmptyListsNotNil(t *testing.T) {
	ents := ExtractEntities("nothing interesting here")
	assert.NotNil(t, ents.Emails)
	assert.NotNil(t, ents.Phones)
	assert.NotNil(t, ents.URLs)
	assert.NotNil(t, ents.Dates)
	assert.Empty(t, ents.Emails)
}
