// In file: internal/format/formatter_test.go
package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no urls passes through unchanged",
			input:    "The spreadsheet row was created successfully.",
			expected: "The spreadsheet row was created successfully.",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "bare url gets wrapped",
			input:    "See https://example.com/doc for details",
			expected: "See [https://example.com/doc](https://example.com/doc) for details",
		},
		{
			name:     "url at end of sentence drops the period",
			input:    "Created at https://sheets.example.com/abc123.",
			expected: "Created at [https://sheets.example.com/abc123](https://sheets.example.com/abc123).",
		},
		{
			name:     "existing markdown link is untouched",
			input:    "Open [the sheet](https://example.com/sheet) to review",
			expected: "Open [the sheet](https://example.com/sheet) to review",
		},
		{
			name:     "angle-bracketed url is untouched",
			input:    "Raw link: <https://example.com>",
			expected: "Raw link: <https://example.com>",
		},
		{
			name:     "multiple bare urls each get wrapped",
			input:    "First https://a.example.com then https://b.example.com",
			expected: "First [https://a.example.com](https://a.example.com) then [https://b.example.com](https://b.example.com)",
		},
		{
			name:     "balanced parentheses in url are kept",
			input:    "Read https://en.wikipedia.org/wiki/Go_(programming_language) now",
			expected: "Read [https://en.wikipedia.org/wiki/Go_(programming_language)](https://en.wikipedia.org/wiki/Go_(programming_language)) now",
		},
		{
			name:     "unbalanced closing paren is trimmed",
			input:    "(see https://example.com/page)",
			expected: "(see [https://example.com/page](https://example.com/page))",
		},
		{
			name:     "http scheme also matches",
			input:    "legacy: http://old.example.com/x",
			expected: "legacy: [http://old.example.com/x](http://old.example.com/x)",
		},
		{
			name:     "non-url text with colon is not a link",
			input:    "status: done",
			expected: "status: done",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Markdown(tc.input))
		})
	}
}
