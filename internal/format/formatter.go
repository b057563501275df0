// In file: internal/format/formatter.go

// Package format prepares final model text for chat front-ends. The model is
// already instructed to emit markdown links, but it does not always comply;
// Markdown guarantees that any bare URL left in the text becomes a clickable
// markdown link while everything else passes through untouched.
package format

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// trailingPunct holds sentence punctuation that commonly trails a URL but is
// not part of it.
const trailingPunct = ".,;:!?'\""

// Markdown is a pure function: it wraps bare URL substrings as
// [url](url) markdown links, leaves non-URL content unmodified, and never
// rewrites a URL that is already part of a markdown link.
func Markdown(text string) string {
	matches := urlPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))
	last := 0

	for _, match := range matches {
		start, end := match[0], match[1]
		url := trimTrailing(text[start:end])
		end = start + len(url)

		if alreadyLinked(text, start) {
			continue
		}

		out.WriteString(text[last:start])
		out.WriteString("[")
		out.WriteString(url)
		out.WriteString("](")
		out.WriteString(url)
		out.WriteString(")")
		last = end
	}

	out.WriteString(text[last:])
	return out.String()
}

// alreadyLinked reports whether the URL starting at start is inside an
// existing markdown link, either as the target `](url)` or as the label
// `[url]`, or wrapped in angle brackets.
func alreadyLinked(text string, start int) bool {
	if start == 0 {
		return false
	}
	switch text[start-1] {
	case '<', '[':
		return true
	case '(':
		return start >= 2 && text[start-2] == ']'
	}
	return false
}

// trimTrailing strips sentence punctuation from the end of a URL match. A
// closing parenthesis is only stripped when it is unbalanced, so wiki-style
// URLs like .../Go_(programming_language) stay intact.
func trimTrailing(url string) string {
	for len(url) > 0 {
		last := url[len(url)-1]
		if strings.ContainsRune(trailingPunct, rune(last)) {
			url = url[:len(url)-1]
			continue
		}
		if last == ')' && strings.Count(url, ")") > strings.Count(url, "(") {
			url = url[:len(url)-1]
			continue
		}
		break
	}
	return url
}
