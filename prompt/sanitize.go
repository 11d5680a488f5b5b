// Package prompt builds generation requests and cleans model output.
//
// Everything here is pure: no I/O, no logging, no host framework types.
package prompt

import "strings"

const fence = "```"

// prefixes are checked in order; the first match is removed.
var prefixes = []string{"Prompt:", "PROMPT:", "Generated Prompt:", "Final Prompt:"}

// Clean reduces raw model output to the prompt text it contains.
//
// Whitespace-only input is returned as is. Otherwise the text is trimmed,
// the first fenced code block is extracted, one layer of matching quotes is
// removed and a known label prefix is stripped, in that order.
func Clean(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}

	s = strings.TrimSpace(s)
	s = stripFence(s)
	s = stripQuotes(s)
	s = stripPrefix(s)
	return s
}

// stripFence keeps only the body of the first fenced block. A language tag
// on the opening line is dropped when a newline precedes the closing fence.
func stripFence(s string) string {
	if !strings.HasPrefix(s, fence) {
		return s
	}
	end := strings.Index(s[len(fence):], fence)
	if end < 0 {
		return s
	}
	end += len(fence)
	if end <= len(fence) {
		return s
	}

	if nl := strings.IndexByte(s[len(fence):], '\n'); nl >= 0 {
		nl += len(fence)
		if nl > len(fence) && nl < end {
			return strings.TrimSpace(s[nl+1 : end])
		}
	}
	return strings.TrimSpace(s[len(fence):end])
}

// stripQuotes removes one layer of "..." or '...' spanning the whole string.
func stripQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if (first == '"' || first == '\'') && first == last {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func stripPrefix(s string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return strings.TrimSpace(s[len(p):])
		}
	}
	return s
}
