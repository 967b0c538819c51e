// Package templater rewrites source text by replacing a literal placeholder
// token with a replacement, typically a namespace name. Substitution happens
// in memory only; files on disk are never modified.
package templater

import "strings"

// DefaultPlaceholder is the token replaced when none is configured.
const DefaultPlaceholder = "PLACEHOLDER"

// Substitute returns text with every non-overlapping literal occurrence of
// placeholder replaced by replacement. Matching is a plain substring match,
// scanned left to right. An empty placeholder leaves text unchanged.
func Substitute(text, placeholder, replacement string) string {
	if placeholder == "" {
		return text
	}
	return strings.ReplaceAll(text, placeholder, replacement)
}

// Source is one unit of compiler input: where it came from and its text.
type Source struct {
	Path string
	Text string
}

// SubstituteAll applies Substitute to every source independently and returns
// new values in the same order. The input slice is not modified.
func SubstituteAll(sources []Source, placeholder, replacement string) []Source {
	out := make([]Source, len(sources))
	for i, src := range sources {
		out[i] = Source{
			Path: src.Path,
			Text: Substitute(src.Text, placeholder, replacement),
		}
	}
	return out
}
