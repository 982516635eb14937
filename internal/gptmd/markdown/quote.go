// Package markdown holds the line-level Markdown rewrites used by the converter:
// blockquote wrapping, code-run rendering and math delimiter beautification.
//
// None of these parse Markdown. They scan lines and track just enough state
// (am I inside a code fence, am I inside a list item) to avoid breaking the document.
package markdown

import "strings"

const quoteMarker = ">"

// QuotePolicy controls how Quote treats blank lines.
type QuotePolicy struct {
	// QuoteBlankLines marks blank lines with a bare ">" instead of leaving them empty.
	// Renderers that end a blockquote at an unmarked blank line need this whenever the
	// quoted text contains a code fence spanning a blank line.
	QuoteBlankLines bool
}

// Quote turns text into a blockquote by prefixing every line with "> ".
func Quote(text string, policy QuotePolicy) string {
	lines := splitLines(text)
	for i, ln := range lines {
		switch {
		case strings.TrimSpace(ln) != "":
			lines[i] = quoteMarker + " " + ln
		case policy.QuoteBlankLines:
			lines[i] = quoteMarker
		default:
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// splitLines splits on "\n" without producing a trailing empty element for a
// final newline; "" yields no lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
