package markdown

import (
	"regexp"
	"strings"
)

const (
	displayOpen  = `\[`
	displayClose = `\]`
	listIndent   = "  "
)

var (
	// A fence line, possibly inside a blockquote: "```", "  ```go", "> ```", ">>  ```".
	fenceLineRe = regexp.MustCompile("^\\s*(?:>+\\s*)?```")
	listItemRe  = regexp.MustCompile(`^\s*(?:[-*]|\d+\.)\s+`)
	displayRe   = regexp.MustCompile(`(?s)\\\[(.+?)\\\]`)
	inlineRe    = regexp.MustCompile(`\\\((.+?)\\\)`)
)

// Beautify rewrites LaTeX-style math delimiters into dollar delimiters outside code fences:
//
//   - a line that is exactly `\[`, up to a line that is exactly `\]`, becomes a `$$` block
//   - `\[ ... \]` within one line is split out into its own `$$` block
//   - `\( ... \)` becomes `$ ... $`
//
// `$$` blocks are surrounded by blank lines and indented by two spaces when they sit
// inside a list item. Escapes such as `\~` and `\@` are left untouched.
func Beautify(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	inFence := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if fenceLineRe.MatchString(line) {
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}

		if strings.TrimSpace(line) == displayOpen {
			var formula []string
			for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != displayClose {
				i++
				formula = append(formula, strings.TrimSpace(lines[i]))
			}
			// Skip the closing delimiter when there is one.
			if i+1 < len(lines) {
				i++
			}
			out = appendDisplayBlock(out, formula, displayIndent(out))
			out = append(out, "")
			continue
		}

		if loc := displayRe.FindStringSubmatchIndex(line); loc != nil {
			before := strings.TrimRight(line[:loc[0]], " \t")
			after := strings.TrimLeft(line[loc[1]:], " \t")
			var formula []string
			for _, sub := range splitLines(strings.TrimSpace(line[loc[2]:loc[3]])) {
				formula = append(formula, strings.TrimSpace(sub))
			}

			// The indent is decided by what precedes the line, not by its own prefix.
			indent := displayIndent(out)
			if before != "" {
				out = append(out, before)
			}
			out = appendDisplayBlock(out, formula, indent)
			if after != "" {
				out = append(out, "", after)
			}
			continue
		}

		out = append(out, inlineRe.ReplaceAllString(line, "$$${1}$$"))
	}

	return strings.Join(out, "\n")
}

func displayIndent(out []string) string {
	if inListItem(out) {
		return listIndent
	}
	return ""
}

// appendDisplayBlock emits a $$ block, preceded by a blank line when the previous
// line has text.
func appendDisplayBlock(out []string, formula []string, indent string) []string {
	if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
		out = append(out, "")
	}
	out = append(out, indent+"$$")
	for _, ln := range formula {
		out = append(out, indent+ln)
	}
	return append(out, indent+"$$")
}

// inListItem scans back from the end of out to the previous blank line and reports
// whether a list item starts in between.
func inListItem(out []string) bool {
	for j := len(out) - 1; j >= 0; j-- {
		if strings.TrimSpace(out[j]) == "" {
			return false
		}
		if listItemRe.MatchString(out[j]) {
			return true
		}
	}
	return false
}
