package markdown

import "strings"

const fence = "```"

// CodeRun is a piece of code executed during reasoning, with its optional output.
type CodeRun struct {
	Title  string
	Lang   string
	Code   string
	Output string
}

// IsPlaceholderLang reports whether lang carries no real language information.
func IsPlaceholderLang(lang string) bool {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "unknown", "plain", "text":
		return true
	}
	return false
}

// RenderCodeRun renders a code run as a single blockquote: an optional bold title,
// the code fence and, when there is output, a second fence holding it.
// The parts are assembled first and quoted as one unit so the fence lines end up
// quoted like every other line.
func RenderCodeRun(run CodeRun, policy QuotePolicy) string {
	var blocks []string

	if title := strings.TrimSpace(run.Title); title != "" {
		blocks = append(blocks, "**"+title+"**")
	}

	open := fence
	if lang := strings.ToLower(strings.TrimSpace(run.Lang)); !IsPlaceholderLang(lang) {
		open = fence + lang
	}
	blocks = append(blocks, open, strings.TrimRight(run.Code, "\n"), fence)

	if strings.TrimSpace(run.Output) != "" {
		blocks = append(blocks, fence, strings.Trim(run.Output, "\n"), fence)
	}

	return Quote(strings.Join(blocks, "\n"), policy)
}
