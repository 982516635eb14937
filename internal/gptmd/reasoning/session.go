// Package reasoning aggregates the sub-events of one reasoning turn (thought summaries,
// executed code with its output, and the recap label) and renders them as a single
// collapsible block ordered by time.
package reasoning

import (
	"fmt"
	"sort"
	"strings"

	"github.com/longkey1/gptmd/internal/gptmd/export"
	"github.com/longkey1/gptmd/internal/gptmd/markdown"
)

// Options configures how a session renders its items.
type Options struct {
	Quote markdown.QuotePolicy
	// CodeTitle is shown above code runs that carry no reasoning title.
	CodeTitle string
}

// Session collects the items of one reasoning turn. It is not safe for concurrent use.
type Session struct {
	opts    Options
	items   []item
	recap   string
	nextSeq int
}

// item is implemented by *thoughtItem and *codeItem only.
type item interface {
	sortKey() sortKey
}

type sortKey struct {
	time float64
	seq  int
}

// keyOf builds the ordering key. A missing time sorts as 0, before any real timestamp.
func keyOf(t *float64, seq int) sortKey {
	if t == nil {
		return sortKey{seq: seq}
	}
	return sortKey{time: *t, seq: seq}
}

func (k sortKey) less(o sortKey) bool {
	if k.time != o.time {
		return k.time < o.time
	}
	return k.seq < o.seq
}

type thoughtItem struct {
	summary string
	content string
	time    *float64
	seq     int
}

func (t *thoughtItem) sortKey() sortKey { return keyOf(t.time, t.seq) }

type codeItem struct {
	title  string
	lang   string
	code   string
	output *string
	// time is the ordering time; it moves to the output time once paired.
	time     *float64
	seq      int
	codeTime *float64
}

func (c *codeItem) sortKey() sortKey { return keyOf(c.time, c.seq) }

// New creates an empty session.
func New(opts Options) *Session {
	return &Session{opts: opts}
}

// AddThoughts appends one thought item per entry that has a summary or content.
// All entries share the message time.
func (s *Session) AddThoughts(msgTime *float64, thoughts []export.Thought) {
	for _, t := range thoughts {
		summary := strings.TrimSpace(t.Summary)
		content := strings.TrimSpace(t.Content)
		if summary == "" && content == "" {
			continue
		}
		s.items = append(s.items, &thoughtItem{
			summary: summary,
			content: content,
			time:    copyTime(msgTime),
			seq:     s.seq(),
		})
	}
}

// AddCode appends a code item awaiting its output.
func (s *Session) AddCode(msgTime *float64, title, lang, code string) {
	s.items = append(s.items, &codeItem{
		title:    title,
		lang:     strings.ToLower(strings.TrimSpace(lang)),
		code:     code,
		time:     copyTime(msgTime),
		seq:      s.seq(),
		codeTime: copyTime(msgTime),
	})
}

// PairOutput attaches an execution output to the most recently added code item that
// has none yet, and re-times that item to outputTime (or back to its own time when
// outputTime is nil). It reports false, discarding the output, when every code item
// is already paired.
func (s *Session) PairOutput(outputTime *float64, output string) bool {
	for i := len(s.items) - 1; i >= 0; i-- {
		c, ok := s.items[i].(*codeItem)
		if !ok || c.output != nil {
			continue
		}
		c.output = &output
		if outputTime != nil {
			c.time = copyTime(outputTime)
		} else {
			c.time = copyTime(c.codeTime)
		}
		return true
	}
	return false
}

// SetRecap sets the label shown on the collapsed block.
func (s *Session) SetRecap(text string) {
	s.recap = strings.TrimSpace(text)
}

// IsEmpty reports whether the session has neither items nor a recap.
func (s *Session) IsEmpty() bool {
	return len(s.items) == 0 && s.recap == ""
}

// Len returns the number of collected items.
func (s *Session) Len() int {
	return len(s.items)
}

// Flush renders the session as a <details> block and resets it. The summary line is
// the recap when set, otherwise defaultLabel. It reports false for an empty session.
func (s *Session) Flush(defaultLabel string) (string, bool) {
	if s.IsEmpty() {
		return "", false
	}

	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].sortKey().less(s.items[j].sortKey())
	})

	parts := make([]string, 0, len(s.items))
	for _, it := range s.items {
		if rendered := s.render(it); rendered != "" {
			parts = append(parts, rendered)
		}
	}

	label := s.recap
	if label == "" {
		label = defaultLabel
	}
	block := fmt.Sprintf("<details>\n<summary>%s</summary>\n\n%s\n\n</details>", label, strings.Join(parts, "\n\n"))

	s.reset()
	return block, true
}

func (s *Session) render(it item) string {
	switch it := it.(type) {
	case *thoughtItem:
		var lines []string
		if it.summary != "" {
			lines = append(lines, "> **"+it.summary+"**")
		}
		if it.content != "" {
			lines = append(lines, markdown.Quote(markdown.Beautify(it.content), s.opts.Quote))
		}
		return strings.TrimRight(strings.Join(lines, "\n"), " \t\n")
	case *codeItem:
		title := it.title
		if title == "" {
			title = s.opts.CodeTitle
		}
		run := markdown.CodeRun{Title: title, Lang: it.lang, Code: it.code}
		if it.output != nil {
			run.Output = *it.output
		}
		return markdown.RenderCodeRun(run, s.opts.Quote)
	default:
		panic(fmt.Sprintf("reasoning: unexpected item type %T", it))
	}
}

func (s *Session) seq() int {
	n := s.nextSeq
	s.nextSeq++
	return n
}

func (s *Session) reset() {
	s.items = nil
	s.recap = ""
	s.nextSeq = 0
}

func copyTime(t *float64) *float64 {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
