package reasoning

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longkey1/gptmd/internal/gptmd/export"
	"github.com/longkey1/gptmd/internal/gptmd/markdown"
)

func ts(v float64) *float64 { return &v }

func newSession() *Session {
	return New(Options{
		Quote:     markdown.QuotePolicy{QuoteBlankLines: true},
		CodeTitle: "Code reasoning",
	})
}

func details(label, inner string) string {
	return "<details>\n<summary>" + label + "</summary>\n\n" + inner + "\n\n</details>"
}

func TestFlushEmpty(t *testing.T) {
	s := newSession()
	require.True(t, s.IsEmpty())

	block, ok := s.Flush("Thinking")
	assert.False(t, ok)
	assert.Empty(t, block)
}

func TestFlushOrdersThoughtBeforeRetimedCode(t *testing.T) {
	s := newSession()
	s.AddThoughts(ts(100), []export.Thought{{Summary: "Plan", Content: "Step 1"}})
	s.AddCode(ts(200), "", "python", "print(1)")
	require.True(t, s.PairOutput(ts(300), "1"))
	s.SetRecap("Thought for 5s")

	block, ok := s.Flush("Thinking")
	require.True(t, ok)

	want := details("Thought for 5s",
		"> **Plan**\n> Step 1\n\n"+
			"> **Code reasoning**\n> ```python\n> print(1)\n> ```\n> ```\n> 1\n> ```")
	assert.Equal(t, want, block)
	assert.True(t, s.IsEmpty())
}

func TestPairOutputMovesCodeToOutputTime(t *testing.T) {
	s := newSession()
	s.AddCode(ts(10), "Run", "python", "x")
	s.AddThoughts(ts(20), []export.Thought{{Summary: "Later thought"}})
	require.True(t, s.PairOutput(ts(30), "out"))

	block, _ := s.Flush("Thinking")
	assert.Less(t, strings.Index(block, "Later thought"), strings.Index(block, "**Run**"))
}

func TestPairOutputWithoutTimeKeepsCodeTime(t *testing.T) {
	s := newSession()
	s.AddCode(ts(10), "Run", "python", "x")
	s.AddThoughts(ts(20), []export.Thought{{Summary: "Later thought"}})
	require.True(t, s.PairOutput(nil, "out"))

	block, _ := s.Flush("Thinking")
	assert.Less(t, strings.Index(block, "**Run**"), strings.Index(block, "Later thought"))
}

func TestPairOutputSearchesBackwards(t *testing.T) {
	s := newSession()
	s.AddCode(ts(1), "First", "python", "a")
	s.AddCode(ts(2), "Second", "python", "b")

	require.True(t, s.PairOutput(ts(3), "out-b"))
	require.True(t, s.PairOutput(ts(4), "out-a"))
	assert.False(t, s.PairOutput(ts(5), "orphan"))

	block, _ := s.Flush("Thinking")
	assert.Contains(t, block, "> **Second**\n> ```python\n> b\n> ```\n> ```\n> out-b\n> ```")
	assert.Contains(t, block, "> **First**\n> ```python\n> a\n> ```\n> ```\n> out-a\n> ```")
	assert.NotContains(t, block, "orphan")
	// First was re-timed to 4, after Second at 3.
	assert.Less(t, strings.Index(block, "**Second**"), strings.Index(block, "**First**"))
}

func TestPairOutputEmptyStringStillPairs(t *testing.T) {
	s := newSession()
	s.AddCode(ts(1), "Only", "python", "a")
	require.True(t, s.PairOutput(ts(2), ""))
	assert.False(t, s.PairOutput(ts(3), "second"))
}

func TestPairOutputWithoutCodeIsDropped(t *testing.T) {
	s := newSession()
	assert.False(t, s.PairOutput(ts(1), "orphan"))
	assert.True(t, s.IsEmpty())
}

func TestEqualTimesKeepInsertionOrder(t *testing.T) {
	s := newSession()
	s.AddThoughts(nil, []export.Thought{{Summary: "A"}})
	s.AddThoughts(nil, []export.Thought{{Summary: "B"}})
	s.AddThoughts(ts(0), []export.Thought{{Summary: "C"}})
	s.AddThoughts(ts(5), []export.Thought{{Summary: "D"}, {Summary: "E"}})

	block, _ := s.Flush("Thinking")
	assert.Equal(t, details("Thinking", "> **A**\n\n> **B**\n\n> **C**\n\n> **D**\n\n> **E**"), block)
}

func TestMissingTimeSortsFirst(t *testing.T) {
	s := newSession()
	s.AddThoughts(ts(1), []export.Thought{{Summary: "timed"}})
	s.AddThoughts(nil, []export.Thought{{Summary: "untimed"}})

	block, _ := s.Flush("Thinking")
	assert.Less(t, strings.Index(block, "**untimed**"), strings.Index(block, "**timed**"))
}

func TestAddThoughtsSkipsEmptyEntries(t *testing.T) {
	s := newSession()
	s.AddThoughts(ts(1), []export.Thought{{Summary: "  ", Content: "\n"}, {}})
	assert.True(t, s.IsEmpty())

	s.AddThoughts(ts(1), []export.Thought{{Content: "Only content \\(x\\)"}})
	block, _ := s.Flush("Thinking")
	assert.Equal(t, details("Thinking", "> Only content $x$"), block)
}

func TestThoughtContentQuotedWithPolicy(t *testing.T) {
	s := New(Options{})
	s.AddThoughts(ts(1), []export.Thought{{Summary: "S", Content: "para 1\n\npara 2"}})

	block, _ := s.Flush("Thinking")
	assert.Equal(t, details("Thinking", "> **S**\n> para 1\n\n> para 2"), block)
}

func TestRecapOnly(t *testing.T) {
	s := newSession()
	s.SetRecap("  Thought for 2s ")
	require.False(t, s.IsEmpty())

	block, ok := s.Flush("Thinking")
	require.True(t, ok)
	assert.Equal(t, details("Thought for 2s", ""), block)
}

func TestFlushResetsState(t *testing.T) {
	fresh := newSession()
	fresh.AddCode(nil, "Run", "python", "x")
	want, _ := fresh.Flush("Thinking")

	s := newSession()
	s.AddThoughts(ts(50), []export.Thought{{Summary: "old"}})
	s.AddCode(ts(60), "Old", "python", "y")
	s.SetRecap("old recap")
	_, ok := s.Flush("Thinking")
	require.True(t, ok)
	require.True(t, s.IsEmpty())
	require.Zero(t, s.Len())

	// Leftover pairing targets and sequence numbers must not leak across flushes.
	assert.False(t, s.PairOutput(ts(70), "late"))
	s.AddCode(nil, "Run", "python", "x")
	got, _ := s.Flush("Thinking")
	assert.Equal(t, want, got)
}
