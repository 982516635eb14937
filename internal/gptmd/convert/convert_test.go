package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longkey1/gptmd/internal/gptmd/export"
	"github.com/longkey1/gptmd/internal/gptmd/labels"
)

func ts(v float64) *float64 { return &v }

// chain builds a conversation whose nodes form a single path in the given order;
// the last node is the current one.
func chain(msgs ...*export.Message) *export.Conversation {
	conv := &export.Conversation{ID: "conv-0001", Mapping: make(map[string]*export.Node)}
	parent := "root"
	conv.Mapping[parent] = &export.Node{ID: parent}
	for i, m := range msgs {
		id := string(rune('a' + i))
		conv.Mapping[id] = &export.Node{ID: id, Parent: parent, Message: m}
		parent = id
	}
	conv.CurrentNode = parent
	return conv
}

func text(role export.Role, t *float64, parts ...string) *export.Message {
	m := &export.Message{Role: role, ContentType: export.ContentText, CreateTime: t}
	for _, p := range parts {
		m.Parts = append(m.Parts, export.Part{IsText: true, Text: p})
	}
	return m
}

func thoughts(t *float64, entries ...export.Thought) *export.Message {
	return &export.Message{Role: export.RoleAssistant, ContentType: export.ContentThoughts, CreateTime: t, Thoughts: entries}
}

func code(t *float64, lang, recipient, body string) *export.Message {
	return &export.Message{
		Role:        export.RoleAssistant,
		ContentType: export.ContentCode,
		CreateTime:  t,
		Language:    lang,
		Recipient:   recipient,
		Text:        body,
	}
}

func output(t *float64, body string) *export.Message {
	return &export.Message{
		Role:        export.RoleTool,
		AuthorName:  "python",
		ContentType: export.ContentExecutionOutput,
		CreateTime:  t,
		Text:        body,
	}
}

func recap(s string) *export.Message {
	return &export.Message{Role: export.RoleAssistant, ContentType: export.ContentReasoningRecap, Content: s}
}

func newConverter(t *testing.T, opts Options) *Converter {
	t.Helper()
	l, err := labels.Preset("en")
	require.NoError(t, err)
	opts.Labels = l
	opts.Location = time.UTC
	return New(opts)
}

func TestConvertReasoningTurn(t *testing.T) {
	conv := chain(
		text(export.RoleUser, ts(50), "Hi"),
		thoughts(ts(100), export.Thought{Summary: "Plan", Content: "Step 1"}),
		code(ts(200), "python", "python", "print(1)"),
		output(ts(300), "1"),
		recap("Thought for 5s"),
		text(export.RoleAssistant, ts(400), "Done."),
	)

	blocks := newConverter(t, Options{}).Convert(conv)
	require.Len(t, blocks, 2)

	assert.Equal(t, Block{
		NodeID:   "a",
		Role:     export.RoleUser,
		Header:   "# User",
		TimeLine: "> Time: 1970-01-01 00:00:50",
		Body:     "Hi",
	}, blocks[0])

	wantBody := "<details>\n<summary>Thought for 5s</summary>\n\n" +
		"> **Plan**\n> Step 1\n\n" +
		"> **Code reasoning**\n> ```python\n> print(1)\n> ```\n> ```\n> 1\n> ```" +
		"\n\n</details>\n\nDone."
	assert.Equal(t, "# ChatGPT", blocks[1].Header)
	assert.Equal(t, "> Time: 1970-01-01 00:06:40", blocks[1].TimeLine)
	assert.Equal(t, wantBody, blocks[1].Body)

	doc := Render(blocks)
	assert.Equal(t, "# User\n\n> Time: 1970-01-01 00:00:50\n\nHi\n\n# ChatGPT\n\n> Time: 1970-01-01 00:06:40\n\n"+wantBody, doc)
}

func TestConvertUnpairedOutputIsDropped(t *testing.T) {
	conv := chain(
		text(export.RoleUser, ts(1), "Q"),
		output(ts(2), "orphan output"),
		text(export.RoleAssistant, ts(3), "A"),
	)

	doc := newConverter(t, Options{}).Document(conv)
	assert.NotContains(t, doc, "orphan output")
	assert.NotContains(t, doc, "<details>")
	assert.Contains(t, doc, "\n\nA")
}

func TestConvertTrailingSession(t *testing.T) {
	conv := chain(
		text(export.RoleUser, ts(1), "Q"),
		thoughts(ts(2), export.Thought{Summary: "Still thinking"}),
	)

	blocks := newConverter(t, Options{}).Convert(conv)
	require.Len(t, blocks, 2)
	last := blocks[1]
	assert.Equal(t, export.RoleAssistant, last.Role)
	assert.Equal(t, "# ChatGPT", last.Header)
	assert.Equal(t, "> Time: Unknown time", last.TimeLine)
	assert.Equal(t, "<details>\n<summary>Thinking</summary>\n\n> **Still thinking**\n\n</details>", last.Body)
}

func TestConvertSkipsEmptyText(t *testing.T) {
	conv := chain(
		thoughts(ts(1), export.Thought{Summary: "T"}),
		text(export.RoleAssistant, ts(2), "", "  \n "),
		text(export.RoleAssistant, ts(3), "Answer"),
	)

	blocks := newConverter(t, Options{}).Convert(conv)
	require.Len(t, blocks, 1)
	assert.Equal(t, "<details>\n<summary>Thinking</summary>\n\n> **T**\n\n</details>\n\nAnswer", blocks[0].Body)
}

func TestConvertUserMessageDoesNotFlush(t *testing.T) {
	conv := chain(
		thoughts(ts(1), export.Thought{Summary: "T"}),
		text(export.RoleUser, ts(2), "Interrupting"),
		text(export.RoleAssistant, ts(3), "Answer"),
	)

	blocks := newConverter(t, Options{}).Convert(conv)
	require.Len(t, blocks, 2)
	assert.Equal(t, "Interrupting", blocks[0].Body)
	assert.Contains(t, blocks[1].Body, "> **T**")
}

func TestConvertCodeLanguageFallback(t *testing.T) {
	tests := []struct {
		name      string
		lang      string
		recipient string
		wantFence string
	}{
		{name: "declared language", lang: "JavaScript", recipient: "python", wantFence: "> ```javascript\n"},
		{name: "unknown sent to python", lang: "unknown", recipient: "python", wantFence: "> ```python\n"},
		{name: "empty sent to python", lang: "", recipient: " Python ", wantFence: "> ```python\n"},
		{name: "unknown sent elsewhere", lang: "unknown", recipient: "web", wantFence: "> ```\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := chain(
				code(ts(1), tt.lang, tt.recipient, "x"),
				text(export.RoleAssistant, ts(2), "A"),
			)
			doc := newConverter(t, Options{}).Document(conv)
			assert.Contains(t, doc, tt.wantFence+"> x\n> ```")
		})
	}
}

func TestConvertReasoningTitle(t *testing.T) {
	c := code(ts(1), "python", "python", "x")
	c.Metadata = map[string]any{"reasoning_title": "Checking the sum"}
	conv := chain(c, text(export.RoleAssistant, ts(2), "A"))

	doc := newConverter(t, Options{}).Document(conv)
	assert.Contains(t, doc, "> **Checking the sum**\n> ```python")
}

func TestConvertIgnoresOtherMessages(t *testing.T) {
	conv := chain(
		&export.Message{Role: export.RoleSystem, ContentType: export.ContentText, Parts: []export.Part{{IsText: true, Text: "system prompt"}}},
		&export.Message{Role: export.RoleTool, AuthorName: "web", ContentType: export.ContentText, Parts: []export.Part{{IsText: true, Text: "search results"}}},
		&export.Message{Role: export.RoleAssistant, ContentType: "tether_quote", Text: "quoted"},
		text(export.RoleUser, ts(1), "Q"),
	)

	blocks := newConverter(t, Options{}).Convert(conv)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Q", blocks[0].Body)
}

func TestConvertOnlyCurrentBranch(t *testing.T) {
	conv := chain(
		text(export.RoleUser, ts(1), "Q"),
		text(export.RoleAssistant, ts(2), "kept answer"),
	)
	conv.Mapping["z"] = &export.Node{ID: "z", Parent: "a", Message: text(export.RoleAssistant, ts(3), "regenerated answer")}

	doc := newConverter(t, Options{}).Document(conv)
	assert.Contains(t, doc, "kept answer")
	assert.NotContains(t, doc, "regenerated answer")
}

func TestConvertMissingCurrentNode(t *testing.T) {
	conv := chain(text(export.RoleUser, ts(1), "Q"))
	conv.CurrentNode = "gone"

	assert.Empty(t, newConverter(t, Options{}).Convert(conv))
}

func TestConvertMessageText(t *testing.T) {
	m := &export.Message{
		Role:        export.RoleUser,
		ContentType: export.ContentMultimodalText,
		CreateTime:  ts(1),
		Parts: []export.Part{
			{ContentType: export.PartImageAssetPointer},
			{IsText: true, Text: "line 1\r\nline 2\n\rline 3"},
			{ContentType: "audio_transcription"},
		},
	}

	dropped := newConverter(t, Options{}).Convert(chain(m))
	require.Len(t, dropped, 1)
	assert.Equal(t, "line 1\nline 2\nline 3", dropped[0].Body)

	placed := newConverter(t, Options{ImagePlaceholder: "[image]"}).Convert(chain(m))
	require.Len(t, placed, 1)
	assert.Equal(t, "[image]\nline 1\nline 2\nline 3", placed[0].Body)
}

func TestConvertBeautifiesBody(t *testing.T) {
	conv := chain(text(export.RoleAssistant, ts(1), "Area \\(\\pi r^2\\)\n```\n\\(kept\\)\n```"))

	blocks := newConverter(t, Options{}).Convert(conv)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Area $\\pi r^2$\n```\n\\(kept\\)\n```", blocks[0].Body)
}

func TestConvertTargetQuotePolicy(t *testing.T) {
	conv := chain(
		code(ts(1), "python", "python", "a = 1\n\nb = 2"),
		text(export.RoleAssistant, ts(2), "A"),
	)

	github := newConverter(t, Options{Target: TargetGitHub}).Document(conv)
	assert.Contains(t, github, "> a = 1\n>\n> b = 2")

	compact := newConverter(t, Options{Target: TargetCompact}).Document(conv)
	assert.Contains(t, compact, "> a = 1\n\n> b = 2")
}

func TestConvertFromParsedExport(t *testing.T) {
	data := `{
	  "id": "c1", "current_node": "n4",
	  "mapping": {
	    "n0": {"parent": null, "message": null},
	    "n1": {"parent": "n0", "message": {"author": {"role": "user"}, "create_time": 10,
	      "content": {"content_type": "text", "parts": ["Compute 2+2"]}}},
	    "n2": {"parent": "n1", "message": {"author": {"role": "assistant"}, "recipient": "python", "create_time": 11,
	      "content": {"content_type": "code", "language": "unknown", "text": "2+2"}}},
	    "n3": {"parent": "n2", "message": {"author": {"role": "tool", "name": "python"}, "create_time": 12,
	      "content": {"content_type": "execution_output", "text": "4"}}},
	    "n4": {"parent": "n3", "message": {"author": {"role": "assistant"}, "create_time": 13,
	      "content": {"content_type": "text", "parts": ["It is 4."]}}}
	  }
	}`
	convs, err := export.Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, convs, 1)

	blocks := newConverter(t, Options{}).Convert(&convs[0])
	require.Len(t, blocks, 2)
	assert.Equal(t, "Compute 2+2", blocks[0].Body)
	assert.Equal(t, "<details>\n<summary>Thinking</summary>\n\n"+
		"> **Code reasoning**\n> ```python\n> 2+2\n> ```\n> ```\n> 4\n> ```"+
		"\n\n</details>\n\nIt is 4.", blocks[1].Body)
}

func TestParseTarget(t *testing.T) {
	got, err := ParseTarget(" Compact ")
	require.NoError(t, err)
	assert.Equal(t, TargetCompact, got)

	got, err = ParseTarget("")
	require.NoError(t, err)
	assert.Equal(t, TargetGitHub, got)

	_, err = ParseTarget("html")
	assert.Error(t, err)
}

func TestFormatTime(t *testing.T) {
	c := newConverter(t, Options{})
	assert.Equal(t, "2025-01-22 13:20:00", c.FormatTime(ts(1737552000)))
	assert.Equal(t, "Unknown time", c.FormatTime(nil))
}
