// Package convert turns a conversation export into a linear Markdown document.
//
// The converter walks the branch ending at the conversation's current node. Thoughts,
// executed code, execution outputs and recaps are collected into a reasoning session;
// the next assistant text message gets the rendered session prepended to its body.
package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/longkey1/gptmd/internal/gptmd/branch"
	"github.com/longkey1/gptmd/internal/gptmd/export"
	"github.com/longkey1/gptmd/internal/gptmd/labels"
	"github.com/longkey1/gptmd/internal/gptmd/markdown"
	"github.com/longkey1/gptmd/internal/gptmd/reasoning"
)

// CodeTool is the author name and recipient of the code-execution tool.
const CodeTool = "python"

const timeLayout = "2006-01-02 15:04:05"

// Target selects the Markdown flavor the document is written for.
type Target string

const (
	// TargetGitHub quotes blank lines too, so fences inside quotes survive blank lines.
	TargetGitHub Target = "github"
	// TargetCompact leaves blank lines inside quotes bare.
	TargetCompact Target = "compact"
)

// ParseTarget validates a target name.
func ParseTarget(s string) (Target, error) {
	switch t := Target(strings.ToLower(strings.TrimSpace(s))); t {
	case TargetGitHub, TargetCompact:
		return t, nil
	case "":
		return TargetGitHub, nil
	default:
		return "", fmt.Errorf("unsupported target: %s (expected %s or %s)", s, TargetGitHub, TargetCompact)
	}
}

// QuotePolicy returns the blockquote policy for the target.
func (t Target) QuotePolicy() markdown.QuotePolicy {
	return markdown.QuotePolicy{QuoteBlankLines: t != TargetCompact}
}

// Options configures a Converter.
type Options struct {
	Labels labels.Labels
	Target Target
	// ImagePlaceholder replaces image parts of multimodal messages; empty drops them.
	ImagePlaceholder string
	// Location is used to format message times; nil means time.Local.
	Location *time.Location
	Logger   *zerolog.Logger
}

// Block is one rendered message.
type Block struct {
	NodeID   string
	Role     export.Role
	Header   string
	TimeLine string
	Body     string
}

// Converter converts conversations. Each Convert call uses its own reasoning session,
// so a Converter may be shared between goroutines.
type Converter struct {
	opts Options
	log  zerolog.Logger
}

// New creates a converter.
func New(opts Options) *Converter {
	if opts.Target == "" {
		opts.Target = TargetGitHub
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Converter{opts: opts, log: log}
}

// Convert renders the current branch of conv as message blocks in document order.
func (c *Converter) Convert(conv *export.Conversation) []Block {
	ids := branch.Resolve(conv.Mapping, conv.CurrentNode)
	log := c.log.With().Str("conversation", conv.GetShortID()).Logger()
	log.Debug().Int("nodes", len(ids)).Msg("resolved branch")

	session := reasoning.New(reasoning.Options{
		Quote:     c.opts.Target.QuotePolicy(),
		CodeTitle: c.opts.Labels.CodeTitle,
	})

	var blocks []Block
	for _, id := range ids {
		msg := conv.Mapping[id].Message
		if msg == nil {
			continue
		}

		switch {
		case msg.ContentType == export.ContentThoughts:
			session.AddThoughts(msg.CreateTime, msg.Thoughts)

		case msg.ContentType == export.ContentReasoningRecap:
			session.SetRecap(msg.Content)

		case msg.Role == export.RoleAssistant && msg.ContentType == export.ContentCode:
			session.AddCode(msg.CreateTime, msg.ReasoningTitle(), codeLang(msg), msg.Text)

		case msg.Role == export.RoleTool:
			if strings.EqualFold(msg.AuthorName, CodeTool) && msg.ContentType == export.ContentExecutionOutput {
				if !session.PairOutput(msg.CreateTime, msg.Text) {
					log.Debug().Str("node", id).Msg("dropped execution output with no pending code")
				}
			}

		case isTextMessage(msg):
			text := c.messageText(msg)
			if text == "" {
				log.Debug().Str("node", id).Msg("skipped empty message")
				continue
			}
			if msg.Role == export.RoleAssistant && !session.IsEmpty() {
				log.Debug().Str("node", id).Int("items", session.Len()).Msg("flushing reasoning")
				if details, ok := session.Flush(c.opts.Labels.Reasoning); ok {
					text = details + "\n\n" + text
				}
			}
			blocks = append(blocks, Block{
				NodeID:   id,
				Role:     msg.Role,
				Header:   c.opts.Labels.Header(msg.Role == export.RoleUser),
				TimeLine: c.opts.Labels.FormatTimeLine(c.FormatTime(msg.CreateTime)),
				Body:     markdown.Beautify(text),
			})
		}
	}

	if !session.IsEmpty() {
		log.Debug().Int("items", session.Len()).Msg("flushing trailing reasoning")
		details, _ := session.Flush(c.opts.Labels.Reasoning)
		blocks = append(blocks, Block{
			Role:     export.RoleAssistant,
			Header:   c.opts.Labels.Assistant,
			TimeLine: c.opts.Labels.FormatTimeLine(c.FormatTime(nil)),
			Body:     markdown.Beautify(details),
		})
	}

	return blocks
}

// Document converts conv and joins the blocks into the final Markdown text.
func (c *Converter) Document(conv *export.Conversation) string {
	return Render(c.Convert(conv))
}

// Render joins blocks: header, time line and body each separated by one blank line,
// and blocks separated by one blank line.
func Render(blocks []Block) string {
	parts := make([]string, 0, len(blocks)*3)
	for _, b := range blocks {
		parts = append(parts, b.Header, b.TimeLine, b.Body)
	}
	return strings.Join(parts, "\n\n")
}

// FormatTime formats a Unix timestamp, or returns the unknown-time label.
func (c *Converter) FormatTime(ts *float64) string {
	t, ok := export.ToTime(ts)
	if !ok {
		return c.opts.Labels.UnknownTime
	}
	return t.In(c.opts.Location).Format(timeLayout)
}

func isTextMessage(msg *export.Message) bool {
	if msg.Role != export.RoleUser && msg.Role != export.RoleAssistant {
		return false
	}
	return msg.ContentType == export.ContentText || msg.ContentType == export.ContentMultimodalText
}

// codeLang prefers the declared language and falls back to the code tool's language
// when the code was sent to that tool.
func codeLang(msg *export.Message) string {
	lang := strings.ToLower(strings.TrimSpace(msg.Language))
	if markdown.IsPlaceholderLang(lang) && strings.EqualFold(strings.TrimSpace(msg.Recipient), CodeTool) {
		return CodeTool
	}
	return lang
}

// messageText joins the non-empty text parts of a message with normalized line endings.
func (c *Converter) messageText(msg *export.Message) string {
	var texts []string
	for _, p := range msg.Parts {
		switch {
		case p.IsText && strings.TrimSpace(p.Text) != "":
			texts = append(texts, p.Text)
		case !p.IsText && p.ContentType == export.PartImageAssetPointer && c.opts.ImagePlaceholder != "":
			texts = append(texts, c.opts.ImagePlaceholder)
		}
	}

	text := strings.Join(texts, "\n")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n\r", "\n")
	return strings.TrimSpace(text)
}
