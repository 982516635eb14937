// Package export models a ChatGPT conversation export.
// A conversation is a parent-pointer graph of nodes keyed by node ID, plus the ID of the
// node the user was looking at when the export was taken ("current node").
package export

import (
	"math"
	"time"
)

// Role is the author role of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// Content types carried in content.content_type.
const (
	ContentText            = "text"
	ContentMultimodalText  = "multimodal_text"
	ContentThoughts        = "thoughts"
	ContentReasoningRecap  = "reasoning_recap"
	ContentCode            = "code"
	ContentExecutionOutput = "execution_output"
)

// PartImageAssetPointer is the content_type of an uploaded image part.
const PartImageAssetPointer = "image_asset_pointer"

// Conversation is one exported conversation.
type Conversation struct {
	ID          string
	Title       string
	CreateTime  *float64
	UpdateTime  *float64
	CurrentNode string
	Mapping     map[string]*Node
}

// Node is one vertex of the conversation graph. Parent is empty for the root.
type Node struct {
	ID      string
	Parent  string
	Message *Message
}

// Message is the payload of a node. Fields absent from the export are left at their zero value.
type Message struct {
	ID          string
	Role        Role
	AuthorName  string
	ContentType string
	CreateTime  *float64
	Recipient   string
	Metadata    map[string]any

	// Parts holds content.parts for text and multimodal_text messages.
	Parts []Part
	// Thoughts holds content.thoughts for thoughts messages.
	Thoughts []Thought
	// Text holds content.text for code and execution_output messages.
	Text string
	// Language holds content.language for code messages.
	Language string
	// Content holds content.content for reasoning_recap messages.
	Content string
}

// Part is one element of content.parts. Plain string parts have IsText set;
// object parts keep only their content_type.
type Part struct {
	IsText      bool
	Text        string
	ContentType string
}

// Thought is one entry of a thoughts message.
type Thought struct {
	Summary string
	Content string
}

// ReasoningTitle returns metadata.reasoning_title, or "" when absent.
func (m *Message) ReasoningTitle() string {
	return m.metadataString("reasoning_title")
}

// ModelSlug returns metadata.model_slug, or "" when absent.
func (m *Message) ModelSlug() string {
	return m.metadataString("model_slug")
}

func (m *Message) metadataString(key string) string {
	if m == nil || m.Metadata == nil {
		return ""
	}
	s, _ := m.Metadata[key].(string)
	return s
}

// GetShortID returns the shortened conversation ID (first 8 characters)
func (c *Conversation) GetShortID() string {
	if len(c.ID) >= 8 {
		return c.ID[:8]
	}
	return c.ID
}

// GetDisplayTitle returns the title, or the short ID when the conversation is untitled.
func (c *Conversation) GetDisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.GetShortID()
}

// UpdatedAt returns the last update time, falling back to the creation time.
func (c *Conversation) UpdatedAt() time.Time {
	if t, ok := ToTime(c.UpdateTime); ok {
		return t
	}
	t, _ := ToTime(c.CreateTime)
	return t
}

// CreatedAt returns the creation time, or the zero time when unknown.
func (c *Conversation) CreatedAt() time.Time {
	t, _ := ToTime(c.CreateTime)
	return t
}

// ToTime converts a fractional Unix timestamp. It reports false for nil, NaN and infinite values.
func ToTime(ts *float64) (time.Time, bool) {
	if ts == nil || math.IsNaN(*ts) || math.IsInf(*ts, 0) {
		return time.Time{}, false
	}
	sec, frac := math.Modf(*ts)
	return time.Unix(int64(sec), int64(frac*1e9)), true
}
