package export

import (
	"errors"
	"strconv"

	"github.com/tidwall/gjson"
)

var (
	// ErrInvalidJSON is returned when the export is not well-formed JSON.
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrNotConversation is returned when the JSON holds neither a conversation nor a list of them.
	ErrNotConversation = errors.New("no conversation found in export")
)

// Parse decodes an export. It accepts a single conversation object or the array written
// to conversations.json by a full account export.
//
// Field access is tolerant: a missing, null or wrongly typed field yields its zero value
// instead of failing the whole document.
func Parse(data []byte) ([]Conversation, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	root := gjson.ParseBytes(data)
	var convs []Conversation
	switch {
	case root.IsArray():
		root.ForEach(func(_, value gjson.Result) bool {
			if isConversation(value) {
				convs = append(convs, parseConversation(value))
			}
			return true
		})
	case isConversation(root):
		convs = append(convs, parseConversation(root))
	}

	if len(convs) == 0 {
		return nil, ErrNotConversation
	}
	return convs, nil
}

func isConversation(r gjson.Result) bool {
	return r.IsObject() && r.Get("mapping").IsObject()
}

func parseConversation(r gjson.Result) Conversation {
	id := stringOf(r.Get("conversation_id"))
	if id == "" {
		id = stringOf(r.Get("id"))
	}

	conv := Conversation{
		ID:          id,
		Title:       stringOf(r.Get("title")),
		CreateTime:  timeOf(r.Get("create_time")),
		UpdateTime:  timeOf(r.Get("update_time")),
		CurrentNode: stringOf(r.Get("current_node")),
		Mapping:     make(map[string]*Node),
	}

	// Node IDs are iterated rather than used as gjson paths, since a key may contain
	// path metacharacters.
	r.Get("mapping").ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			return true
		}
		node := &Node{
			ID:      key.String(),
			Parent:  stringOf(value.Get("parent")),
			Message: parseMessage(value.Get("message")),
		}
		conv.Mapping[node.ID] = node
		return true
	})

	return conv
}

func parseMessage(r gjson.Result) *Message {
	if !r.IsObject() {
		return nil
	}

	content := r.Get("content")
	msg := &Message{
		ID:          stringOf(r.Get("id")),
		Role:        Role(stringOf(r.Get("author.role"))),
		AuthorName:  stringOf(r.Get("author.name")),
		ContentType: stringOf(content.Get("content_type")),
		CreateTime:  timeOf(r.Get("create_time")),
		Recipient:   stringOf(r.Get("recipient")),
		Text:        stringOf(content.Get("text")),
		Language:    stringOf(content.Get("language")),
		Content:     stringOf(content.Get("content")),
	}

	if md, ok := r.Get("metadata").Value().(map[string]any); ok {
		msg.Metadata = md
	}

	// ForEach visits a scalar once, so only arrays are walked.
	if parts := content.Get("parts"); parts.IsArray() {
		parts.ForEach(func(_, value gjson.Result) bool {
			switch {
			case value.Type == gjson.String:
				msg.Parts = append(msg.Parts, Part{IsText: true, Text: value.Str})
			case value.IsObject():
				msg.Parts = append(msg.Parts, Part{ContentType: stringOf(value.Get("content_type"))})
			default:
				msg.Parts = append(msg.Parts, Part{})
			}
			return true
		})
	}

	if thoughts := content.Get("thoughts"); thoughts.IsArray() {
		thoughts.ForEach(func(_, value gjson.Result) bool {
			if value.IsObject() {
				msg.Thoughts = append(msg.Thoughts, Thought{
					Summary: stringOf(value.Get("summary")),
					Content: stringOf(value.Get("content")),
				})
			}
			return true
		})
	}

	return msg
}

// stringOf returns the value of a JSON string, and "" for every other type.
func stringOf(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}

// timeOf reads a Unix timestamp given as a JSON number or a numeric string.
func timeOf(r gjson.Result) *float64 {
	switch r.Type {
	case gjson.Number:
		v := r.Num
		return &v
	case gjson.String:
		v, err := strconv.ParseFloat(r.Str, 64)
		if err != nil {
			return nil
		}
		return &v
	default:
		return nil
	}
}
