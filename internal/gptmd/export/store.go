package export

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// AmbiguousIDError is returned when multiple conversations match a prefix
type AmbiguousIDError struct {
	Prefix  string
	Matches []Conversation
}

func (e *AmbiguousIDError) Error() string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Ambiguous conversation ID %q. Multiple matches found:", e.Prefix))
	for _, match := range e.Matches {
		lines = append(lines, fmt.Sprintf("- %s (%s, %s)",
			match.GetShortID(),
			match.CreatedAt().Format("2006-01-02"),
			match.GetDisplayTitle()))
	}
	lines = append(lines, "")
	lines = append(lines, "Please use a longer prefix or run 'gptmd list'.")
	return strings.Join(lines, "\n")
}

// LoadFile reads and parses an export file.
// Read failures are returned as-is so callers can tell them apart from parse failures.
func LoadFile(path string) ([]Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	convs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse export file %s: %w", path, err)
	}
	return convs, nil
}

// SortNewestFirst orders conversations by update time (newest first).
func SortNewestFirst(convs []Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].UpdatedAt().After(convs[j].UpdatedAt())
	})
}

// FindConversation selects a conversation by full ID, ID prefix (minimum 4 characters)
// or "latest" for the most recently updated one.
// Returns AmbiguousIDError if multiple conversations match the prefix.
func FindConversation(convs []Conversation, ref string) (*Conversation, error) {
	if len(convs) == 0 {
		return nil, fmt.Errorf("export contains no conversations")
	}

	if ref == "latest" {
		sorted := make([]Conversation, len(convs))
		copy(sorted, convs)
		SortNewestFirst(sorted)
		return &sorted[0], nil
	}

	// A full UUID must match exactly
	if _, err := uuid.Parse(ref); err == nil {
		for i := range convs {
			if strings.EqualFold(convs[i].ID, ref) {
				return &convs[i], nil
			}
		}
		return nil, fmt.Errorf("conversation not found: %s\n\nRun 'gptmd list' to see available conversations.", ref)
	}

	if len(ref) < 4 {
		return nil, fmt.Errorf("conversation ID prefix must be at least 4 characters (got %d)", len(ref))
	}

	var matches []Conversation
	for _, conv := range convs {
		if strings.HasPrefix(conv.ID, ref) {
			matches = append(matches, conv)
		}
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("conversation not found: %s\n\nRun 'gptmd list' to see available conversations.", ref)
	}

	if len(matches) > 1 {
		return nil, &AmbiguousIDError{
			Prefix:  ref,
			Matches: matches,
		}
	}

	return &matches[0], nil
}
