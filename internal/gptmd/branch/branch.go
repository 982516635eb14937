// Package branch reconstructs the linear path through a conversation graph.
package branch

import "github.com/longkey1/gptmd/internal/gptmd/export"

// Resolve walks parent pointers from leafID up to the root and returns the node IDs
// root first. The walk stops at the first node whose parent is empty or missing from
// the graph. A missing or empty leafID yields an empty branch.
func Resolve(graph map[string]*export.Node, leafID string) []string {
	var ids []string
	visited := make(map[string]bool)
	currentID := leafID

	for currentID != "" {
		node, ok := graph[currentID]
		if !ok || node == nil {
			break
		}
		// A malformed graph could loop; stop at the first repeat.
		if visited[currentID] {
			break
		}
		visited[currentID] = true
		ids = append(ids, currentID)

		if _, ok := graph[node.Parent]; node.Parent == "" || !ok {
			break
		}
		currentID = node.Parent
	}

	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}
