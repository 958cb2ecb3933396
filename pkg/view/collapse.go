package view

import (
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// CollapseSet tracks which node ids are currently collapsed. It holds
// ids only, never node data, so it survives rebuilds of the visible
// graph unchanged. A new document always starts with an empty set.
type CollapseSet struct {
	ids map[string]bool
}

// NewCollapseSet creates an empty collapse set
func NewCollapseSet() *CollapseSet {
	return &CollapseSet{ids: make(map[string]bool)}
}

// Toggle flips a node's collapsed state and returns true if the node
// is collapsed afterwards
func (c *CollapseSet) Toggle(id string) bool {
	if c.ids[id] {
		delete(c.ids, id)
		return false
	}
	c.ids[id] = true
	return true
}

// Contains returns true if the node is collapsed
func (c *CollapseSet) Contains(id string) bool {
	return c.ids[id]
}

// Len returns the number of collapsed nodes
func (c *CollapseSet) Len() int {
	return len(c.ids)
}

// Reset empties the set
func (c *CollapseSet) Reset() {
	c.ids = make(map[string]bool)
}

// IDs returns the collapsed ids in sorted order
func (c *CollapseSet) IDs() []string {
	ids := make([]string, 0, len(c.ids))
	for id := range c.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a copy of the set for the graph builder. The copy
// keeps an in-flight layout's input stable while the user keeps
// toggling.
func (c *CollapseSet) Snapshot() map[string]bool {
	snapshot := make(map[string]bool, len(c.ids))
	for id := range c.ids {
		snapshot[id] = true
	}
	return snapshot
}

// Fingerprint hashes a document identity and a collapse snapshot into
// a cache key. Ids are sorted first so insertion order cannot change
// the key.
func Fingerprint(loadID uuid.UUID, collapsed map[string]bool) string {
	ids := make([]string, 0, len(collapsed))
	for id := range collapsed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	hash := sha256.New()
	hash.Write([]byte(loadID.String()))
	for _, id := range ids {
		hash.Write([]byte{0})
		hash.Write([]byte(id))
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}
