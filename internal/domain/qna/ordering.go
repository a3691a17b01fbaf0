package qna

import (
	"slices"
)

// Relationship describes how two replies of the same Qna relate in the tree
type Relationship string

const (
	RelationSame       Relationship = "SAME"
	RelationParent     Relationship = "PARENT"     // a is the parent of b
	RelationChild      Relationship = "CHILD"      // a is a child of b
	RelationAncestor   Relationship = "ANCESTOR"   // a is above b, more than one level
	RelationDescendant Relationship = "DESCENDANT" // a is below b, more than one level
	RelationSibling    Relationship = "SIBLING"
	RelationUnrelated  Relationship = "UNRELATED"
)

// Relation derives the relationship of a to b from their paths alone
func Relation(a, b Path) Relationship {
	switch {
	case a == b:
		return RelationSame
	case b.IsChildOf(a):
		return RelationParent
	case a.IsChildOf(b):
		return RelationChild
	case b.IsDescendantOf(a):
		return RelationAncestor
	case a.IsDescendantOf(b):
		return RelationDescendant
	}
	pa, okA := a.Parent()
	pb, okB := b.Parent()
	if okA == okB && pa == pb && a.Depth() == b.Depth() {
		return RelationSibling
	}
	return RelationUnrelated
}

// SortByPath orders replies in place by path, which is the depth-first
// preorder of the reply tree. Ties keep their relative order.
func SortByPath(replies []*QnaReply) {
	slices.SortStableFunc(replies, func(a, b *QnaReply) int {
		return ComparePaths(a.Path, b.Path)
	})
}

// ThreadEntry is one reply in a flattened thread
type ThreadEntry struct {
	Reply      *QnaReply
	Depth      int
	ParentPath Path
}

// BuildThread flattens replies into preorder with per-entry depth and
// parent path. The input is not modified.
func BuildThread(replies []*QnaReply) []ThreadEntry {
	sorted := slices.Clone(replies)
	SortByPath(sorted)

	entries := make([]ThreadEntry, 0, len(sorted))
	for _, r := range sorted {
		parent, _ := r.Path.Parent()
		entries = append(entries, ThreadEntry{
			Reply:      r,
			Depth:      r.Path.Depth(),
			ParentPath: parent,
		})
	}
	return entries
}
