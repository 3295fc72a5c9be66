package tree

import (
	"fmt"
	"iter"
)

// NodeID identifies a node within its tree's arena. IDs are assigned
// sequentially starting at 0 (the root) and never change.
type NodeID int

// Invalid is the zero-value-adjacent sentinel for "no node".
const Invalid NodeID = -1

// NodeHash is a structural hash of a node and all its descendants
// (Merkle-tree style). Two nodes with the same hash are treated as
// structurally identical; collision handling is out of scope.
type NodeHash uint64

// String formats the hash as a fixed-width hex literal.
func (h NodeHash) String() string {
	return fmt.Sprintf("%#016x", uint64(h))
}

// NodeData is the payload stored for each tree node.
type NodeData struct {
	// Hash is the content digest of this node and its subtree.
	Hash NodeHash

	// Kind is the node's type tag (e.g. "div", "#text"). Only nodes of
	// the same kind can be matched.
	Kind string

	// Label holds the value for leaf nodes (text content). Internal
	// nodes leave it empty.
	Label string

	// Properties are key-value pairs attached to the node. Unlike
	// children they are diffed per key when two nodes match, which
	// avoids cross-matching identical values across different keys.
	Properties Properties

	// Path is the structural path from the document root to this node,
	// recorded by the tree builder. The diff algorithms never interpret
	// it; the patch translator uses it to derive live-document paths.
	Path Path
}

type node struct {
	data     NodeData
	parent   NodeID
	children []NodeID
}

// Tree is an ordered labeled tree with flat arena storage. The root is
// always node 0.
type Tree struct {
	nodes []node
}

// New creates a tree containing only a root node.
func New(rootData NodeData) *Tree {
	if rootData.Properties == nil {
		rootData.Properties = NoProps{}
	}
	return &Tree{nodes: []node{{data: rootData, parent: Invalid}}}
}

// Root returns the root node's ID.
func (t *Tree) Root() NodeID { return 0 }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// AddChild appends a new node under parent and returns its ID.
func (t *Tree) AddChild(parent NodeID, data NodeData) NodeID {
	if data.Properties == nil {
		data.Properties = NoProps{}
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{data: data, parent: parent})
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// Get returns the data for a node. The returned pointer stays valid as
// long as no further nodes are added.
func (t *Tree) Get(id NodeID) *NodeData {
	return &t.nodes[id].data
}

// Parent returns the parent of a node, or Invalid for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].parent
}

// Children returns the ordered child IDs of a node. The slice is owned
// by the tree; callers must not modify it.
func (t *Tree) Children(id NodeID) []NodeID {
	return t.nodes[id].children
}

// ChildCount returns the number of children of a node.
func (t *Tree) ChildCount(id NodeID) int {
	return len(t.nodes[id].children)
}

// Position returns the zero-based index of a node among its siblings.
// The root is at position 0.
func (t *Tree) Position(id NodeID) int {
	parent := t.nodes[id].parent
	if parent == Invalid {
		return 0
	}
	for i, c := range t.nodes[parent].children {
		if c == id {
			return i
		}
	}
	return 0
}

// Height returns the distance from a node to its furthest leaf. Leaves
// have height 0.
func (t *Tree) Height(id NodeID) int {
	max := -1
	for _, c := range t.nodes[id].children {
		if h := t.Height(c); h > max {
			max = h
		}
	}
	return max + 1
}

// Heights computes the height of every node in one post-order pass.
// The result is indexed by NodeID.
func (t *Tree) Heights() []int {
	heights := make([]int, len(t.nodes))
	for id := range t.PostOrder() {
		h := 0
		for _, c := range t.nodes[id].children {
			if heights[c]+1 > h {
				h = heights[c] + 1
			}
		}
		heights[id] = h
	}
	return heights
}

// Walk iterates all nodes in breadth-first order (parents before
// children, siblings left to right). The sequence is lazy, finite and
// restartable.
func (t *Tree) Walk() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		queue := []NodeID{t.Root()}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			if !yield(id) {
				return
			}
			queue = append(queue, t.nodes[id].children...)
		}
	}
}

// PostOrder iterates all nodes with children before parents, which is
// the order bottom-up matching and deletions require.
func (t *Tree) PostOrder() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		type frame struct {
			id      NodeID
			visited bool
		}
		stack := []frame{{id: t.Root()}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if f.visited {
				if !yield(f.id) {
					return
				}
				continue
			}
			stack = append(stack, frame{id: f.id, visited: true})
			children := t.nodes[f.id].children
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, frame{id: children[i]})
			}
		}
	}
}

// Descendants iterates a node's subtree in pre-order, including the
// node itself.
func (t *Tree) Descendants(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		stack := []NodeID{id}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(n) {
				return
			}
			children := t.nodes[n].children
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
		}
	}
}
