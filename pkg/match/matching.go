package match

import "github.com/treediff-dev/treediff/pkg/tree"

// Matching is a partial bijection between the nodes of two trees. Each
// node appears in at most one pair. Lookups are O(1) in both
// directions; Pairs preserves insertion order so downstream phases are
// deterministic.
type Matching struct {
	aToB  []tree.NodeID
	bToA  []tree.NodeID
	pairs [][2]tree.NodeID
}

// NewMatching creates an empty matching sized for trees with the given
// node counts.
func NewMatching(lenA, lenB int) *Matching {
	m := &Matching{
		aToB: make([]tree.NodeID, lenA),
		bToA: make([]tree.NodeID, lenB),
	}
	for i := range m.aToB {
		m.aToB[i] = tree.Invalid
	}
	for i := range m.bToA {
		m.bToA[i] = tree.Invalid
	}
	return m
}

// Add records a pair. Adding a node that is already matched on either
// side is a programming error; the bijection is never overwritten.
func (m *Matching) Add(a, b tree.NodeID) {
	if m.aToB[a] != tree.Invalid || m.bToA[b] != tree.Invalid {
		return
	}
	m.aToB[a] = b
	m.bToA[b] = a
	m.pairs = append(m.pairs, [2]tree.NodeID{a, b})
}

// ContainsA reports whether a node of tree A is matched.
func (m *Matching) ContainsA(a tree.NodeID) bool { return m.aToB[a] != tree.Invalid }

// ContainsB reports whether a node of tree B is matched.
func (m *Matching) ContainsB(b tree.NodeID) bool { return m.bToA[b] != tree.Invalid }

// GetB returns the partner of a node of tree A, or Invalid.
func (m *Matching) GetB(a tree.NodeID) tree.NodeID { return m.aToB[a] }

// GetA returns the partner of a node of tree B, or Invalid.
func (m *Matching) GetA(b tree.NodeID) tree.NodeID { return m.bToA[b] }

// Pairs returns all matched pairs in the order they were added. The
// slice is owned by the matching; callers must not modify it.
func (m *Matching) Pairs() [][2]tree.NodeID { return m.pairs }

// Len returns the number of matched pairs.
func (m *Matching) Len() int { return len(m.pairs) }
