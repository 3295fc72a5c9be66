package match

import (
	"github.com/treediff-dev/treediff/pkg/tree"
)

// Config tunes the matching algorithm.
type Config struct {
	// MinHeight is the minimum subtree height for top-down matching.
	// Shorter subtrees are left to the bottom-up phase. 0 lets single
	// leaves participate in exact matching.
	MinHeight int

	// SimilarityThreshold is the minimum Dice coefficient for the
	// bottom-up phase to accept a candidate pair.
	SimilarityThreshold float64
}

// DefaultConfig returns the GumTree defaults.
func DefaultConfig() Config {
	return Config{
		MinHeight:           1,
		SimilarityThreshold: 0.5,
	}
}

// Compute matches the nodes of treeA (the old document) against treeB
// (the new one). It never modifies either tree.
func Compute(treeA, treeB *tree.Tree, cfg Config) *Matching {
	m := NewMatching(treeA.Len(), treeB.Len())

	heightsA := treeA.Heights()

	topDown(treeA, treeB, m, cfg, heightsA)
	bottomUp(treeA, treeB, m, cfg)

	// Roots always correspond: the downstream script generator has no
	// way to express a root insertion or deletion.
	if !m.ContainsA(treeA.Root()) && !m.ContainsB(treeB.Root()) {
		m.Add(treeA.Root(), treeB.Root())
	}

	return m
}

// topDown greedily matches identical subtrees by content hash, tallest
// candidates first.  Matching a subtree claims all of its descendants,
// so a nested copy inside an already-matched subtree is never matched
// separately.
func topDown(treeA, treeB *tree.Tree, m *Matching, cfg Config, heightsA []int) {
	// Hash index over all of B.
	byHash := make(map[tree.NodeHash][]tree.NodeID)
	for id := range treeB.Walk() {
		h := treeB.Get(id).Hash
		byHash[h] = append(byHash[h], id)
	}

	candidates := [][2]tree.NodeID{{treeA.Root(), treeB.Root()}}

	for len(candidates) > 0 {
		// Pop the candidate with the tallest A-side subtree.
		best := 0
		for i := 1; i < len(candidates); i++ {
			if heightsA[candidates[i][0]] > heightsA[candidates[best][0]] {
				best = i
			}
		}
		aID, bID := candidates[best][0], candidates[best][1]
		candidates[best] = candidates[len(candidates)-1]
		candidates = candidates[:len(candidates)-1]

		if m.ContainsA(aID) || m.ContainsB(bID) {
			continue
		}
		if heightsA[aID] < cfg.MinHeight {
			continue
		}

		aData := treeA.Get(aID)
		bData := treeB.Get(bID)

		if aData.Hash == bData.Hash && aData.Kind == bData.Kind {
			matchSubtrees(treeA, treeB, aID, bID, m)
			continue
		}

		// Hashes differ: descend, seeding new candidates from hash hits
		// anywhere in B plus same-kind children of the current pair.
		for _, aChild := range treeA.Children(aID) {
			childHash := treeA.Get(aChild).Hash
			for _, bCandidate := range byHash[childHash] {
				if !m.ContainsB(bCandidate) {
					candidates = append(candidates, [2]tree.NodeID{aChild, bCandidate})
				}
			}
			for _, bChild := range treeB.Children(bID) {
				if m.ContainsB(bChild) {
					continue
				}
				if treeA.Get(aChild).Kind == treeB.Get(bChild).Kind {
					candidates = append(candidates, [2]tree.NodeID{aChild, bChild})
				}
			}
		}
	}
}

// matchSubtrees pairs two hash-equal subtrees node by node. Children
// are zipped positionally; equal hashes guarantee equal shape.
func matchSubtrees(treeA, treeB *tree.Tree, aID, bID tree.NodeID, m *Matching) {
	m.Add(aID, bID)
	aChildren := treeA.Children(aID)
	bChildren := treeB.Children(bID)
	for i := 0; i < len(aChildren) && i < len(bChildren); i++ {
		matchSubtrees(treeA, treeB, aChildren[i], bChildren[i], m)
	}
}

type leafKey struct {
	kind string
	hash tree.NodeHash
}

// bottomUp matches the leftovers. A is processed in post-order so child
// matches propagate upward before their parents are scored. Leaves are
// matched by exact (kind, hash); internal nodes by Dice coefficient
// over matched descendants.
func bottomUp(treeA, treeB *tree.Tree, m *Matching, cfg Config) {
	// Index unmatched B nodes: by kind for internal nodes, by
	// (kind, hash) for leaves. Walk order keeps document order for the
	// final tie-break.
	byKind := make(map[string][]tree.NodeID)
	byLeaf := make(map[leafKey][]tree.NodeID)
	for id := range treeB.Walk() {
		if m.ContainsB(id) {
			continue
		}
		data := treeB.Get(id)
		byKind[data.Kind] = append(byKind[data.Kind], id)
		if treeB.ChildCount(id) == 0 {
			byLeaf[leafKey{data.Kind, data.Hash}] = append(byLeaf[leafKey{data.Kind, data.Hash}], id)
		}
	}

	descA := descendantSets(treeA)
	descB := descendantSets(treeB)

	for aID := range treeA.PostOrder() {
		if m.ContainsA(aID) {
			continue
		}
		aData := treeA.Get(aID)

		if treeA.ChildCount(aID) == 0 {
			matchLeaf(treeA, treeB, aID, byLeaf[leafKey{aData.Kind, aData.Hash}], m)
			continue
		}

		var best tree.NodeID = tree.Invalid
		var bestScore, bestProps float64
		bestPosEqual := false
		aPos := treeA.Position(aID)

		for _, bID := range byKind[aData.Kind] {
			if m.ContainsB(bID) || treeB.ChildCount(bID) == 0 {
				continue
			}

			score := dice(aID, bID, m, descA, descB)
			if score < cfg.SimilarityThreshold {
				continue
			}
			props := aData.Properties.Similarity(treeB.Get(bID).Properties)
			posEqual := treeB.Position(bID) == aPos

			// Tie-break: Dice, then property similarity, then equal
			// sibling position, then earliest document order.
			better := score > bestScore ||
				(score == bestScore && props > bestProps) ||
				(score == bestScore && props == bestProps && posEqual && !bestPosEqual)
			if best == tree.Invalid || better {
				best, bestScore, bestProps, bestPosEqual = bID, score, props, posEqual
			}
		}

		if best != tree.Invalid {
			m.Add(aID, best)
		}
	}
}

// matchLeaf takes the best unmatched candidate among hash-equal leaves:
// equal sibling position wins, otherwise the earliest in document order.
func matchLeaf(treeA, treeB *tree.Tree, aID tree.NodeID, candidates []tree.NodeID, m *Matching) {
	aPos := treeA.Position(aID)
	var first tree.NodeID = tree.Invalid
	for _, bID := range candidates {
		if m.ContainsB(bID) {
			continue
		}
		if first == tree.Invalid {
			first = bID
		}
		if treeB.Position(bID) == aPos {
			m.Add(aID, bID)
			return
		}
	}
	if first != tree.Invalid {
		m.Add(aID, first)
	}
}

// descendantSets precomputes the subtree membership set of every node,
// indexed by NodeID. The sets include the node itself.
func descendantSets(t *tree.Tree) []map[tree.NodeID]struct{} {
	sets := make([]map[tree.NodeID]struct{}, t.Len())
	for id := range t.Walk() {
		set := make(map[tree.NodeID]struct{})
		for d := range t.Descendants(id) {
			set[d] = struct{}{}
		}
		sets[id] = set
	}
	return sets
}

// dice computes 2·|matched common descendants| / (|desc A| + |desc B|).
func dice(aID, bID tree.NodeID, m *Matching, descA, descB []map[tree.NodeID]struct{}) float64 {
	da := descA[aID]
	db := descB[bID]

	common := 0
	for a := range da {
		if b := m.GetB(a); b != tree.Invalid {
			if _, ok := db[b]; ok {
				common++
			}
		}
	}

	if len(da) == 0 && len(db) == 0 {
		return 1
	}
	return 2 * float64(common) / float64(len(da)+len(db))
}
