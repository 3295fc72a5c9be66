package editscript

import (
	"github.com/treediff-dev/treediff/pkg/match"
	"github.com/treediff-dev/treediff/pkg/tree"
)

// Generate produces the ordered edit script transforming tree A into
// tree B under the given matching. It is total: every node is accounted
// for, matched pairs by Update/UpdateProperty/Move and unmatched nodes
// by Insert or Delete.
func Generate(treeA, treeB *tree.Tree, m *match.Matching) []Op {
	var ops []Op

	// Phase 1: UPDATE. The hash is the equality oracle; the document
	// model decides what it covers, not this package.
	for _, pair := range m.Pairs() {
		aData := treeA.Get(pair[0])
		bData := treeB.Get(pair[1])
		if aData.Hash != bData.Hash {
			ops = append(ops, Op{
				Type:     OpUpdate,
				NodeA:    pair[0],
				NodeB:    pair[1],
				OldLabel: aData.Label,
				NewLabel: bData.Label,
			})
		}
	}

	// Phase 2: UPDATE-PROPERTY. Property maps are diffed per key,
	// independently of the hash comparison above.
	for _, pair := range m.Pairs() {
		aData := treeA.Get(pair[0])
		bData := treeB.Get(pair[1])
		for _, change := range aData.Properties.Diff(bData.Properties) {
			ops = append(ops, Op{
				Type:     OpUpdateProperty,
				NodeA:    pair[0],
				NodeB:    pair[1],
				Key:      change.Key,
				OldValue: change.OldValue,
				NewValue: change.NewValue,
			})
		}
	}

	// Phase 3: INSERT. Tree B's breadth-first order guarantees parents
	// are inserted before their children. Root insertion is unsupported;
	// roots always correspond.
	for bID := range treeB.Walk() {
		if m.ContainsB(bID) {
			continue
		}
		parentB := treeB.Parent(bID)
		if parentB == tree.Invalid {
			// Roots always correspond; an unmatched root would mean the
			// matcher was bypassed. No sensible insert exists for it.
			continue
		}
		bData := treeB.Get(bID)
		ops = append(ops, Op{
			Type:     OpInsert,
			NodeB:    bID,
			ParentB:  parentB,
			Position: treeB.Position(bID),
			Kind:     bData.Kind,
			Label:    bData.Label,
		})
	}

	// Phase 4: MOVE. A matched node moves when its parents no longer
	// correspond or its sibling position changed. Positions are B's
	// final indices; a consumer must tolerate that rather than expect
	// incremental shifts.
	for _, pair := range m.Pairs() {
		aID, bID := pair[0], pair[1]
		parentA := treeA.Parent(aID)
		parentB := treeB.Parent(bID)
		if parentA == tree.Invalid || parentB == tree.Invalid {
			continue
		}

		// A move into an unmatched parent means the destination is part
		// of a freshly inserted subtree; the content arrives with the
		// Insert, so a Move would be both redundant and unaddressable.
		// The stale source copy is removed during patch translation.
		if !m.ContainsB(parentB) {
			continue
		}

		parentChanged := m.GetB(parentA) != parentB
		positionChanged := treeA.Position(aID) != treeB.Position(bID)

		if parentChanged || positionChanged {
			ops = append(ops, Op{
				Type:        OpMove,
				NodeA:       aID,
				NodeB:       bID,
				NewParentB:  parentB,
				NewPosition: treeB.Position(bID),
			})
		}
	}

	// Phase 5: DELETE. Post-order, so descendants go before ancestors.
	for aID := range treeA.PostOrder() {
		if !m.ContainsA(aID) {
			ops = append(ops, Op{Type: OpDelete, NodeA: aID})
		}
	}

	return ops
}
