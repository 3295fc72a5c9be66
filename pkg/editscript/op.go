package editscript

import (
	"fmt"

	"github.com/treediff-dev/treediff/pkg/tree"
)

// OpType discriminates edit operations.
type OpType uint8

const (
	// OpUpdate replaces a matched node's content wholesale.
	OpUpdate OpType = iota
	// OpUpdateProperty changes a single property key on a matched node.
	OpUpdateProperty
	// OpInsert adds a node that exists only in tree B.
	OpInsert
	// OpMove relocates a matched node to a new parent or position.
	OpMove
	// OpDelete removes a node that exists only in tree A.
	OpDelete
)

// String returns the operation name.
func (t OpType) String() string {
	switch t {
	case OpUpdate:
		return "Update"
	case OpUpdateProperty:
		return "UpdateProperty"
	case OpInsert:
		return "Insert"
	case OpMove:
		return "Move"
	case OpDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// Op is one edit operation. Node references deliberately keep both
// coordinate spaces: NodeA addresses the old tree (and therefore the
// live document the script will be replayed against), NodeB addresses
// the new tree for value lookup. Collapsing the two is what causes
// cross-matching artifacts downstream, so they stay separate.
type Op struct {
	Type OpType

	// NodeA is the node in tree A (Update, UpdateProperty, Move,
	// Delete).
	NodeA tree.NodeID
	// NodeB is the corresponding node in tree B (Update,
	// UpdateProperty, Insert, Move).
	NodeB tree.NodeID

	// OldLabel and NewLabel carry both sides of an Update.
	OldLabel string
	NewLabel string

	// Key, OldValue and NewValue describe an UpdateProperty. A nil
	// OldValue means the key was added, a nil NewValue that it was
	// removed.
	Key      string
	OldValue *string
	NewValue *string

	// ParentB and Position place an Insert; Position is the final
	// sibling index in tree B, never an intermediate one.
	ParentB  tree.NodeID
	Position int

	// Kind and Label describe the inserted node.
	Kind  string
	Label string

	// NewParentB and NewPosition place a Move; NewPosition is the
	// final index in tree B.
	NewParentB  tree.NodeID
	NewPosition int
}

// String renders the op in a compact human-readable form.
func (op Op) String() string {
	switch op.Type {
	case OpUpdate:
		return fmt.Sprintf("Update(a:%d → b:%d)", op.NodeA, op.NodeB)
	case OpUpdateProperty:
		switch {
		case op.OldValue == nil && op.NewValue != nil:
			return fmt.Sprintf("UpdateProp(a:%d %s: + %q)", op.NodeA, op.Key, *op.NewValue)
		case op.OldValue != nil && op.NewValue == nil:
			return fmt.Sprintf("UpdateProp(a:%d %s: - %q)", op.NodeA, op.Key, *op.OldValue)
		case op.OldValue != nil && op.NewValue != nil:
			return fmt.Sprintf("UpdateProp(a:%d %s: %q → %q)", op.NodeA, op.Key, *op.OldValue, *op.NewValue)
		default:
			return fmt.Sprintf("UpdateProp(a:%d %s)", op.NodeA, op.Key)
		}
	case OpInsert:
		return fmt.Sprintf("Insert(b:%d %s @%d under b:%d)", op.NodeB, op.Kind, op.Position, op.ParentB)
	case OpMove:
		return fmt.Sprintf("Move(a:%d → b:%d @%d under b:%d)", op.NodeA, op.NodeB, op.NewPosition, op.NewParentB)
	case OpDelete:
		return fmt.Sprintf("Delete(a:%d)", op.NodeA)
	default:
		return "Unknown"
	}
}
