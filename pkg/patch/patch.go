package patch

import (
	"fmt"
	"strconv"
	"strings"
)

// NodePath addresses a node in a live document by zero-based sibling
// indices from the document root. An empty path is the root itself.
type NodePath []int

// String renders the path as dot-separated indices, "root" when empty.
func (p NodePath) String() string {
	if len(p) == 0 {
		return "root"
	}
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

// Child returns a copy of the path extended by one index.
func (p NodePath) Child(idx int) NodePath {
	out := make(NodePath, len(p), len(p)+1)
	copy(out, p)
	return append(out, idx)
}

// Equal reports whether two paths address the same node.
func (p NodePath) Equal(other NodePath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Op is the type of patch operation.
type Op uint8

const (
	Replace          Op = 0x01 // Replace a node with new markup
	ReplaceInnerHTML Op = 0x02 // Replace a node's entire child list
	InsertBefore     Op = 0x03 // Insert markup before the addressed node
	InsertAfter      Op = 0x04 // Insert markup after the addressed node
	AppendChild      Op = 0x05 // Append markup as the last child
	Remove           Op = 0x06 // Remove the addressed node
	SetText          Op = 0x07 // Set a text node's content
	SetAttribute     Op = 0x08 // Set/update an attribute
	RemoveAttribute  Op = 0x09 // Remove an attribute
	MoveNode         Op = 0x0A // Move a node to a new position
)

// String returns the string representation of the Op.
func (op Op) String() string {
	switch op {
	case Replace:
		return "Replace"
	case ReplaceInnerHTML:
		return "ReplaceInnerHTML"
	case InsertBefore:
		return "InsertBefore"
	case InsertAfter:
		return "InsertAfter"
	case AppendChild:
		return "AppendChild"
	case Remove:
		return "Remove"
	case SetText:
		return "SetText"
	case SetAttribute:
		return "SetAttribute"
	case RemoveAttribute:
		return "RemoveAttribute"
	case MoveNode:
		return "MoveNode"
	default:
		return "Unknown"
	}
}

// Patch is a single concrete operation against a live document. Patches
// must be applied strictly in order; paths always refer to the document
// state produced by the preceding patches.
type Patch struct {
	Op    Op       `json:"op"`              // Operation type
	Path  NodePath `json:"path"`            // Target node
	To    NodePath `json:"to,omitempty"`    // Destination (MoveNode)
	Name  string   `json:"name,omitempty"`  // Attribute name
	Value string   `json:"value,omitempty"` // Text, attribute value, or markup
}

// String renders the patch in a compact form for logs.
func (p Patch) String() string {
	switch p.Op {
	case SetAttribute:
		return fmt.Sprintf("%s(%s %s=%q)", p.Op, p.Path, p.Name, p.Value)
	case RemoveAttribute:
		return fmt.Sprintf("%s(%s %s)", p.Op, p.Path, p.Name)
	case MoveNode:
		return fmt.Sprintf("%s(%s → %s)", p.Op, p.Path, p.To)
	case Remove:
		return fmt.Sprintf("%s(%s)", p.Op, p.Path)
	case SetText:
		return fmt.Sprintf("%s(%s %q)", p.Op, p.Path, p.Value)
	default:
		return fmt.Sprintf("%s(%s %d bytes)", p.Op, p.Path, len(p.Value))
	}
}
