package tree

import (
	"fmt"
	"strings"
)

// SegmentKind discriminates the variants of a structural path segment.
type SegmentKind uint8

const (
	// SegField names a field inside a struct-like value ("body",
	// "children", "attrs").
	SegField SegmentKind = iota
	// SegIndex is a position inside a list.
	SegIndex
	// SegVariant selects an enum-like alternative ("Text").
	SegVariant
	// SegKey is a key inside a map (attribute name).
	SegKey
)

// Segment is one step of a structural path.
type Segment struct {
	Kind  SegmentKind
	Name  string // for SegField, SegVariant, SegKey
	Index int    // for SegIndex
}

// Field returns a field segment.
func Field(name string) Segment { return Segment{Kind: SegField, Name: name} }

// Index returns a list index segment.
func Index(i int) Segment { return Segment{Kind: SegIndex, Index: i} }

// Variant returns a variant segment.
func Variant(name string) Segment { return Segment{Kind: SegVariant, Name: name} }

// Key returns a map key segment.
func Key(k string) Segment { return Segment{Kind: SegKey, Name: k} }

// Path describes where a value lives inside the structural shape of a
// document: a sequence of field, index, variant and key steps from the
// root. It is distinct from a live-document sibling-index path; the
// patch translator projects one onto the other.
type Path []Segment

// With returns a new path with seg appended. The receiver is not
// modified; builders share prefixes safely.
func (p Path) With(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// String renders the path in a compact dotted form, e.g.
// "body.children[1]::Text" or "body.children[0].attrs[\"id\"]".
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		switch seg.Kind {
		case SegField:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.Name)
		case SegIndex:
			fmt.Fprintf(&b, "[%d]", seg.Index)
		case SegVariant:
			b.WriteString("::")
			b.WriteString(seg.Name)
		case SegKey:
			fmt.Fprintf(&b, "[%q]", seg.Name)
		}
	}
	return b.String()
}
