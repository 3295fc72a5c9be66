package patch

import (
	"sort"
	"strings"

	"github.com/treediff-dev/treediff/pkg/editscript"
	"github.com/treediff-dev/treediff/pkg/match"
	"github.com/treediff-dev/treediff/pkg/tree"
)

// Container field names the translator recognizes in structural paths.
const (
	childrenField = "children"
	attrsField    = "attrs"
)

// Resolver gives the translator access to the document model behind
// tree B. Inserted subtrees are serialized through it; the diff
// algorithms themselves never render markup.
type Resolver interface {
	// Serialize renders the subtree rooted at a tree B node to markup
	// suitable for the Value field of an insertion patch.
	Serialize(id tree.NodeID) string
}

// targetKind classifies what a structural path's tail points at.
type targetKind uint8

const (
	targetOther targetKind = iota
	targetText
	targetAttribute
	targetElement
	targetChildren
	targetAttrs
)

// classify inspects the final one or two segments of a structural path.
// attrName is set for targetAttribute.
func classify(p tree.Path) (kind targetKind, attrName string) {
	n := len(p)
	if n == 0 {
		return targetOther, ""
	}
	last := p[n-1]
	switch last.Kind {
	case tree.SegVariant:
		if last.Name == "Text" {
			return targetText, ""
		}
		return targetElement, ""
	case tree.SegKey:
		if n >= 2 && p[n-2].Kind == tree.SegField && p[n-2].Name == attrsField {
			return targetAttribute, last.Name
		}
	case tree.SegField:
		switch last.Name {
		case childrenField:
			return targetChildren, ""
		case attrsField:
			return targetAttrs, ""
		}
		if n >= 2 && p[n-2].Kind == tree.SegField && p[n-2].Name == attrsField {
			return targetAttribute, last.Name
		}
	case tree.SegIndex:
		if n >= 2 && p[n-2].Kind == tree.SegField && p[n-2].Name == childrenField {
			return targetElement, ""
		}
	}
	return targetOther, ""
}

// project derives the live-document path from a structural path: only
// index segments under a recognized child container count as sibling
// indices, all other scaffolding is discarded.
func project(p tree.Path) NodePath {
	out := NodePath{}
	for i, seg := range p {
		if seg.Kind != tree.SegIndex {
			continue
		}
		if i > 0 && p[i-1].Kind == tree.SegField && p[i-1].Name == childrenField {
			out = append(out, seg.Index)
		}
	}
	return out
}

// Translate rewrites an edit script into concrete patches addressed by
// live sibling-index paths. Tree B is the ground truth for ambiguous
// cases: inserted content and re-resolved attribute values are always
// read from it, never from the ops alone. Translation is best-effort;
// an op whose path cannot be classified produces zero patches rather
// than failing the batch.
func Translate(treeA, treeB *tree.Tree, m *match.Matching, ops []editscript.Op, res Resolver) []Patch {
	tr := &translator{a: treeA, b: treeB, m: m, res: res, inserted: make(map[tree.NodeID]bool)}
	var patches []Patch
	for _, op := range ops {
		patches = append(patches, tr.translate(op)...)
	}
	return patches
}

type translator struct {
	a, b *tree.Tree
	m    *match.Matching
	res  Resolver

	// inserted tracks B nodes already covered by a serialized subtree
	// insertion, so their descendants are not inserted twice.
	inserted map[tree.NodeID]bool
}

func (t *translator) translate(op editscript.Op) []Patch {
	switch op.Type {
	case editscript.OpUpdate:
		return t.update(op)
	case editscript.OpUpdateProperty:
		return t.updateProperty(op)
	case editscript.OpInsert:
		return t.insert(op)
	case editscript.OpMove:
		return t.move(op)
	case editscript.OpDelete:
		return t.delete(op)
	}
	return nil
}

func (t *translator) serialize(id tree.NodeID) string {
	if t.res == nil {
		return ""
	}
	return t.res.Serialize(id)
}

// serializeChildren renders all children of a B node, concatenated.
func (t *translator) serializeChildren(id tree.NodeID) string {
	var b strings.Builder
	for _, c := range t.b.Children(id) {
		b.WriteString(t.serialize(c))
	}
	return b.String()
}

func (t *translator) update(op editscript.Op) []Patch {
	path := t.a.Get(op.NodeA).Path
	switch kind, attr := classify(path); kind {
	case targetText:
		return []Patch{{Op: SetText, Path: project(path), Value: op.NewLabel}}
	case targetAttribute:
		return []Patch{{Op: SetAttribute, Path: project(path), Name: attr, Value: op.NewLabel}}
	}
	// An internal node's hash changes whenever any descendant does; the
	// detail ops carry the actual effects.
	return nil
}

func (t *translator) updateProperty(op editscript.Op) []Patch {
	elemPath := project(t.a.Get(op.NodeA).Path)
	if op.NewValue != nil {
		return []Patch{{Op: SetAttribute, Path: elemPath, Name: op.Key, Value: *op.NewValue}}
	}
	return []Patch{{Op: RemoveAttribute, Path: elemPath, Name: op.Key}}
}

func (t *translator) insert(op editscript.Op) []Patch {
	if t.inserted[op.ParentB] {
		// Covered by an ancestor's serialized markup.
		t.inserted[op.NodeB] = true
		return nil
	}

	path := t.b.Get(op.NodeB).Path
	kind, attr := classify(path)
	switch kind {
	case targetElement, targetText:
		t.inserted[op.NodeB] = true
		markup := t.serialize(op.NodeB)
		// The parent is addressed in live coordinates: inserts apply
		// before any moves, so the document still has A's shape.
		parentPath := t.livePath(op.ParentB)
		var patches []Patch
		if op.Position >= t.b.ChildCount(op.ParentB)-1 {
			patches = []Patch{{Op: AppendChild, Path: parentPath, Value: markup}}
		} else {
			patches = []Patch{{Op: InsertBefore, Path: parentPath.Child(op.Position), Value: markup}}
		}
		return append(patches, t.displaced(op.NodeB)...)

	case targetAttribute:
		// The value comes from tree B, not from whatever the matcher
		// recorded on the op.
		return []Patch{{Op: SetAttribute, Path: t.liveElementPath(op.ParentB), Name: attr, Value: t.b.Get(op.NodeB).Label}}

	case targetAttrs:
		// Container-level insert: synchronize every attribute B has.
		t.inserted[op.NodeB] = true
		elemPath := t.livePath(op.ParentB)
		attrs := attributesOf(t.b, op.ParentB)
		patches := make([]Patch, 0, len(attrs))
		for _, kv := range attrs {
			patches = append(patches, Patch{Op: SetAttribute, Path: elemPath, Name: kv[0], Value: kv[1]})
		}
		return patches

	case targetChildren:
		// Container-level insert: rebuild the whole child list at once.
		t.inserted[op.NodeB] = true
		patches := []Patch{{Op: ReplaceInnerHTML, Path: t.livePath(op.ParentB), Value: t.serializeChildren(op.NodeB)}}
		return append(patches, t.displaced(op.NodeB)...)
	}
	return nil
}

// displaced emits Remove patches for the A-side counterparts of matched
// nodes inside a serialized insertion. A matched node whose new parent
// is unmatched gets no Move and no Delete: its content arrives with the
// inserted markup, so the old copy must be removed here or the document
// would carry it twice.
func (t *translator) displaced(bRoot tree.NodeID) []Patch {
	var patches []Patch
	removed := make(map[tree.NodeID]bool)
	for d := range t.b.Descendants(bRoot) {
		a := t.m.GetA(d)
		if a == tree.Invalid {
			continue
		}
		if kind, _ := classify(t.a.Get(a).Path); kind != targetElement && kind != targetText {
			continue
		}
		if t.removalCovered(a, removed) {
			continue
		}
		removed[a] = true
		patches = append(patches, Patch{Op: Remove, Path: project(t.a.Get(a).Path)})
	}
	return patches
}

// removalCovered reports whether an A node disappears without an extra
// Remove: an ancestor is already in the removal set, or an ancestor is
// unmatched and gets its own Delete op.
func (t *translator) removalCovered(a tree.NodeID, removed map[tree.NodeID]bool) bool {
	for p := t.a.Parent(a); p != tree.Invalid; p = t.a.Parent(p) {
		if removed[p] || !t.m.ContainsA(p) {
			return true
		}
	}
	return false
}

// livePath returns the live-document path of a tree B node: the
// projected path of its A-side counterpart when it has one, its own
// projected path otherwise.
func (t *translator) livePath(bID tree.NodeID) NodePath {
	if a := t.m.GetA(bID); a != tree.Invalid {
		return project(t.a.Get(a).Path)
	}
	return project(t.b.Get(bID).Path)
}

// liveElementPath is livePath for the element owning an attribute,
// stepping over an attrs container when one sits in between.
func (t *translator) liveElementPath(bID tree.NodeID) NodePath {
	if kind, _ := classify(t.b.Get(bID).Path); kind == targetAttrs {
		if parent := t.b.Parent(bID); parent != tree.Invalid {
			return t.livePath(parent)
		}
	}
	return t.livePath(bID)
}

func (t *translator) delete(op editscript.Op) []Patch {
	path := t.a.Get(op.NodeA).Path
	kind, attr := classify(path)
	switch kind {
	case targetElement, targetText:
		return []Patch{{Op: Remove, Path: project(path)}}

	case targetAttribute:
		// A deleted attribute node does not always mean the attribute is
		// gone: the matcher may have cross-matched its value elsewhere.
		// Tree B decides.
		elemB := t.counterpartElement(op.NodeA)
		if elemB != tree.Invalid {
			if val, ok := lookupAttribute(t.b, elemB, attr); ok {
				return []Patch{{Op: SetAttribute, Path: project(path), Name: attr, Value: val}}
			}
		}
		return []Patch{{Op: RemoveAttribute, Path: project(path), Name: attr}}

	case targetAttrs:
		// Container-level delete: make the live attributes match B's.
		elemPath := project(path)
		elemB := t.counterpartElement(op.NodeA)
		var patches []Patch
		bKeys := make(map[string]bool)
		if elemB != tree.Invalid {
			for _, kv := range attributesOf(t.b, elemB) {
				bKeys[kv[0]] = true
				patches = append(patches, Patch{Op: SetAttribute, Path: elemPath, Name: kv[0], Value: kv[1]})
			}
		}
		elemA := t.a.Parent(op.NodeA)
		if elemA != tree.Invalid {
			for _, kv := range attributesOf(t.a, elemA) {
				if !bKeys[kv[0]] {
					patches = append(patches, Patch{Op: RemoveAttribute, Path: elemPath, Name: kv[0]})
				}
			}
		}
		return patches

	case targetChildren:
		elemB := t.counterpartElement(op.NodeA)
		if elemB == tree.Invalid {
			// Coordinates cannot be resolved; clearing is the safe
			// degradation.
			return []Patch{{Op: ReplaceInnerHTML, Path: project(path), Value: ""}}
		}
		return []Patch{{Op: ReplaceInnerHTML, Path: project(path), Value: t.serializeChildren(elemB)}}
	}
	return nil
}

func (t *translator) move(op editscript.Op) []Patch {
	pathA := t.a.Get(op.NodeA).Path
	pathB := t.b.Get(op.NodeB).Path
	kind, attrA := classify(pathA)
	switch kind {
	case targetElement, targetText:
		return []Patch{{Op: MoveNode, Path: project(pathA), To: project(pathB)}}

	case targetAttribute:
		// The matcher matched one attribute's value into a different
		// slot. The correct effect is whatever B specifies for the
		// destination slot.
		if kindB, attrB := classify(pathB); kindB == targetAttribute {
			return []Patch{{Op: SetAttribute, Path: project(pathB), Name: attrB, Value: t.b.Get(op.NodeB).Label}}
		}
		return []Patch{{Op: RemoveAttribute, Path: project(pathA), Name: attrA}}

	case targetAttrs:
		// Fully captured by the per-attribute ops around it.
		return nil
	}
	return nil
}

// counterpartElement finds the tree B element owning a tree A attribute
// or container node, via the matching. Returns Invalid when the owner
// is unmatched.
func (t *translator) counterpartElement(aID tree.NodeID) tree.NodeID {
	elemA := t.a.Parent(aID)
	if elemA == tree.Invalid {
		return tree.Invalid
	}
	// Attribute nodes may sit under an attrs container rather than
	// directly under the element.
	if kind, _ := classify(t.a.Get(elemA).Path); kind == targetAttrs {
		elemA = t.a.Parent(elemA)
		if elemA == tree.Invalid {
			return tree.Invalid
		}
	}
	return t.m.GetB(elemA)
}

// lookupAttribute reads an element's current attribute value, checking
// its property map first and its attribute child nodes second.
func lookupAttribute(tr *tree.Tree, elem tree.NodeID, name string) (string, bool) {
	if props, ok := tr.Get(elem).Properties.(tree.AttrProps); ok {
		if v, present := props[name]; present {
			return v, true
		}
	}
	for _, kv := range attrNodes(tr, elem) {
		if kv[0] == name {
			return kv[1], true
		}
	}
	return "", false
}

// attributesOf collects all attributes of an element in sorted key
// order, merging its property map with attribute child nodes.
func attributesOf(tr *tree.Tree, elem tree.NodeID) [][2]string {
	merged := make(map[string]string)
	if props, ok := tr.Get(elem).Properties.(tree.AttrProps); ok {
		for k, v := range props {
			merged[k] = v
		}
	}
	for _, kv := range attrNodes(tr, elem) {
		merged[kv[0]] = kv[1]
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, merged[k]})
	}
	return out
}

// attrNodes lists the attribute child nodes of an element, whether they
// sit directly under it or under an attrs container child.
func attrNodes(tr *tree.Tree, elem tree.NodeID) [][2]string {
	var out [][2]string
	var collect func(id tree.NodeID)
	collect = func(id tree.NodeID) {
		for _, c := range tr.Children(id) {
			data := tr.Get(c)
			kind, attr := classify(data.Path)
			switch kind {
			case targetAttribute:
				out = append(out, [2]string{attr, data.Label})
			case targetAttrs:
				collect(c)
			}
		}
	}
	collect(elem)
	return out
}
