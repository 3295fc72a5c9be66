package patch

import (
	"testing"

	"github.com/treediff-dev/treediff/pkg/editscript"
	"github.com/treediff-dev/treediff/pkg/match"
	"github.com/treediff-dev/treediff/pkg/tree"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		path tree.Path
		want targetKind
		attr string
	}{
		{"empty", tree.Path{}, targetOther, ""},
		{"text variant", tree.Path{tree.Field("body"), tree.Field("children"), tree.Index(0), tree.Variant("Text")}, targetText, ""},
		{"element variant", tree.Path{tree.Field("body"), tree.Field("children"), tree.Index(1), tree.Variant("Div")}, targetElement, ""},
		{"element index", tree.Path{tree.Field("body"), tree.Field("children"), tree.Index(2)}, targetElement, ""},
		{"attribute key", tree.Path{tree.Field("body"), tree.Field("attrs"), tree.Key("id")}, targetAttribute, "id"},
		{"attribute field", tree.Path{tree.Field("body"), tree.Field("attrs"), tree.Field("class")}, targetAttribute, "class"},
		{"children container", tree.Path{tree.Field("body"), tree.Field("children")}, targetChildren, ""},
		{"attrs container", tree.Path{tree.Field("body"), tree.Field("attrs")}, targetAttrs, ""},
		{"bare field", tree.Path{tree.Field("body")}, targetOther, ""},
		{"index not under children", tree.Path{tree.Field("items"), tree.Index(3)}, targetOther, ""},
	}
	for _, tc := range cases {
		kind, attr := classify(tc.path)
		if kind != tc.want || attr != tc.attr {
			t.Errorf("%s: classify(%s) = (%d, %q), want (%d, %q)", tc.name, tc.path, kind, attr, tc.want, tc.attr)
		}
	}
}

func TestProject(t *testing.T) {
	cases := []struct {
		path tree.Path
		want NodePath
	}{
		{tree.Path{tree.Field("body")}, NodePath{}},
		{tree.Path{tree.Field("body"), tree.Field("children"), tree.Index(2), tree.Variant("Div")}, NodePath{2}},
		{
			tree.Path{
				tree.Field("body"), tree.Field("children"), tree.Index(0), tree.Variant("Ul"),
				tree.Field("children"), tree.Index(3), tree.Variant("Li"),
			},
			NodePath{0, 3},
		},
		// An index outside a children container is type scaffolding,
		// not a sibling position.
		{tree.Path{tree.Field("variants"), tree.Index(1), tree.Field("children"), tree.Index(0)}, NodePath{0}},
	}
	for _, tc := range cases {
		if got := project(tc.path); !got.Equal(tc.want) {
			t.Errorf("project(%s) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestNodePath(t *testing.T) {
	p := NodePath{0, 2}
	if got := p.String(); got != "0.2" {
		t.Errorf("String() = %q, want %q", got, "0.2")
	}
	if got := (NodePath{}).String(); got != "root" {
		t.Errorf("empty String() = %q, want %q", got, "root")
	}
	child := p.Child(5)
	if !child.Equal(NodePath{0, 2, 5}) {
		t.Errorf("Child(5) = %v", child)
	}
	if !p.Equal(NodePath{0, 2}) {
		t.Errorf("Child must not modify the receiver, got %v", p)
	}
}

// elemPath builds the structural path of an element child.
func elemPath(parent tree.Path, pos int, tag string) tree.Path {
	return parent.With(tree.Field("children")).With(tree.Index(pos)).With(tree.Variant(tag))
}

// fakeResolver serves canned markup per node.
type fakeResolver map[tree.NodeID]string

func (r fakeResolver) Serialize(id tree.NodeID) string { return r[id] }

// pageTrees builds a matched A/B pair:
//
//	A: body > [div#box > text "old", p]
//	B: body > [div#box > text "new", p]
//
// with every node matched positionally.
func pageTrees(t *testing.T) (*tree.Tree, *tree.Tree, *match.Matching) {
	t.Helper()
	build := func(text string) *tree.Tree {
		root := tree.Path{tree.Field("body")}
		tr := tree.New(tree.NodeData{Kind: "body", Path: root})
		divPath := elemPath(root, 0, "Div")
		div := tr.AddChild(tr.Root(), tree.NodeData{
			Kind: "div", Properties: tree.AttrProps{"id": "box"}, Path: divPath,
		})
		tr.AddChild(div, tree.NodeData{
			Kind: "#text", Label: text,
			Path: divPath.With(tree.Field("children")).With(tree.Index(0)).With(tree.Variant("Text")),
		})
		tr.AddChild(tr.Root(), tree.NodeData{Kind: "p", Path: elemPath(root, 1, "P")})
		return tr
	}
	a, b := build("old"), build("new")
	m := match.NewMatching(a.Len(), b.Len())
	for i := 0; i < a.Len(); i++ {
		m.Add(tree.NodeID(i), tree.NodeID(i))
	}
	return a, b, m
}

func TestTranslateTextUpdate(t *testing.T) {
	a, b, m := pageTrees(t)
	ops := []editscript.Op{{Type: editscript.OpUpdate, NodeA: 2, NodeB: 2, OldLabel: "old", NewLabel: "new"}}

	patches := Translate(a, b, m, ops, nil)
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch, got %v", patches)
	}
	p := patches[0]
	if p.Op != SetText || !p.Path.Equal(NodePath{0, 0}) || p.Value != "new" {
		t.Errorf("got %v, want SetText(0.0 \"new\")", p)
	}
}

func TestTranslateUpdateOnInternalNodeSuppressed(t *testing.T) {
	a, b, m := pageTrees(t)
	// The div's subtree hash changed because its text did; only the
	// text op should surface.
	ops := []editscript.Op{
		{Type: editscript.OpUpdate, NodeA: 1, NodeB: 1},
		{Type: editscript.OpUpdate, NodeA: 2, NodeB: 2, NewLabel: "new"},
	}
	patches := Translate(a, b, m, ops, nil)
	if len(patches) != 1 || patches[0].Op != SetText {
		t.Errorf("expected only the SetText patch, got %v", patches)
	}
}

func TestTranslatePropertyUpdates(t *testing.T) {
	a, b, m := pageTrees(t)
	val := "wide"
	ops := []editscript.Op{
		{Type: editscript.OpUpdateProperty, NodeA: 1, NodeB: 1, Key: "class", NewValue: &val},
		{Type: editscript.OpUpdateProperty, NodeA: 1, NodeB: 1, Key: "id", OldValue: &val},
	}

	patches := Translate(a, b, m, ops, nil)
	if len(patches) != 2 {
		t.Fatalf("expected 2 patches, got %v", patches)
	}
	if p := patches[0]; p.Op != SetAttribute || p.Name != "class" || p.Value != "wide" || !p.Path.Equal(NodePath{0}) {
		t.Errorf("got %v, want SetAttribute(0 class=\"wide\")", p)
	}
	if p := patches[1]; p.Op != RemoveAttribute || p.Name != "id" || !p.Path.Equal(NodePath{0}) {
		t.Errorf("got %v, want RemoveAttribute(0 id)", p)
	}
}

func TestTranslateInsertElement(t *testing.T) {
	root := tree.Path{tree.Field("body")}
	a := tree.New(tree.NodeData{Kind: "body", Path: root})
	a.AddChild(a.Root(), tree.NodeData{Kind: "p", Path: elemPath(root, 0, "P")})

	b := tree.New(tree.NodeData{Kind: "body", Path: root})
	ul := b.AddChild(b.Root(), tree.NodeData{Kind: "ul", Path: elemPath(root, 0, "Ul")})
	ulChildren := b.Get(ul).Path
	b.AddChild(ul, tree.NodeData{Kind: "li", Path: elemPath(ulChildren, 0, "Li")})
	b.AddChild(b.Root(), tree.NodeData{Kind: "p", Path: elemPath(root, 1, "P")})

	m := match.NewMatching(a.Len(), b.Len())
	m.Add(0, 0)
	m.Add(1, 3)

	res := fakeResolver{ul: "<ul><li></li></ul>"}
	ops := []editscript.Op{
		{Type: editscript.OpInsert, NodeB: ul, ParentB: 0, Position: 0, Kind: "ul"},
		{Type: editscript.OpInsert, NodeB: 2, ParentB: ul, Position: 0, Kind: "li"},
	}

	patches := Translate(a, b, m, ops, res)
	if len(patches) != 1 {
		t.Fatalf("descendants of an inserted subtree must be suppressed, got %v", patches)
	}
	p := patches[0]
	if p.Op != InsertBefore || !p.Path.Equal(NodePath{0}) || p.Value != "<ul><li></li></ul>" {
		t.Errorf("got %v, want InsertBefore(0) with the serialized subtree", p)
	}
}

func TestTranslateInsertAtEndAppends(t *testing.T) {
	root := tree.Path{tree.Field("body")}
	a := tree.New(tree.NodeData{Kind: "body", Path: root})
	a.AddChild(a.Root(), tree.NodeData{Kind: "p", Path: elemPath(root, 0, "P")})

	b := tree.New(tree.NodeData{Kind: "body", Path: root})
	b.AddChild(b.Root(), tree.NodeData{Kind: "p", Path: elemPath(root, 0, "P")})
	hr := b.AddChild(b.Root(), tree.NodeData{Kind: "hr", Path: elemPath(root, 1, "Hr")})

	m := match.NewMatching(a.Len(), b.Len())
	m.Add(0, 0)
	m.Add(1, 1)

	ops := []editscript.Op{{Type: editscript.OpInsert, NodeB: hr, ParentB: 0, Position: 1, Kind: "hr"}}
	patches := Translate(a, b, m, ops, fakeResolver{hr: "<hr>"})
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch, got %v", patches)
	}
	if p := patches[0]; p.Op != AppendChild || !p.Path.Equal(NodePath{}) || p.Value != "<hr>" {
		t.Errorf("got %v, want AppendChild(root \"<hr>\")", p)
	}
}

// A matched node that ends up inside an unmatched B parent gets no Move
// op; its content ships with the inserted markup. The old copy must
// still be removed or it would appear twice.
func TestTranslateInsertIntoNewParentRemovesOldCopy(t *testing.T) {
	root := tree.Path{tree.Field("body")}

	// A: body > [div#a > [span > "move me"], div#b (empty)]
	a := tree.New(tree.NodeData{Kind: "body", Path: root})
	divAPath := elemPath(root, 0, "Div")
	divA := a.AddChild(a.Root(), tree.NodeData{Kind: "div", Properties: tree.AttrProps{"id": "a"}, Path: divAPath})
	spanA := a.AddChild(divA, tree.NodeData{Kind: "span", Path: elemPath(divAPath, 0, "Span")})
	a.AddChild(spanA, tree.NodeData{
		Kind: "#text", Label: "move me",
		Path: a.Get(spanA).Path.With(tree.Field("children")).With(tree.Index(0)).With(tree.Variant("Text")),
	})
	a.AddChild(a.Root(), tree.NodeData{Kind: "div", Properties: tree.AttrProps{"id": "b"}, Path: elemPath(root, 1, "Div")})

	// B: body > [div#a (empty), div#b > [span > "move me"]]
	b := tree.New(tree.NodeData{Kind: "body", Path: root})
	b.AddChild(b.Root(), tree.NodeData{Kind: "div", Properties: tree.AttrProps{"id": "a"}, Path: elemPath(root, 0, "Div")})
	divBPath := elemPath(root, 1, "Div")
	divB := b.AddChild(b.Root(), tree.NodeData{Kind: "div", Properties: tree.AttrProps{"id": "b"}, Path: divBPath})
	spanB := b.AddChild(divB, tree.NodeData{Kind: "span", Path: elemPath(divBPath, 0, "Span")})
	b.AddChild(spanB, tree.NodeData{
		Kind: "#text", Label: "move me",
		Path: b.Get(spanB).Path.With(tree.Field("children")).With(tree.Index(0)).With(tree.Variant("Text")),
	})

	// The empty div#b in A and the populated div#b in B stay unmatched.
	m := match.NewMatching(a.Len(), b.Len())
	m.Add(0, 0)
	m.Add(divA, 1)
	m.Add(spanA, spanB)
	m.Add(3, 4)

	ops := editscript.Generate(a, b, m)
	res := fakeResolver{divB: `<div id="b"><span>move me</span></div>`}
	patches := Translate(a, b, m, ops, res)

	if len(patches) != 3 {
		t.Fatalf("expected insert + 2 removals, got %v", patches)
	}
	if p := patches[0]; p.Op != AppendChild || !p.Path.Equal(NodePath{}) {
		t.Errorf("got %v, want AppendChild at root", p)
	}
	// The relocated span's old position, not its text child: removing
	// the span covers the subtree.
	if p := patches[1]; p.Op != Remove || !p.Path.Equal(NodePath{0, 0}) {
		t.Errorf("got %v, want Remove(0.0) for the relocated span", p)
	}
	// The unmatched empty div#b from A goes through the normal delete.
	if p := patches[2]; p.Op != Remove || !p.Path.Equal(NodePath{1}) {
		t.Errorf("got %v, want Remove(1) for the stale container", p)
	}
}

func TestTranslateDeleteElement(t *testing.T) {
	a, b, m := pageTrees(t)
	ops := []editscript.Op{{Type: editscript.OpDelete, NodeA: 3}}

	patches := Translate(a, b, m, ops, nil)
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch, got %v", patches)
	}
	if p := patches[0]; p.Op != Remove || !p.Path.Equal(NodePath{1}) {
		t.Errorf("got %v, want Remove(1)", p)
	}
}

func TestTranslateMoveElement(t *testing.T) {
	a, b, m := pageTrees(t)
	// The p element (a:3) ends up at index 0 in B; forge B's path.
	b.Get(3).Path = elemPath(tree.Path{tree.Field("body")}, 0, "P")

	ops := []editscript.Op{{Type: editscript.OpMove, NodeA: 3, NodeB: 3, NewParentB: 0, NewPosition: 0}}
	patches := Translate(a, b, m, ops, nil)
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch, got %v", patches)
	}
	p := patches[0]
	if p.Op != MoveNode || !p.Path.Equal(NodePath{1}) || !p.To.Equal(NodePath{0}) {
		t.Errorf("got %v, want MoveNode(1 → 0)", p)
	}
}

// attrTrees models attributes as child nodes under the element, the
// shape a document model without property maps produces.
func attrTrees(bValue string, bHasAttr bool) (*tree.Tree, *tree.Tree, *match.Matching, tree.NodeID) {
	root := tree.Path{tree.Field("body")}
	divPath := elemPath(root, 0, "Div")

	a := tree.New(tree.NodeData{Kind: "body", Path: root})
	divA := a.AddChild(a.Root(), tree.NodeData{Kind: "div", Path: divPath})
	attrA := a.AddChild(divA, tree.NodeData{
		Kind: "#attr", Label: "old",
		Path: divPath.With(tree.Field("attrs")).With(tree.Key("title")),
	})

	b := tree.New(tree.NodeData{Kind: "body", Path: root})
	divB := b.AddChild(b.Root(), tree.NodeData{Kind: "div", Path: divPath})
	if bHasAttr {
		b.AddChild(divB, tree.NodeData{
			Kind: "#attr", Label: bValue,
			Path: divPath.With(tree.Field("attrs")).With(tree.Key("title")),
		})
	}

	m := match.NewMatching(a.Len(), b.Len())
	m.Add(0, 0)
	m.Add(divA, divB)
	return a, b, m, attrA
}

func TestTranslateDeleteAttributeReresolvesFromB(t *testing.T) {
	// B still carries the attribute: the delete was a cross-match
	// artifact and must become a SetAttribute with B's value.
	a, b, m, attrA := attrTrees("current", true)
	ops := []editscript.Op{{Type: editscript.OpDelete, NodeA: attrA}}

	patches := Translate(a, b, m, ops, nil)
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch, got %v", patches)
	}
	p := patches[0]
	if p.Op != SetAttribute || p.Name != "title" || p.Value != "current" || !p.Path.Equal(NodePath{0}) {
		t.Errorf("got %v, want SetAttribute(0 title=\"current\")", p)
	}
}

func TestTranslateDeleteAttributeGoneInB(t *testing.T) {
	a, b, m, attrA := attrTrees("", false)
	ops := []editscript.Op{{Type: editscript.OpDelete, NodeA: attrA}}

	patches := Translate(a, b, m, ops, nil)
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch, got %v", patches)
	}
	if p := patches[0]; p.Op != RemoveAttribute || p.Name != "title" {
		t.Errorf("got %v, want RemoveAttribute(title)", p)
	}
}

func TestTranslateMoveOfAttrsContainerSuppressed(t *testing.T) {
	root := tree.Path{tree.Field("body")}
	divPath := elemPath(root, 0, "Div")
	containerPath := divPath.With(tree.Field("attrs"))

	a := tree.New(tree.NodeData{Kind: "body", Path: root})
	divA := a.AddChild(a.Root(), tree.NodeData{Kind: "div", Path: divPath})
	container := a.AddChild(divA, tree.NodeData{Kind: "#attrs", Path: containerPath})

	b := tree.New(tree.NodeData{Kind: "body", Path: root})
	divB := b.AddChild(b.Root(), tree.NodeData{Kind: "div", Path: divPath})
	containerB := b.AddChild(divB, tree.NodeData{Kind: "#attrs", Path: containerPath})

	m := match.NewMatching(a.Len(), b.Len())
	m.Add(0, 0)
	m.Add(divA, divB)
	m.Add(container, containerB)

	ops := []editscript.Op{{Type: editscript.OpMove, NodeA: container, NodeB: containerB, NewParentB: divB, NewPosition: 1}}
	if patches := Translate(a, b, m, ops, nil); len(patches) != 0 {
		t.Errorf("attrs container moves must be suppressed, got %v", patches)
	}
}

func TestTranslateChildrenContainerDelete(t *testing.T) {
	root := tree.Path{tree.Field("body")}
	divPath := elemPath(root, 0, "Div")
	containerPath := divPath.With(tree.Field("children"))

	a := tree.New(tree.NodeData{Kind: "body", Path: root})
	divA := a.AddChild(a.Root(), tree.NodeData{Kind: "div", Path: divPath})
	container := a.AddChild(divA, tree.NodeData{Kind: "#children", Path: containerPath})

	b := tree.New(tree.NodeData{Kind: "body", Path: root})
	divB := b.AddChild(b.Root(), tree.NodeData{Kind: "div", Path: divPath})
	span := b.AddChild(divB, tree.NodeData{Kind: "span", Path: elemPath(divPath, 0, "Span")})

	m := match.NewMatching(a.Len(), b.Len())
	m.Add(0, 0)
	m.Add(divA, divB)

	ops := []editscript.Op{{Type: editscript.OpDelete, NodeA: container}}
	patches := Translate(a, b, m, ops, fakeResolver{span: "<span></span>"})
	if len(patches) != 1 {
		t.Fatalf("expected 1 patch, got %v", patches)
	}
	p := patches[0]
	if p.Op != ReplaceInnerHTML || !p.Path.Equal(NodePath{0}) || p.Value != "<span></span>" {
		t.Errorf("got %v, want ReplaceInnerHTML(0) with B's children", p)
	}
}

func TestTranslateUnclassifiablePathDropsOp(t *testing.T) {
	a, b, m := pageTrees(t)
	// A node with no recorded structural path cannot be addressed.
	a.Get(3).Path = nil
	ops := []editscript.Op{{Type: editscript.OpDelete, NodeA: 3}}
	if patches := Translate(a, b, m, ops, nil); len(patches) != 0 {
		t.Errorf("expected zero patches for an unclassifiable path, got %v", patches)
	}
}
