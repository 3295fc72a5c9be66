package htmltree

import (
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/treediff-dev/treediff/pkg/tree"
)

// Serialize renders the subtree rooted at id back to markup. Attributes
// come out in sorted key order; text content is escaped by the renderer.
func Serialize(t *tree.Tree, id tree.NodeID) string {
	var b strings.Builder
	_ = html.Render(&b, toHTMLNode(t, id)) // strings.Builder never errors
	return b.String()
}

// SerializeChildren renders all children of a node, concatenated. This
// is the innerHTML of the node.
func SerializeChildren(t *tree.Tree, id tree.NodeID) string {
	var b strings.Builder
	for _, c := range t.Children(id) {
		_ = html.Render(&b, toHTMLNode(t, c)) // strings.Builder never errors
	}
	return b.String()
}

func toHTMLNode(t *tree.Tree, id tree.NodeID) *html.Node {
	data := t.Get(id)
	if data.Kind == "#text" {
		return &html.Node{Type: html.TextNode, Data: data.Label}
	}
	n := &html.Node{Type: html.ElementNode, Data: data.Kind}
	if props, ok := data.Properties.(tree.AttrProps); ok {
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			n.Attr = append(n.Attr, html.Attribute{Key: k, Val: props[k]})
		}
	}
	for _, c := range t.Children(id) {
		n.AppendChild(toHTMLNode(t, c))
	}
	return n
}

// Resolver adapts a built tree to the patch translator. The tree must
// be the B side of the diff.
type Resolver struct {
	t *tree.Tree
}

// NewResolver returns a Resolver over a built tree.
func NewResolver(t *tree.Tree) *Resolver {
	return &Resolver{t: t}
}

// Serialize implements patch.Resolver.
func (r *Resolver) Serialize(id tree.NodeID) string {
	return Serialize(r.t, id)
}
