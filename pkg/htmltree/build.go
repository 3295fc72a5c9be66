package htmltree

import (
	"encoding/binary"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/net/html"

	"github.com/treediff-dev/treediff/pkg/tree"
)

// ErrNoBody is returned when a document contains no <body> element.
var ErrNoBody = errors.New("htmltree: document has no <body>")

// Build parses an HTML document and converts its <body> into a labeled
// tree suitable for matching and diffing.
func Build(r io.Reader) (*tree.Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	body := findBody(doc)
	if body == nil {
		return nil, ErrNoBody
	}
	return BuildBody(body), nil
}

// BuildString is Build over an in-memory document.
func BuildString(s string) (*tree.Tree, error) {
	return Build(strings.NewReader(s))
}

// BuildBody converts a parsed <body> element into a tree. Whitespace-only
// text and comments are dropped; every node gets a structural path and a
// Merkle-style content hash over its kind, label, attributes and children.
func BuildBody(body *html.Node) *tree.Tree {
	rootPath := tree.Path{tree.Field("body")}
	t := tree.New(tree.NodeData{
		Kind:       "body",
		Properties: attrProps(body),
		Path:       rootPath,
	})
	addChildren(t, t.Root(), body, rootPath)
	fillHashes(t)
	return t
}

// FindBody returns the <body> element of a parsed document, or nil.
func FindBody(doc *html.Node) *html.Node {
	return findBody(doc)
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

func addChildren(t *tree.Tree, parent tree.NodeID, n *html.Node, parentPath tree.Path) {
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
			path := childPath(parentPath, i, "Text")
			t.AddChild(parent, tree.NodeData{Kind: "#text", Label: c.Data, Path: path})
			i++
		case html.ElementNode:
			path := childPath(parentPath, i, c.Data)
			id := t.AddChild(parent, tree.NodeData{
				Kind:       c.Data,
				Properties: attrProps(c),
				Path:       path,
			})
			addChildren(t, id, c, path)
			i++
		}
	}
}

func childPath(parent tree.Path, pos int, variant string) tree.Path {
	return parent.
		With(tree.Field("children")).
		With(tree.Index(pos)).
		With(tree.Variant(variant))
}

func attrProps(n *html.Node) tree.Properties {
	if len(n.Attr) == 0 {
		return tree.NoProps{}
	}
	props := make(tree.AttrProps, len(n.Attr))
	for _, a := range n.Attr {
		props[a.Key] = a.Val
	}
	return props
}

// fillHashes computes every node's content hash in one post-order pass.
// Attributes are hashed in sorted key order so the digest does not
// depend on source ordering.
func fillHashes(t *tree.Tree) {
	hashes := make([]uint64, t.Len())
	for id := range t.PostOrder() {
		d := xxhash.New()
		data := t.Get(id)
		d.WriteString(data.Kind)
		d.Write([]byte{0})
		d.WriteString(data.Label)
		d.Write([]byte{0})
		if props, ok := data.Properties.(tree.AttrProps); ok {
			keys := make([]string, 0, len(props))
			for k := range props {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				d.WriteString(k)
				d.Write([]byte{'='})
				d.WriteString(props[k])
				d.Write([]byte{0})
			}
		}
		var buf [8]byte
		for _, c := range t.Children(id) {
			binary.LittleEndian.PutUint64(buf[:], hashes[c])
			d.Write(buf[:])
		}
		hashes[id] = d.Sum64()
		data.Hash = tree.NodeHash(hashes[id])
	}
}
