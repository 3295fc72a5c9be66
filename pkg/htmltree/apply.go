package htmltree

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/treediff-dev/treediff/pkg/patch"
)

// Apply replays translated patches against a live document rooted at
// body (the element a Build-produced tree describes).
//
// Patch paths address the document as it was when the diff ran, while
// move and insert positions are final destination indices. Target nodes
// are therefore resolved against the untouched document before anything
// mutates; the actual mutations then run in patch order. A patch whose
// path does not resolve is skipped, matching the best-effort contract
// of the translator.
func Apply(body *html.Node, patches []patch.Patch) error {
	type resolved struct {
		p      patch.Patch
		node   *html.Node // primary target
		parent *html.Node // insertion parent
		ref    *html.Node // insertion reference sibling, nil appends
	}

	targets := make([]resolved, 0, len(patches))
	for _, p := range patches {
		r := resolved{p: p}
		switch p.Op {
		case patch.InsertBefore, patch.InsertAfter:
			if len(p.Path) == 0 {
				continue
			}
			r.parent = navigate(body, p.Path[:len(p.Path)-1])
			if r.parent == nil {
				continue
			}
			r.ref = childAt(r.parent, p.Path[len(p.Path)-1])
		case patch.AppendChild, patch.ReplaceInnerHTML:
			r.parent = navigate(body, p.Path)
			if r.parent == nil {
				continue
			}
		default:
			r.node = navigate(body, p.Path)
			if r.node == nil {
				continue
			}
		}
		targets = append(targets, r)
	}

	for _, r := range targets {
		if err := applyOne(body, r.p, r.node, r.parent, r.ref); err != nil {
			return fmt.Errorf("apply %s: %w", r.p, err)
		}
	}
	return nil
}

func applyOne(body *html.Node, p patch.Patch, node, parent, ref *html.Node) error {
	switch p.Op {
	case patch.Replace:
		if node.Parent == nil {
			return fmt.Errorf("cannot replace detached node")
		}
		nodes, err := parseFragment(p.Value, node.Parent)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			node.Parent.InsertBefore(n, node)
		}
		node.Parent.RemoveChild(node)

	case patch.ReplaceInnerHTML:
		for parent.FirstChild != nil {
			parent.RemoveChild(parent.FirstChild)
		}
		nodes, err := parseFragment(p.Value, parent)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			parent.AppendChild(n)
		}

	case patch.InsertBefore:
		nodes, err := parseFragment(p.Value, parent)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			insertBefore(parent, n, ref)
		}

	case patch.InsertAfter:
		nodes, err := parseFragment(p.Value, parent)
		if err != nil {
			return err
		}
		after := ref
		for _, n := range nodes {
			if after == nil {
				parent.AppendChild(n)
			} else {
				insertBefore(parent, n, after.NextSibling)
			}
			after = n
		}

	case patch.AppendChild:
		nodes, err := parseFragment(p.Value, parent)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			parent.AppendChild(n)
		}

	case patch.Remove:
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}

	case patch.SetText:
		if node.Type != html.TextNode {
			return fmt.Errorf("target is not a text node")
		}
		node.Data = p.Value

	case patch.SetAttribute:
		if node.Type != html.ElementNode {
			return fmt.Errorf("target is not an element")
		}
		setAttr(node, p.Name, p.Value)

	case patch.RemoveAttribute:
		if node.Type != html.ElementNode {
			return fmt.Errorf("target is not an element")
		}
		removeAttr(node, p.Name)

	case patch.MoveNode:
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
		if len(p.To) == 0 {
			return fmt.Errorf("move destination is the root")
		}
		dstParent := navigate(body, p.To[:len(p.To)-1])
		if dstParent == nil {
			return fmt.Errorf("move destination %s not found", p.To)
		}
		insertBefore(dstParent, node, childAt(dstParent, p.To[len(p.To)-1]))

	default:
		return fmt.Errorf("unknown patch op %d", p.Op)
	}
	return nil
}

// navigate walks sibling indices from body. A nil result means the path
// does not resolve.
func navigate(body *html.Node, path patch.NodePath) *html.Node {
	current := body
	for _, idx := range path {
		current = childAt(current, idx)
		if current == nil {
			return nil
		}
	}
	return current
}

// childAt returns the Nth significant child: elements and non-blank
// text, the same set Build keeps.
func childAt(parent *html.Node, index int) *html.Node {
	count := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if !significant(c) {
			continue
		}
		if count == index {
			return c
		}
		count++
	}
	return nil
}

func significant(n *html.Node) bool {
	switch n.Type {
	case html.ElementNode:
		return true
	case html.TextNode:
		return strings.TrimSpace(n.Data) != ""
	}
	return false
}

func insertBefore(parent, child, ref *html.Node) {
	if ref != nil {
		parent.InsertBefore(child, ref)
	} else {
		parent.AppendChild(child)
	}
}

// parseFragment parses markup in the context of its future parent, so
// context-sensitive content (<tr>, <li>, ...) parses the way a browser
// would.
func parseFragment(markup string, context *html.Node) ([]*html.Node, error) {
	if markup == "" {
		return nil, nil
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	return nodes, nil
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}
