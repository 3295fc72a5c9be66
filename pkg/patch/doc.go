// Package patch turns abstract edit scripts into concrete patches for
// a live document.
//
// Edit ops address nodes in two coordinate spaces at once: the old tree
// for the live document and the new tree for content lookup. A Patch
// collapses that into a single sibling-index NodePath plus a literal
// value, which is all an apply step needs. The translator resolves
// every ambiguity against tree B, the new document, since any value the
// matcher recorded may stem from a cross-match.
package patch
