// Package tree provides the arena-backed ordered labeled tree that the
// diff pipeline operates on.
//
// A Tree owns all node data in a flat arena; nodes are addressed by
// NodeID (the arena index), which stays stable for the lifetime of the
// tree. Each node carries a Merkle-style content hash, a kind tag, an
// optional label for leaf values, and a Properties set of key-value
// pairs that are diffed field-by-field rather than as child nodes.
//
// Trees are built once by a document model (see pkg/htmltree) and are
// read-only inputs to matching, edit script generation, and patch
// translation.
package tree
