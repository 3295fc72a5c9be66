// Package match computes a correspondence between the nodes of two
// trees using the GumTree algorithm (Falleri et al., ICSE 2014).
//
// Matching runs in two phases. The top-down phase greedily matches
// whole subtrees whose content hashes are equal, largest first, so a
// nested identical subtree is never matched twice. The bottom-up phase
// then matches the remaining nodes heuristically: leaves by exact
// (kind, hash) equality, internal nodes by the Dice coefficient over
// already-matched descendants.
//
// Both phases are total: every node either gains a partner or stays
// unmatched, and unmatched nodes become Insert/Delete operations
// downstream. No error paths exist.
package match
