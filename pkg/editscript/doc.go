// Package editscript turns a node matching into an ordered edit script
// in the style of Chawathe et al., "Change Detection in Hierarchically
// Structured Information" (SIGMOD 1996).
//
// The script phases run in a fixed order - UPDATE, UPDATE-PROPERTY,
// INSERT, MOVE, DELETE - chosen so that replaying the operations never
// requires an invalid intermediate state: inserts happen before moves
// so moved nodes can be positioned relative to new siblings, moves
// happen before deletes so relocated content is never destroyed early,
// and deletes run in post-order so a subtree disappears leaves first.
package editscript
