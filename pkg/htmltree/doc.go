// Package htmltree builds labeled trees from HTML documents and applies
// translated patches back to them.
//
// It is the HTML document model for the diff pipeline: parsing, content
// hashing, structural path recording, subtree serialization and the
// live apply step all live here, so the matching and scripting packages
// stay format-agnostic.
package htmltree
