// Package protocol implements the binary wire format for patch frames.
//
// A frame is a sequence number followed by a patch list. The encoding
// is compact and deterministic: single-byte opcodes, varint integers
// and length-prefixed strings, with allocation and collection limits
// enforced on decode so a malicious peer cannot force huge allocations
// from small inputs.
package protocol
