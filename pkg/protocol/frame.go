package protocol

import (
	"fmt"

	"github.com/treediff-dev/treediff/pkg/patch"
)

// PatchFrame carries one batch of patches with a monotonically
// increasing sequence number. Receivers apply frames strictly in
// sequence order.
type PatchFrame struct {
	Seq     uint64
	Patches []patch.Patch
}

// Encode serializes the frame into a compact binary form.
func (f *PatchFrame) Encode() []byte {
	e := NewEncoder()
	e.WriteUvarint(f.Seq)
	e.WriteUvarint(uint64(len(f.Patches)))
	for _, p := range f.Patches {
		encodePatch(e, p)
	}
	return e.Bytes()
}

func encodePatch(e *Encoder, p patch.Patch) {
	e.WriteByte(byte(p.Op))
	encodePath(e, p.Path)

	switch p.Op {
	case patch.SetText:
		e.WriteString(p.Value)
	case patch.SetAttribute:
		e.WriteString(p.Name)
		e.WriteString(p.Value)
	case patch.RemoveAttribute:
		e.WriteString(p.Name)
	case patch.Replace, patch.ReplaceInnerHTML, patch.InsertBefore,
		patch.InsertAfter, patch.AppendChild:
		e.WriteString(p.Value)
	case patch.MoveNode:
		encodePath(e, p.To)
	case patch.Remove:
		// Path only.
	}
}

func encodePath(e *Encoder, path patch.NodePath) {
	e.WriteUvarint(uint64(len(path)))
	for _, idx := range path {
		e.WriteUvarint(uint64(idx))
	}
}

// DecodePatchFrame parses a binary frame produced by Encode.
func DecodePatchFrame(data []byte) (*PatchFrame, error) {
	d := NewDecoder(data)

	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, fmt.Errorf("read seq: %w", err)
	}

	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, fmt.Errorf("read patch count: %w", err)
	}

	frame := &PatchFrame{Seq: seq}
	if count > 0 {
		frame.Patches = make([]patch.Patch, 0, count)
	}
	for i := 0; i < count; i++ {
		p, err := decodePatch(d)
		if err != nil {
			return nil, fmt.Errorf("patch %d: %w", i, err)
		}
		frame.Patches = append(frame.Patches, p)
	}
	return frame, nil
}

func decodePatch(d *Decoder) (patch.Patch, error) {
	var p patch.Patch

	op, err := d.ReadByte()
	if err != nil {
		return p, err
	}
	p.Op = patch.Op(op)

	p.Path, err = decodePath(d)
	if err != nil {
		return p, err
	}

	switch p.Op {
	case patch.SetText:
		p.Value, err = d.ReadString()
	case patch.SetAttribute:
		if p.Name, err = d.ReadString(); err == nil {
			p.Value, err = d.ReadString()
		}
	case patch.RemoveAttribute:
		p.Name, err = d.ReadString()
	case patch.Replace, patch.ReplaceInnerHTML, patch.InsertBefore,
		patch.InsertAfter, patch.AppendChild:
		p.Value, err = d.ReadString()
	case patch.MoveNode:
		p.To, err = decodePath(d)
	case patch.Remove:
		// Path only.
	default:
		return p, fmt.Errorf("%w: 0x%02X", ErrUnknownOp, op)
	}
	return p, err
}

func decodePath(d *Decoder) (patch.NodePath, error) {
	length, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if length > MaxPathDepth {
		return nil, ErrPathTooDeep
	}
	if length == 0 {
		return nil, nil
	}
	path := make(patch.NodePath, length)
	for i := range path {
		idx, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		path[i] = int(idx)
	}
	return path, nil
}
