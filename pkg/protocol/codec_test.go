package protocol

import (
	"errors"
	"io"
	"testing"

	"github.com/treediff-dev/treediff/pkg/patch"
)

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16383, 16384, 1<<32 - 1, 1<<64 - 1}
	for _, v := range values {
		e := NewEncoder()
		e.WriteUvarint(v)
		d := NewDecoder(e.Bytes())
		got, err := d.ReadUvarint()
		if err != nil {
			t.Fatalf("ReadUvarint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("uvarint %d: got %d", v, got)
		}
		if !d.EOF() {
			t.Errorf("uvarint %d: %d bytes left over", v, d.Remaining())
		}
	}
}

func TestSvarintRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 63, -64, 64, -65, 1 << 40, -(1 << 40), 1<<63 - 1, -1 << 63}
	for _, v := range values {
		e := NewEncoder()
		e.WriteSvarint(v)
		d := NewDecoder(e.Bytes())
		got, err := d.ReadSvarint()
		if err != nil {
			t.Fatalf("ReadSvarint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("svarint %d: got %d", v, got)
		}
	}
}

func TestSmallValuesEncodeToOneByte(t *testing.T) {
	for v := uint64(0); v < 128; v++ {
		e := NewEncoder()
		e.WriteUvarint(v)
		if e.Len() != 1 {
			t.Fatalf("uvarint %d: %d bytes, want 1", v, e.Len())
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	strings := []string{"", "a", "hello", "<li>two</li>", "naïve – ✓"}
	for _, s := range strings {
		e := NewEncoder()
		e.WriteString(s)
		d := NewDecoder(e.Bytes())
		got, err := d.ReadString()
		if err != nil {
			t.Fatalf("ReadString(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("string %q: got %q", s, got)
		}
	}
}

func TestTruncatedInput(t *testing.T) {
	e := NewEncoder()
	e.WriteString("hello world")
	full := e.Bytes()

	for n := 0; n < len(full); n++ {
		d := NewDecoder(full[:n])
		if _, err := d.ReadString(); !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("truncated at %d: got %v, want ErrUnexpectedEOF", n, err)
		}
	}
}

func TestVarintOverflow(t *testing.T) {
	// Eleven continuation bytes exceed 64 bits of payload.
	buf := make([]byte, 11)
	for i := range buf {
		buf[i] = 0xFF
	}
	d := NewDecoder(buf)
	if _, err := d.ReadUvarint(); !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("got %v, want ErrVarintOverflow", err)
	}
}

func TestStringLengthExceedsBuffer(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1000)
	e.WriteByte('x')
	d := NewDecoder(e.Bytes())
	if _, err := d.ReadString(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("got %v, want ErrUnexpectedEOF", err)
	}
}

func TestCollectionCountLimit(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(MaxCollectionCount + 1)
	// Pad so the count is not rejected as implausible for the buffer.
	for i := 0; i < MaxCollectionCount+1; i++ {
		e.WriteByte(0)
	}
	d := NewDecoder(e.Bytes())
	if _, err := d.ReadCollectionCount(); !errors.Is(err, ErrCollectionTooLarge) {
		t.Errorf("got %v, want ErrCollectionTooLarge", err)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	frame := &PatchFrame{
		Seq: 42,
		Patches: []patch.Patch{
			{Op: patch.SetText, Path: patch.NodePath{0, 1}, Value: "updated"},
			{Op: patch.SetAttribute, Path: patch.NodePath{2}, Name: "class", Value: "active"},
			{Op: patch.RemoveAttribute, Path: patch.NodePath{2}, Name: "id"},
			{Op: patch.InsertBefore, Path: patch.NodePath{1, 0}, Value: "<li>two</li>"},
			{Op: patch.AppendChild, Path: patch.NodePath{1}, Value: "<li>four</li>"},
			{Op: patch.ReplaceInnerHTML, Path: patch.NodePath{3}, Value: "<span>x</span>"},
			{Op: patch.Remove, Path: patch.NodePath{0, 3}},
			{Op: patch.MoveNode, Path: patch.NodePath{1, 2}, To: patch.NodePath{1, 0}},
		},
	}

	got, err := DecodePatchFrame(frame.Encode())
	if err != nil {
		t.Fatalf("DecodePatchFrame: %v", err)
	}
	if got.Seq != frame.Seq {
		t.Errorf("seq: got %d, want %d", got.Seq, frame.Seq)
	}
	if len(got.Patches) != len(frame.Patches) {
		t.Fatalf("patch count: got %d, want %d", len(got.Patches), len(frame.Patches))
	}
	for i, want := range frame.Patches {
		p := got.Patches[i]
		if p.Op != want.Op || p.Name != want.Name || p.Value != want.Value {
			t.Errorf("patch %d: got %v, want %v", i, p, want)
		}
		if !p.Path.Equal(want.Path) {
			t.Errorf("patch %d path: got %v, want %v", i, p.Path, want.Path)
		}
		if !p.To.Equal(want.To) {
			t.Errorf("patch %d to: got %v, want %v", i, p.To, want.To)
		}
	}
}

func TestFrameEmptyPatchList(t *testing.T) {
	frame := &PatchFrame{Seq: 7}
	got, err := DecodePatchFrame(frame.Encode())
	if err != nil {
		t.Fatalf("DecodePatchFrame: %v", err)
	}
	if got.Seq != 7 || len(got.Patches) != 0 {
		t.Errorf("got seq=%d patches=%d", got.Seq, len(got.Patches))
	}
}

func TestFrameUnknownOp(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1) // seq
	e.WriteUvarint(1) // one patch
	e.WriteByte(0x7F) // not a valid op
	e.WriteUvarint(0) // empty path
	if _, err := DecodePatchFrame(e.Bytes()); !errors.Is(err, ErrUnknownOp) {
		t.Errorf("got %v, want ErrUnknownOp", err)
	}
}

func TestFrameRootPath(t *testing.T) {
	frame := &PatchFrame{
		Seq:     1,
		Patches: []patch.Patch{{Op: patch.AppendChild, Value: "<p>hi</p>"}},
	}
	got, err := DecodePatchFrame(frame.Encode())
	if err != nil {
		t.Fatalf("DecodePatchFrame: %v", err)
	}
	if len(got.Patches[0].Path) != 0 {
		t.Errorf("root path: got %v, want empty", got.Patches[0].Path)
	}
}

func TestEncoderReset(t *testing.T) {
	e := NewEncoder()
	e.WriteString("some data")
	e.Reset()
	if e.Len() != 0 {
		t.Errorf("after reset: len %d, want 0", e.Len())
	}
	e.WriteUvarint(5)
	if e.Len() != 1 {
		t.Errorf("after reuse: len %d, want 1", e.Len())
	}
}
