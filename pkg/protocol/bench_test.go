package protocol

import (
	"testing"

	"github.com/treediff-dev/treediff/pkg/patch"
)

// === Varint Benchmarks ===

func BenchmarkUvarint_EncodeSmall(b *testing.B) {
	e := NewEncoder()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Reset()
		e.WriteUvarint(127)
	}
}

func BenchmarkUvarint_EncodeLarge(b *testing.B) {
	e := NewEncoder()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Reset()
		e.WriteUvarint(1 << 28)
	}
}

func BenchmarkUvarint_DecodeSmall(b *testing.B) {
	e := NewEncoder()
	e.WriteUvarint(127)
	data := e.Bytes()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d := NewDecoder(data)
		_, _ = d.ReadUvarint()
	}
}

func BenchmarkUvarint_DecodeLarge(b *testing.B) {
	e := NewEncoder()
	e.WriteUvarint(1 << 28)
	data := e.Bytes()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d := NewDecoder(data)
		_, _ = d.ReadUvarint()
	}
}

// === Encoder/Decoder Benchmarks ===

func BenchmarkEncoder_MixedTypes(b *testing.B) {
	e := NewEncoder()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Reset()
		e.WriteByte(0x42)
		e.WriteUvarint(12345)
		e.WriteSvarint(-9876)
		e.WriteString("hello world")
	}
}

func BenchmarkDecoder_MixedTypes(b *testing.B) {
	e := NewEncoder()
	e.WriteByte(0x42)
	e.WriteUvarint(12345)
	e.WriteSvarint(-9876)
	e.WriteString("hello world")
	data := e.Bytes()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d := NewDecoder(data)
		_, _ = d.ReadByte()
		_, _ = d.ReadUvarint()
		_, _ = d.ReadSvarint()
		_, _ = d.ReadString()
	}
}

// === Frame Benchmarks ===

func benchFrame(n int) *PatchFrame {
	f := &PatchFrame{Seq: 42}
	for i := 0; i < n; i++ {
		f.Patches = append(f.Patches,
			patch.Patch{Op: patch.SetText, Path: patch.NodePath{0, i}, Value: "updated text"},
			patch.Patch{Op: patch.SetAttribute, Path: patch.NodePath{1, i}, Name: "class", Value: "active"},
			patch.Patch{Op: patch.AppendChild, Path: patch.NodePath{2}, Value: "<li>item</li>"},
			patch.Patch{Op: patch.MoveNode, Path: patch.NodePath{0, i}, To: patch.NodePath{2, i}},
		)
	}
	return f
}

func BenchmarkFrame_EncodeSmall(b *testing.B) {
	f := benchFrame(1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Encode()
	}
}

func BenchmarkFrame_EncodeLarge(b *testing.B) {
	f := benchFrame(25)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Encode()
	}
}

func BenchmarkFrame_DecodeSmall(b *testing.B) {
	data := benchFrame(1).Encode()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodePatchFrame(data)
	}
}

func BenchmarkFrame_DecodeLarge(b *testing.B) {
	data := benchFrame(25).Encode()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodePatchFrame(data)
	}
}
