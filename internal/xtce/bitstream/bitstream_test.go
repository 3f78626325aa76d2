package bitstream

import "testing"

func TestReadUnsigned16(t *testing.T) {
	r := NewReader([]byte{0x12, 0x34})
	v, err := r.ReadUnsigned(16)
	if err != nil {
		t.Fatalf("ReadUnsigned: %v", err)
	}
	if v != 0x1234 {
		t.Errorf("got %#x, want 0x1234", v)
	}
}

func TestWriteUnsigned16RoundTrip(t *testing.T) {
	w := NewWriter()
	if err := w.WriteUnsigned(0x1234, 16); err != nil {
		t.Fatalf("WriteUnsigned: %v", err)
	}
	got := w.Bytes()
	want := []byte{0x12, 0x34}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestReadSignedTwosComplement(t *testing.T) {
	cases := []struct {
		b    byte
		want int64
	}{
		{0xFF, -1},
		{0x80, -128},
		{0x7F, 127},
		{0x00, 0},
	}
	for _, c := range cases {
		r := NewReader([]byte{c.b})
		v, err := r.ReadSigned(8)
		if err != nil {
			t.Fatalf("ReadSigned(%#x): %v", c.b, err)
		}
		if v != c.want {
			t.Errorf("ReadSigned(%#x) = %d, want %d", c.b, v, c.want)
		}
	}
}

func TestUnalignedBitCrossingByteBoundary(t *testing.T) {
	// 12-bit field starting at bit 4 of byte 0, spanning into byte 1.
	r := NewReader([]byte{0x0A, 0xBC})
	if _, err := r.ReadUnsigned(4); err != nil {
		t.Fatalf("discard nibble: %v", err)
	}
	v, err := r.ReadUnsigned(12)
	if err != nil {
		t.Fatalf("ReadUnsigned(12): %v", err)
	}
	if v != 0xABC {
		t.Errorf("got %#x, want 0xabc", v)
	}
}

func TestWriteSignedRangeCheck(t *testing.T) {
	w := NewWriter()
	if err := w.WriteSigned(128, 8); err == nil {
		t.Errorf("expected range error writing 128 into 8 signed bits")
	}
	if err := w.WriteSigned(-1, 8); err != nil {
		t.Errorf("WriteSigned(-1, 8): %v", err)
	}
}

func TestReadFloat32(t *testing.T) {
	w := NewWriter()
	if err := w.WriteFloat(1.5, 32); err != nil {
		t.Fatalf("WriteFloat: %v", err)
	}
	r := NewReader(w.Bytes())
	v, err := r.ReadFloat(32)
	if err != nil {
		t.Fatalf("ReadFloat: %v", err)
	}
	if v != 1.5 {
		t.Errorf("got %v, want 1.5", v)
	}
}

func TestReadBytesRequiresByteAlignment(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	if _, err := r.ReadUnsigned(4); err != nil {
		t.Fatalf("ReadUnsigned: %v", err)
	}
	if _, err := r.ReadBytes(8); err == nil {
		t.Errorf("expected error reading unaligned bytes")
	}
}

func TestReadUnsignedOutOfBounds(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.ReadUnsigned(16); err == nil {
		t.Errorf("expected error reading past end of buffer")
	}
}

func TestSeekBitsZeroPads(t *testing.T) {
	w := NewWriter()
	w.SeekBits(16)
	if err := w.WriteUnsigned(0xFF, 8); err != nil {
		t.Fatalf("WriteUnsigned: %v", err)
	}
	got := w.Bytes()
	if len(got) != 3 || got[0] != 0 || got[1] != 0 || got[2] != 0xFF {
		t.Errorf("got %x, want [00 00 ff]", got)
	}
}
