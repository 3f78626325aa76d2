package enc

import (
	"testing"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/bitstream"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
)

func TestIntegerRoundTripUnsigned16(t *testing.T) {
	e := &model.DataEncoding{Kind: model.EncodingInteger, SizeInBits: 16, Signed: model.Unsigned}
	w := bitstream.NewWriter()
	if err := EncodeInteger(w, e, 0x1234); err != nil {
		t.Fatalf("EncodeInteger: %v", err)
	}
	got := w.Bytes()
	if len(got) != 2 || got[0] != 0x12 || got[1] != 0x34 {
		t.Errorf("got %x, want [12 34]", got)
	}
	r := bitstream.NewReader(got)
	v, err := DecodeInteger(r, e)
	if err != nil {
		t.Fatalf("DecodeInteger: %v", err)
	}
	if v != 0x1234 {
		t.Errorf("DecodeInteger = %#x, want 0x1234", v)
	}
}

func TestIntegerTwosComplement(t *testing.T) {
	e := &model.DataEncoding{Kind: model.EncodingInteger, SizeInBits: 8, Signed: model.TwosComplement}
	r := bitstream.NewReader([]byte{0xFF})
	v, err := DecodeInteger(r, e)
	if err != nil {
		t.Fatalf("DecodeInteger: %v", err)
	}
	if v != -1 {
		t.Errorf("got %d, want -1", v)
	}
}

func TestStringFixedRoundTrip(t *testing.T) {
	e := &model.DataEncoding{
		Kind:             model.EncodingString,
		CharSet:          model.CharSetASCII,
		StringSizeKind:   model.StringSizeFixed,
		StringSizeInBits: 40,
	}
	w := bitstream.NewWriter()
	if err := EncodeString(w, e, "ABC"); err != nil {
		t.Fatalf("EncodeString: %v", err)
	}
	got := w.Bytes()
	want := []byte{'A', 'B', 'C', 0, 0}
	if len(got) != len(want) {
		t.Fatalf("got %d bytes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d: got %#x, want %#x", i, got[i], want[i])
		}
	}
	r := bitstream.NewReader(got)
	s, err := DecodeString(r, e, nil)
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	if s != "ABC\x00\x00" {
		t.Errorf("got %q, want %q", s, "ABC\x00\x00")
	}
}

func TestStringDynamicLengthPrefixed(t *testing.T) {
	e := &model.DataEncoding{
		Kind:           model.EncodingString,
		CharSet:        model.CharSetASCII,
		StringSizeKind: model.StringSizeDynamic,
		SizeParamRef:   "Len",
		SizeIsOf:       model.SizeOfStringData,
	}
	w := bitstream.NewWriter()
	if err := w.WriteBytes([]byte("ABC")); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	r := bitstream.NewReader(w.Bytes())
	sizeOf := func(name string) (int64, bool) {
		if name == "Len" {
			return 24, true // 3 bytes = 24 bits
		}
		return 0, false
	}
	s, err := DecodeString(r, e, sizeOf)
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	if s != "ABC" {
		t.Errorf("got %q, want %q", s, "ABC")
	}
}

func TestStringTerminated(t *testing.T) {
	e := &model.DataEncoding{
		Kind:           model.EncodingString,
		CharSet:        model.CharSetASCII,
		StringSizeKind: model.StringSizeTerminated,
		Terminator:     0,
	}
	w := bitstream.NewWriter()
	if err := EncodeString(w, e, "hi"); err != nil {
		t.Fatalf("EncodeString: %v", err)
	}
	r := bitstream.NewReader(w.Bytes())
	s, err := DecodeString(r, e, nil)
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	if s != "hi" {
		t.Errorf("got %q, want %q", s, "hi")
	}
}

func TestBinaryFixedLengthMismatch(t *testing.T) {
	e := &model.DataEncoding{Kind: model.EncodingBinary, BinarySizeKind: model.BinarySizeFixed, BinarySizeInBits: 16}
	w := bitstream.NewWriter()
	if err := EncodeBinary(w, e, []byte{0xCA}); err == nil {
		t.Errorf("expected error encoding 1 byte into a fixed 2-byte binary field")
	}
	if err := EncodeBinary(w, e, []byte{0xCA, 0xFE}); err != nil {
		t.Errorf("EncodeBinary: %v", err)
	}
}
