package ptype

import (
	"testing"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/bitstream"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
)

type fakeResolver map[string]*model.ParameterType

func (r fakeResolver) ResolveParameterType(name string) (*model.ParameterType, bool) {
	t, ok := r[name]
	return t, ok
}

func uint16Type() *model.ParameterType {
	return &model.ParameterType{
		NamedType: model.NamedType{
			Name:     "u16",
			Encoding: model.DataEncoding{Kind: model.EncodingInteger, SizeInBits: 16, Signed: model.Unsigned},
		},
		Kind: model.PTInteger,
	}
}

func TestDecodeEncodeIntegerRoundTrip(t *testing.T) {
	pt := uint16Type()
	w := bitstream.NewWriter()
	if err := EncodeParameter(w, pt, int64(0x1234)); err != nil {
		t.Fatalf("EncodeParameter: %v", err)
	}
	r := bitstream.NewReader(w.Bytes())
	d, err := DecodeParameter(r, pt, nil, nil)
	if err != nil {
		t.Fatalf("DecodeParameter: %v", err)
	}
	if d.Raw != int64(0x1234) || d.Engineering != int64(0x1234) {
		t.Errorf("got raw=%v eng=%v, want 0x1234/0x1234", d.Raw, d.Engineering)
	}
}

func TestCalibratedFloatRoundTrip(t *testing.T) {
	// p(x) = 1 + 2x, engineering 5.0 <-> raw 2.
	pt := &model.ParameterType{
		NamedType: model.NamedType{
			Name:     "Volt",
			Encoding: model.DataEncoding{Kind: model.EncodingInteger, SizeInBits: 16, Signed: model.Unsigned},
			Calibrator: &model.Calibrator{
				Kind: model.CalibratorPolynomial,
				Terms: []model.PolyTerm{
					{Coefficient: 1, Exponent: 0},
					{Coefficient: 2, Exponent: 1},
				},
			},
		},
		Kind: model.PTInteger,
	}
	w := bitstream.NewWriter()
	if err := EncodeParameter(w, pt, 5.0); err != nil {
		t.Fatalf("EncodeParameter: %v", err)
	}
	got := w.Bytes()
	if len(got) != 2 || got[0] != 0x00 || got[1] != 0x02 {
		t.Fatalf("got %x, want [00 02]", got)
	}
	r := bitstream.NewReader(got)
	d, err := DecodeParameter(r, pt, nil, nil)
	if err != nil {
		t.Fatalf("DecodeParameter: %v", err)
	}
	if d.Raw != int64(2) {
		t.Errorf("raw = %v, want 2", d.Raw)
	}
	if d.Engineering.(float64) != 5.0 {
		t.Errorf("engineering = %v, want 5.0", d.Engineering)
	}
}

func TestEnumeratedUnknownRawPassesThrough(t *testing.T) {
	pt := &model.ParameterType{
		NamedType: model.NamedType{Encoding: model.DataEncoding{Kind: model.EncodingInteger, SizeInBits: 8, Signed: model.Unsigned}},
		Kind:      model.PTEnumerated,
		EnumLabels: []model.EnumLabel{
			{Value: 1, Label: "A"},
		},
	}
	r := bitstream.NewReader([]byte{9})
	d, err := DecodeParameter(r, pt, nil, nil)
	if err != nil {
		t.Fatalf("DecodeParameter: %v", err)
	}
	if d.Engineering != int64(9) {
		t.Errorf("unknown raw enum value should pass through as the integer, got %v", d.Engineering)
	}
}

func TestBooleanRoundTrip(t *testing.T) {
	pt := &model.ParameterType{
		NamedType:  model.NamedType{Encoding: model.DataEncoding{Kind: model.EncodingInteger, SizeInBits: 8, Signed: model.Unsigned}},
		Kind:       model.PTBoolean,
		ZeroString: "OFF",
		OneString:  "ON",
	}
	w := bitstream.NewWriter()
	if err := EncodeParameter(w, pt, "ON"); err != nil {
		t.Fatalf("EncodeParameter: %v", err)
	}
	r := bitstream.NewReader(w.Bytes())
	d, err := DecodeParameter(r, pt, nil, nil)
	if err != nil {
		t.Fatalf("DecodeParameter: %v", err)
	}
	if d.Engineering != "ON" {
		t.Errorf("got %v, want ON", d.Engineering)
	}
}

func TestArrayFixedLength(t *testing.T) {
	elem := uint16Type()
	pt := &model.ParameterType{
		NamedType:      model.NamedType{Name: "arr"},
		Kind:           model.PTArray,
		ElementTypeRef: "u16",
		ArrayFixedLen:  2,
	}
	resolver := fakeResolver{"u16": elem}
	w := bitstream.NewWriter()
	if err := EncodeArray(w, pt, []interface{}{int64(1), int64(2)}, resolver); err != nil {
		t.Fatalf("EncodeArray: %v", err)
	}
	r := bitstream.NewReader(w.Bytes())
	d, err := DecodeParameter(r, pt, nil, resolver)
	if err != nil {
		t.Fatalf("DecodeParameter: %v", err)
	}
	eng, ok := d.Engineering.([]interface{})
	if !ok || len(eng) != 2 {
		t.Fatalf("got %v, want a 2-element slice", d.Engineering)
	}
	if eng[0] != int64(1) || eng[1] != int64(2) {
		t.Errorf("got %v, want [1 2]", eng)
	}
}

func TestArrayLengthMismatchErrors(t *testing.T) {
	elem := uint16Type()
	pt := &model.ParameterType{
		Kind:           model.PTArray,
		ElementTypeRef: "u16",
		ArrayFixedLen:  3,
	}
	resolver := fakeResolver{"u16": elem}
	w := bitstream.NewWriter()
	if err := EncodeArray(w, pt, []interface{}{int64(1)}, resolver); err == nil {
		t.Errorf("expected length mismatch error")
	}
}
