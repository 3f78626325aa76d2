package container

import (
	"testing"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/schema"
)

func u8Type() *model.ParameterType {
	return &model.ParameterType{
		NamedType: model.NamedType{Encoding: model.DataEncoding{Kind: model.EncodingInteger, SizeInBits: 8, Signed: model.Unsigned}},
		Kind:      model.PTInteger,
	}
}

func u16Type() *model.ParameterType {
	return &model.ParameterType{
		NamedType: model.NamedType{Encoding: model.DataEncoding{Kind: model.EncodingInteger, SizeInBits: 16, Signed: model.Unsigned}},
		Kind:      model.PTInteger,
	}
}

// buildTypeSelectionSchema builds a base container with a TypeID discriminant
// and two child containers selected by restriction, per spec §8's enum
// dispatch scenario.
func buildTypeSelectionSchema(t *testing.T) *Engine {
	t.Helper()
	root := &model.SpaceSystem{
		QualifiedName: "/Root",
		ParameterTypes: map[string]*model.ParameterType{
			"/Root/u8":  u8Type(),
			"/Root/u16": u16Type(),
		},
		Parameters: map[string]*model.Parameter{
			"/Root/TypeID": {QualifiedName: "/Root/TypeID", TypeRef: "/Root/u8"},
			"/Root/FieldA": {QualifiedName: "/Root/FieldA", TypeRef: "/Root/u16"},
			"/Root/FieldB": {QualifiedName: "/Root/FieldB", TypeRef: "/Root/u16"},
		},
		Containers: map[string]*model.Container{
			"/Root/Base": {
				Name:    "/Root/Base",
				Entries: []model.Entry{{Kind: model.EntryParameterRef, ParameterRef: "/Root/TypeID"}},
			},
			"/Root/TypeA": {
				Name:             "/Root/TypeA",
				BaseContainerRef: "/Root/Base",
				Restriction:      model.ComparisonList{{ParameterRef: "/Root/TypeID", Op: model.OpEQ, Value: "1"}},
				Entries:          []model.Entry{{Kind: model.EntryParameterRef, ParameterRef: "/Root/FieldA"}},
			},
			"/Root/TypeB": {
				Name:             "/Root/TypeB",
				BaseContainerRef: "/Root/Base",
				Restriction:      model.ComparisonList{{ParameterRef: "/Root/TypeID", Op: model.OpEQ, Value: "2"}},
				Entries:          []model.Entry{{Kind: model.EntryParameterRef, ParameterRef: "/Root/FieldB"}},
			},
		},
	}
	idx, err := schema.Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return New(idx)
}

func TestDecodeSelectsChildByRestriction(t *testing.T) {
	e := buildTypeSelectionSchema(t)
	data := []byte{0x01, 0xAB, 0xCD} // TypeID=1 -> TypeA.FieldA
	vm, err := e.DecodePacket("/Root/Base", data)
	if err != nil {
		t.Fatalf("DecodePacket: %v", err)
	}
	field, ok := vm.Get("/Root/FieldA")
	if !ok {
		t.Fatalf("expected FieldA to be decoded")
	}
	if field.Raw != int64(0xABCD) {
		t.Errorf("got %#x, want 0xabcd", field.Raw)
	}
	if _, ok := vm.Get("/Root/FieldB"); ok {
		t.Errorf("FieldB should not be decoded when TypeID selects TypeA")
	}
}

func TestDecodeSelectsOtherChildByRestriction(t *testing.T) {
	e := buildTypeSelectionSchema(t)
	data := []byte{0x02, 0x11, 0x22} // TypeID=2 -> TypeB.FieldB
	vm, err := e.DecodePacket("/Root/Base", data)
	if err != nil {
		t.Fatalf("DecodePacket: %v", err)
	}
	field, ok := vm.Get("/Root/FieldB")
	if !ok {
		t.Fatalf("expected FieldB to be decoded")
	}
	if field.Raw != int64(0x1122) {
		t.Errorf("got %#x, want 0x1122", field.Raw)
	}
}

func TestEncodeAutoPopulatesRestrictionDiscriminant(t *testing.T) {
	e := buildTypeSelectionSchema(t)
	got, err := e.EncodePacket("/Root/TypeA", map[string]interface{}{
		"/Root/FieldA": int64(0xABCD),
	})
	if err != nil {
		t.Fatalf("EncodePacket: %v", err)
	}
	want := []byte{0x01, 0xAB, 0xCD}
	if len(got) != len(want) {
		t.Fatalf("got %x, want %x", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d: got %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestFixedValueMismatchNamesEntry(t *testing.T) {
	root := &model.SpaceSystem{
		QualifiedName: "/Root",
		Containers: map[string]*model.Container{
			"/Root/Magic": {
				Name: "/Root/Magic",
				Entries: []model.Entry{
					{Kind: model.EntryFixedValue, SizeInBits: 16, HexValue: []byte{0xCA, 0xFE}},
				},
			},
		},
	}
	idx, err := schema.Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	e := New(idx)

	if _, err := e.DecodePacket("/Root/Magic", []byte{0xCA, 0xFE}); err != nil {
		t.Errorf("expected matching fixed value to decode cleanly, got %v", err)
	}
	if _, err := e.DecodePacket("/Root/Magic", []byte{0xDE, 0xAD}); err == nil {
		t.Errorf("expected fixed value mismatch to error")
	}
}

func TestFixedValueWiderThan64BitsRoundTrips(t *testing.T) {
	marker := []byte{0x1A, 0xCF, 0xFC, 0x1D, 0x00, 0x00, 0x00, 0x00, 0x55}
	root := &model.SpaceSystem{
		QualifiedName: "/Root",
		Containers: map[string]*model.Container{
			"/Root/Framed": {
				Name: "/Root/Framed",
				Entries: []model.Entry{
					{Kind: model.EntryFixedValue, SizeInBits: 72, HexValue: marker},
				},
			},
		},
	}
	idx, err := schema.Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	e := New(idx)

	if _, err := e.DecodePacket("/Root/Framed", marker); err != nil {
		t.Errorf("expected wide marker to decode cleanly, got %v", err)
	}
	wrong := append([]byte(nil), marker...)
	wrong[0] ^= 0xFF
	if _, err := e.DecodePacket("/Root/Framed", wrong); err == nil {
		t.Errorf("expected wide marker mismatch to error")
	}

	got, err := e.EncodePacket("/Root/Framed", nil)
	if err != nil {
		t.Fatalf("EncodePacket: %v", err)
	}
	if len(got) != len(marker) {
		t.Fatalf("got %x, want %x", got, marker)
	}
	for i := range marker {
		if got[i] != marker[i] {
			t.Errorf("byte %d: got %#x, want %#x", i, got[i], marker[i])
		}
	}
}

func TestAmbiguousChildSelectionErrors(t *testing.T) {
	root := &model.SpaceSystem{
		QualifiedName: "/Root",
		ParameterTypes: map[string]*model.ParameterType{
			"/Root/u8": u8Type(),
		},
		Parameters: map[string]*model.Parameter{
			"/Root/TypeID": {QualifiedName: "/Root/TypeID", TypeRef: "/Root/u8"},
		},
		Containers: map[string]*model.Container{
			"/Root/Base": {
				Name:    "/Root/Base",
				Entries: []model.Entry{{Kind: model.EntryParameterRef, ParameterRef: "/Root/TypeID"}},
			},
			"/Root/X": {
				Name:             "/Root/X",
				BaseContainerRef: "/Root/Base",
				Restriction:      model.ComparisonList{{ParameterRef: "/Root/TypeID", Op: model.OpGE, Value: "0"}},
			},
			"/Root/Y": {
				Name:             "/Root/Y",
				BaseContainerRef: "/Root/Base",
				Restriction:      model.ComparisonList{{ParameterRef: "/Root/TypeID", Op: model.OpGE, Value: "0"}},
			},
		},
	}
	idx, err := schema.Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	e := New(idx)
	if _, err := e.DecodePacket("/Root/Base", []byte{0x05}); err == nil {
		t.Errorf("expected ambiguous child selection to error")
	}
}
