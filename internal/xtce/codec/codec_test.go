package codec

import (
	"testing"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
)

func u8() *model.ParameterType {
	return &model.ParameterType{
		NamedType: model.NamedType{Encoding: model.DataEncoding{Kind: model.EncodingInteger, SizeInBits: 8, Signed: model.Unsigned}},
		Kind:      model.PTInteger,
	}
}

func u16() *model.ParameterType {
	return &model.ParameterType{
		NamedType: model.NamedType{Encoding: model.DataEncoding{Kind: model.EncodingInteger, SizeInBits: 16, Signed: model.Unsigned}},
		Kind:      model.PTInteger,
	}
}

func TestDecodePacketEndToEnd(t *testing.T) {
	root := &model.SpaceSystem{
		QualifiedName:  "/Root",
		ParameterTypes: map[string]*model.ParameterType{"/Root/u16": u16()},
		Parameters:     map[string]*model.Parameter{"/Root/Value": {QualifiedName: "/Root/Value", TypeRef: "/Root/u16"}},
		Containers: map[string]*model.Container{
			"/Root/Packet": {
				Name:    "/Root/Packet",
				Entries: []model.Entry{{Kind: model.EntryParameterRef, ParameterRef: "/Root/Value"}},
			},
		},
	}
	schema, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	result, err := schema.DecodePacket("/Root/Packet", []byte{0x12, 0x34})
	if err != nil {
		t.Fatalf("DecodePacket: %v", err)
	}
	if len(result.Values) != 1 || result.Values[0].Name != "/Root/Value" || result.Values[0].Raw != int64(0x1234) {
		t.Errorf("got %+v, want a single Value /Root/Value=0x1234", result.Values)
	}
}

func TestEncodeCommandWithInheritedAssignment(t *testing.T) {
	root := &model.SpaceSystem{
		QualifiedName: "/Root",
		ArgumentTypes: map[string]*model.ArgumentType{
			"/Root/u8":  {NamedType: model.NamedType{Encoding: model.DataEncoding{Kind: model.EncodingInteger, SizeInBits: 8, Signed: model.Unsigned}}, Kind: model.ATInteger},
			"/Root/u16": {NamedType: model.NamedType{Encoding: model.DataEncoding{Kind: model.EncodingInteger, SizeInBits: 16, Signed: model.Unsigned}}, Kind: model.ATInteger},
		},
		Arguments: map[string]*model.Argument{
			"/Root/Base/Opcode": {Name: "Opcode", TypeRef: "/Root/u8"},
			"/Root/Fire/Power":  {Name: "Power", TypeRef: "/Root/u16"},
		},
		MetaCommands: map[string]*model.MetaCommand{
			"/Root/Base": {
				QualifiedName: "/Root/Base",
				Arguments:     []model.Argument{{Name: "Opcode", TypeRef: "/Root/u8"}},
				Entries:       []model.Entry{{Kind: model.EntryArgumentRef, ArgumentRef: "/Root/Base/Opcode"}},
			},
			"/Root/Fire": {
				QualifiedName:  "/Root/Fire",
				BaseCommandRef: "/Root/Base",
				ArgumentAssignments: model.ComparisonList{
					{ParameterRef: "/Root/Base/Opcode", Op: model.OpEQ, Value: "7"},
				},
				Arguments: []model.Argument{{Name: "Power", TypeRef: "/Root/u16"}},
				Entries:   []model.Entry{{Kind: model.EntryArgumentRef, ArgumentRef: "/Root/Fire/Power"}},
			},
		},
	}
	schema, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := schema.EncodeCommand("/Root/Fire", map[string]interface{}{"Power": int64(0x00FF)})
	if err != nil {
		t.Fatalf("EncodeCommand: %v", err)
	}
	want := []byte{0x07, 0x00, 0xFF}
	if len(got) != len(want) {
		t.Fatalf("got %x, want %x", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d: got %#x, want %#x", i, got[i], want[i])
		}
	}
}
