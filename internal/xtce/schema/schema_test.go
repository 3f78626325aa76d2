package schema

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

func TestBuildIndexesNestedSpaceSystems(t *testing.T) {
	root := &model.SpaceSystem{
		QualifiedName:  "/Root",
		ParameterTypes: map[string]*model.ParameterType{"/Root/u8": u8()},
		Parameters:     map[string]*model.Parameter{"/Root/P1": {QualifiedName: "/Root/P1", TypeRef: "/Root/u8"}},
		Containers: map[string]*model.Container{
			"/Root/Base": {Name: "/Root/Base", Entries: []model.Entry{{Kind: model.EntryParameterRef, ParameterRef: "/Root/P1"}}},
		},
		Children: []*model.SpaceSystem{
			{
				QualifiedName: "/Root/Child",
				Containers: map[string]*model.Container{
					"/Root/Child/Derived": {Name: "/Root/Child/Derived", BaseContainerRef: "/Root/Base"},
				},
			},
		},
	}
	idx, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := idx.Container("/Root/Child/Derived"); !ok {
		t.Errorf("expected nested child container to be indexed")
	}
	pt, err := idx.ParameterTypeOf("/Root/P1")
	if err != nil {
		t.Fatalf("ParameterTypeOf: %v", err)
	}
	if pt.Kind != model.PTInteger {
		t.Errorf("got kind %v, want PTInteger", pt.Kind)
	}
}

func TestBuildDetectsDuplicateName(t *testing.T) {
	root := &model.SpaceSystem{
		QualifiedName:  "/Root",
		ParameterTypes: map[string]*model.ParameterType{"/Root/u8": u8()},
		Children: []*model.SpaceSystem{
			{
				QualifiedName:  "/Root/Child",
				ParameterTypes: map[string]*model.ParameterType{"/Root/u8": u8()},
			},
		},
	}
	if _, err := Build(root); err == nil {
		t.Errorf("expected duplicate parameter type name to fail Build")
	}
}

func TestBuildDetectsCyclicContainerInheritance(t *testing.T) {
	root := &model.SpaceSystem{
		QualifiedName: "/Root",
		Containers: map[string]*model.Container{
			"/Root/A": {Name: "/Root/A", BaseContainerRef: "/Root/B"},
			"/Root/B": {Name: "/Root/B", BaseContainerRef: "/Root/A"},
		},
	}
	if _, err := Build(root); err == nil {
		t.Errorf("expected cyclic inheritance to fail Build")
	}
}

func TestFlattenedEntriesConcatenatesAncestors(t *testing.T) {
	root := &model.SpaceSystem{
		QualifiedName: "/Root",
		Containers: map[string]*model.Container{
			"/Root/Base": {Name: "/Root/Base", Entries: []model.Entry{{Kind: model.EntryFixedValue, SizeInBits: 8}}},
			"/Root/Mid":  {Name: "/Root/Mid", BaseContainerRef: "/Root/Base", Entries: []model.Entry{{Kind: model.EntryFixedValue, SizeInBits: 8}}},
		},
	}
	idx, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	entries, err := idx.FlattenedEntries("/Root/Mid")
	if err != nil {
		t.Fatalf("FlattenedEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2 (base then mid)", len(entries))
	}
}

func TestChildrenOfReturnsDeclaredSubtypes(t *testing.T) {
	root := &model.SpaceSystem{
		QualifiedName: "/Root",
		Containers: map[string]*model.Container{
			"/Root/Base": {Name: "/Root/Base"},
			"/Root/A":    {Name: "/Root/A", BaseContainerRef: "/Root/Base"},
			"/Root/B":    {Name: "/Root/B", BaseContainerRef: "/Root/Base"},
		},
	}
	idx, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	children := idx.ChildrenOf("/Root/Base")
	if len(children) != 2 {
		t.Errorf("got %d children, want 2", len(children))
	}
}
