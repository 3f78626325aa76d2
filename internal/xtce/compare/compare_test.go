package compare

import (
	"testing"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
)

type fakeScope map[string]struct {
	val Value
	pt  *model.ParameterType
}

func (s fakeScope) Lookup(parameterRef string) (Value, *model.ParameterType, bool) {
	e, ok := s[parameterRef]
	if !ok {
		return Value{}, nil, false
	}
	return e.val, e.pt, true
}

func intType() *model.ParameterType {
	return &model.ParameterType{Kind: model.PTInteger}
}

func enumType() *model.ParameterType {
	return &model.ParameterType{
		Kind: model.PTEnumerated,
		EnumLabels: []model.EnumLabel{
			{Value: 1, Label: "A"},
			{Value: 2, Label: "B"},
		},
	}
}

func TestEvaluateIntegerEquality(t *testing.T) {
	scope := fakeScope{
		"TypeID": {val: Value{Raw: int64(2), Engineering: int64(2)}, pt: intType()},
	}
	list := model.ComparisonList{{ParameterRef: "TypeID", Op: model.OpEQ, Value: "2"}}
	ok, err := Evaluate(list, scope)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !ok {
		t.Errorf("expected TypeID == 2 to match")
	}
}

func TestEvaluateEnumeratedDispatchByValue(t *testing.T) {
	scope := fakeScope{
		"Mode": {val: Value{Raw: int64(1), Engineering: "A"}, pt: enumType()},
	}
	list := model.ComparisonList{{ParameterRef: "Mode", Op: model.OpEQ, Value: "1", UseCalibratedValue: false}}
	ok, err := Evaluate(list, scope)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !ok {
		t.Errorf("expected raw Mode == 1 to match enum value A")
	}
}

func TestEvaluateEmptyListVacuouslyTrue(t *testing.T) {
	ok, err := Evaluate(nil, fakeScope{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !ok {
		t.Errorf("empty comparison list should be vacuously true")
	}
}

func TestEvaluateMissingParameterErrors(t *testing.T) {
	list := model.ComparisonList{{ParameterRef: "Missing", Op: model.OpEQ, Value: "1"}}
	if _, err := Evaluate(list, fakeScope{}); err == nil {
		t.Errorf("expected error for undecoded parameter reference")
	}
}

func TestEvaluateNumericRelational(t *testing.T) {
	scope := fakeScope{
		"Alt": {val: Value{Raw: int64(500), Engineering: int64(500)}, pt: intType()},
	}
	list := model.ComparisonList{{ParameterRef: "Alt", Op: model.OpGT, Value: "100"}}
	ok, err := Evaluate(list, scope)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !ok {
		t.Errorf("expected Alt > 100 to match")
	}
}
