// Package compare implements §4.5's comparison evaluator: predicates over
// the running parameter-value scope used to resolve container restrictions
// and include-conditions.
package compare

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
)

// Value is a decoded parameter's raw and engineering value, as stored in a
// decode scope. Both fields hold whatever internal/xtce/ptype.Decoded
// produced: int64/float64/string/bool/[]byte/[]interface{} depending on
// the parameter type's Kind.
type Value struct {
	Raw         interface{}
	Engineering interface{}
}

// Scope resolves a parameter reference to its decoded value and declared
// type. Implemented by internal/xtce/container during a decode walk.
type Scope interface {
	Lookup(parameterRef string) (val Value, pt *model.ParameterType, ok bool)
}

// Evaluate reports whether every Comparison in list holds against scope.
// An empty list is vacuously true, per spec §4.5.
func Evaluate(list model.ComparisonList, scope Scope) (bool, error) {
	for _, c := range list {
		ok, err := evaluateOne(c, scope)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evaluateOne(c model.Comparison, scope Scope) (bool, error) {
	val, pt, ok := scope.Lookup(c.ParameterRef)
	if !ok {
		return false, fmt.Errorf("compare: parameter %q not yet decoded", c.ParameterRef)
	}

	var lhs interface{}
	if c.UseCalibratedValue {
		lhs = val.Engineering
	} else {
		lhs = val.Raw
	}

	switch pt.Kind {
	case model.PTInteger, model.PTAbsoluteTime:
		lv, err := asFloat(lhs)
		if err != nil {
			return false, err
		}
		rv, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return false, fmt.Errorf("compare: %q is not a valid integer comparison value: %w", c.Value, err)
		}
		return applyNumeric(c.Op, lv, rv)

	case model.PTFloat:
		lv, err := asFloat(lhs)
		if err != nil {
			return false, err
		}
		rv, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return false, fmt.Errorf("compare: %q is not a valid float comparison value: %w", c.Value, err)
		}
		return applyNumeric(c.Op, lv, rv)

	case model.PTEnumerated:
		// Compare by label when the RHS parses as a label, else by integer
		// value (the RHS may be given either way in a restriction).
		var lhsLabel string
		switch v := lhs.(type) {
		case string:
			lhsLabel = v
		case int64:
			lhsLabel = findLabel(pt.EnumLabels, v)
		}
		if rhsVal, found := findValue(pt.EnumLabels, c.Value); found {
			lv, err := asFloat(lhs)
			if err != nil {
				// lhs was the label string; compare by resolving lhs to its value.
				lv = float64(findValueOfLabel(pt.EnumLabels, lhsLabel))
			}
			return applyEquality(c.Op, lv, float64(rhsVal))
		}
		if rhsInt, err := strconv.ParseInt(c.Value, 10, 64); err == nil {
			lv, err := asFloat(lhs)
			if err != nil {
				lv = float64(findValueOfLabel(pt.EnumLabels, lhsLabel))
			}
			return applyEquality(c.Op, lv, float64(rhsInt))
		}
		return applyStringEquality(c.Op, lhsLabel, c.Value)

	case model.PTBoolean:
		var lhsStr string
		switch v := lhs.(type) {
		case string:
			lhsStr = v
		case int64:
			if v == 0 {
				lhsStr = pt.ZeroString
			} else {
				lhsStr = pt.OneString
			}
		case bool:
			if v {
				lhsStr = pt.OneString
			} else {
				lhsStr = pt.ZeroString
			}
		}
		return applyStringEquality(c.Op, lhsStr, c.Value)

	case model.PTString:
		lhsStr, _ := lhs.(string)
		return applyStringEquality(c.Op, lhsStr, c.Value)

	default:
		return false, fmt.Errorf("compare: unsupported comparison parameter kind %d", pt.Kind)
	}
}

func asFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case int64:
		return float64(t), nil
	case float64:
		return t, nil
	default:
		return 0, fmt.Errorf("compare: value %v is not numeric", v)
	}
}

func findLabel(labels []model.EnumLabel, v int64) string {
	for _, l := range labels {
		if l.Value == v {
			return l.Label
		}
	}
	return ""
}

func findValue(labels []model.EnumLabel, s string) (int64, bool) {
	for _, l := range labels {
		if l.Label == s {
			return l.Value, true
		}
	}
	return 0, false
}

func findValueOfLabel(labels []model.EnumLabel, s string) int64 {
	v, _ := findValue(labels, s)
	return v
}

func applyNumeric(op model.CompareOp, lhs, rhs float64) (bool, error) {
	switch op {
	case model.OpEQ:
		return lhs == rhs, nil
	case model.OpNE:
		return lhs != rhs, nil
	case model.OpLT:
		return lhs < rhs, nil
	case model.OpLE:
		return lhs <= rhs, nil
	case model.OpGT:
		return lhs > rhs, nil
	case model.OpGE:
		return lhs >= rhs, nil
	default:
		return false, fmt.Errorf("compare: unsupported operator %d", op)
	}
}

func applyEquality(op model.CompareOp, lhs, rhs float64) (bool, error) {
	switch op {
	case model.OpEQ:
		return lhs == rhs, nil
	case model.OpNE:
		return lhs != rhs, nil
	default:
		return false, fmt.Errorf("compare: relational operator %d not supported on equality-only type", op)
	}
}

func applyStringEquality(op model.CompareOp, lhs, rhs string) (bool, error) {
	switch op {
	case model.OpEQ:
		return strings.Compare(lhs, rhs) == 0, nil
	case model.OpNE:
		return strings.Compare(lhs, rhs) != 0, nil
	default:
		return false, fmt.Errorf("compare: relational operator %d not supported on equality-only type", op)
	}
}
