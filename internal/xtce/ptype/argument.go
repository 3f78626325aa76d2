package ptype

import (
	"fmt"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/bitstream"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/calib"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/enc"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
)

// EncodeArgument writes an engineering value of the given ArgumentType to
// w. Only the argument-supported subset of kinds from spec §3 applies;
// Array arguments delegate element encoding through resolver exactly as
// EncodeArray does for parameters.
func EncodeArgument(w *bitstream.Writer, at *model.ArgumentType, eng interface{}, resolver TypeResolver) error {
	switch at.Kind {
	case model.ATInteger:
		raw, err := inverseArgInt(at, eng)
		if err != nil {
			return err
		}
		return enc.EncodeInteger(w, &at.Encoding, raw)

	case model.ATFloat:
		f, err := toFloat(eng)
		if err != nil {
			return err
		}
		if at.ValidRangeAppliesToCalibrated {
			if err := checkRange(at.ValidRange, f); err != nil {
				return err
			}
		}
		raw := f
		if at.Calibrator != nil {
			raw, err = calib.Inverse(at.Calibrator, f, at.ValidRange)
			if err != nil {
				return fmt.Errorf("ptype: argument calibration inverse failed: %w", err)
			}
		}
		if !at.ValidRangeAppliesToCalibrated {
			if err := checkRange(at.ValidRange, raw); err != nil {
				return err
			}
		}
		if at.Encoding.Kind == model.EncodingFloat {
			return enc.EncodeFloat(w, &at.Encoding, raw)
		}
		return enc.EncodeInteger(w, &at.Encoding, int64(raw))

	case model.ATEnumerated:
		raw, err := resolveEnumValue(at.EnumLabels, eng)
		if err != nil {
			return err
		}
		return enc.EncodeInteger(w, &at.Encoding, raw)

	case model.ATBoolean:
		s, ok := eng.(string)
		if !ok {
			return fmt.Errorf("ptype: argument boolean encode expects a string, got %T", eng)
		}
		zero, one := boolStrings(at.ZeroString, at.OneString)
		switch s {
		case zero:
			return enc.EncodeInteger(w, &at.Encoding, 0)
		case one:
			return enc.EncodeInteger(w, &at.Encoding, 1)
		default:
			return fmt.Errorf("ptype: argument boolean value %q matches neither %q nor %q", s, zero, one)
		}

	case model.ATAbsoluteTime:
		f, err := toFloat(eng)
		if err != nil {
			return err
		}
		raw := (f - at.EpochOffsetSeconds) / scaleOrOne(at.Scale)
		if raw < 0 || raw > float64(^uint32(0)) {
			return fmt.Errorf("ptype: argument absolute time value out of unsigned 32-bit range")
		}
		return w.WriteUnsigned(uint64(raw), 32)

	case model.ATArray:
		elemType, ok := resolver.ResolveParameterType(at.ElementTypeRef)
		if !ok {
			return fmt.Errorf("ptype: argument array element type %q not found", at.ElementTypeRef)
		}
		elems, ok := eng.([]interface{})
		if !ok {
			return fmt.Errorf("ptype: argument array encode expects []interface{}, got %T", eng)
		}
		declaredLen := at.ArrayFixedLen
		if at.ArrayLenParamRef != "" {
			declaredLen = len(elems)
		}
		if len(elems) != declaredLen {
			return fmt.Errorf("ptype: argument array has %d elements, declared length is %d", len(elems), declaredLen)
		}
		for i, e := range elems {
			if err := EncodeParameter(w, elemType, e); err != nil {
				return fmt.Errorf("ptype: argument array element %d: %w", i, err)
			}
		}
		return nil

	default:
		return fmt.Errorf("ptype: unsupported argument type kind %d", at.Kind)
	}
}

func inverseArgInt(at *model.ArgumentType, eng interface{}) (int64, error) {
	if at.Calibrator == nil {
		switch v := eng.(type) {
		case int64:
			return checkArgIntRange(at, v)
		case int:
			return checkArgIntRange(at, int64(v))
		case float64:
			return checkArgIntRange(at, int64(v))
		default:
			return 0, fmt.Errorf("ptype: argument integer encode expects a numeric value, got %T", eng)
		}
	}
	f, err := toFloat(eng)
	if err != nil {
		return 0, err
	}
	if at.ValidRangeAppliesToCalibrated {
		if err := checkRange(at.ValidRange, f); err != nil {
			return 0, err
		}
	}
	raw, err := calib.Inverse(at.Calibrator, f, at.ValidRange)
	if err != nil {
		return 0, fmt.Errorf("ptype: argument calibration inverse failed: %w", err)
	}
	if !at.ValidRangeAppliesToCalibrated {
		if err := checkRange(at.ValidRange, raw); err != nil {
			return 0, err
		}
	}
	return int64(raw), nil
}

func checkArgIntRange(at *model.ArgumentType, v int64) (int64, error) {
	if err := checkRange(at.ValidRange, float64(v)); err != nil {
		return 0, err
	}
	return v, nil
}
