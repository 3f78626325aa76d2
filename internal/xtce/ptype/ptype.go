// Package ptype composes an encoding, optional calibration, range
// constraints, enumeration labels, boolean truth strings, array element
// typing, and absolute-time epoch semantics into the decode/encode contract
// for a single parameter or argument type, per spec §4.4.
package ptype

import (
	"fmt"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/bitstream"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/calib"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/enc"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
)

// TypeResolver looks up a parameter type by name, used to resolve Array
// element types.
type TypeResolver interface {
	ResolveParameterType(name string) (*model.ParameterType, bool)
}

// Decoded holds both the raw (pre-calibration) and engineering
// (post-calibration/interpretation) value produced by a decode.
type Decoded struct {
	Raw         interface{}
	Engineering interface{}
	// Unrecognized is set when an Enumerated parameter's raw value matched
	// no EnumerationList label; Engineering then holds the raw integer
	// rather than a label, per spec §4.4.
	Unrecognized bool
}

// DecodeParameter reads one value of the given ParameterType from r.
// sizeOf resolves dynamic String/Binary/Array sizing against the running
// decode scope; resolver resolves Array element types.
func DecodeParameter(r *bitstream.Reader, pt *model.ParameterType, sizeOf enc.SizeLookup, resolver TypeResolver) (Decoded, error) {
	switch pt.Kind {
	case model.PTInteger:
		raw, err := enc.DecodeInteger(r, &pt.Encoding)
		if err != nil {
			return Decoded{}, err
		}
		eng, err := calibrateInt(pt.Calibrator, raw)
		if err != nil {
			return Decoded{}, err
		}
		return Decoded{Raw: raw, Engineering: eng}, nil

	case model.PTFloat:
		var rawEng float64
		var raw interface{}
		if pt.Encoding.Kind == model.EncodingFloat {
			v, err := enc.DecodeFloat(r, &pt.Encoding)
			if err != nil {
				return Decoded{}, err
			}
			raw = v
			rawEng = v
		} else {
			v, err := enc.DecodeInteger(r, &pt.Encoding)
			if err != nil {
				return Decoded{}, err
			}
			raw = v
			rawEng = float64(v)
		}
		eng := rawEng
		if pt.Calibrator != nil {
			var err error
			eng, err = calib.Eval(pt.Calibrator, rawEng)
			if err != nil {
				return Decoded{}, err
			}
		}
		return Decoded{Raw: raw, Engineering: eng}, nil

	case model.PTEnumerated:
		raw, err := enc.DecodeInteger(r, &pt.Encoding)
		if err != nil {
			return Decoded{}, err
		}
		if label, ok := lookupLabel(pt.EnumLabels, raw); ok {
			return Decoded{Raw: raw, Engineering: label}, nil
		}
		// Unknown raw value: decode to the raw integer, flagged, per spec §4.4.
		return Decoded{Raw: raw, Engineering: raw, Unrecognized: true}, nil

	case model.PTBoolean:
		raw, err := enc.DecodeInteger(r, &pt.Encoding)
		if err != nil {
			return Decoded{}, err
		}
		zero, one := boolStrings(pt.ZeroString, pt.OneString)
		if raw == 0 {
			return Decoded{Raw: raw, Engineering: zero}, nil
		}
		return Decoded{Raw: raw, Engineering: one}, nil

	case model.PTString:
		s, err := enc.DecodeString(r, &pt.Encoding, sizeOf)
		if err != nil {
			return Decoded{}, err
		}
		return Decoded{Raw: s, Engineering: s}, nil

	case model.PTBinary:
		b, err := enc.DecodeBinary(r, &pt.Encoding, sizeOf)
		if err != nil {
			return Decoded{}, err
		}
		return Decoded{Raw: b, Engineering: b}, nil

	case model.PTAbsoluteTime:
		raw, err := r.ReadUnsigned(32)
		if err != nil {
			return Decoded{}, err
		}
		eng := pt.EpochOffsetSeconds + float64(raw)*scaleOrOne(pt.Scale)
		return Decoded{Raw: int64(raw), Engineering: eng}, nil

	case model.PTArray:
		return decodeArray(r, pt, sizeOf, resolver)

	default:
		return Decoded{}, fmt.Errorf("ptype: unsupported parameter type kind %d", pt.Kind)
	}
}

// EncodeParameter writes an engineering value of the given ParameterType to
// w.
func EncodeParameter(w *bitstream.Writer, pt *model.ParameterType, eng interface{}) error {
	switch pt.Kind {
	case model.PTInteger:
		raw, err := inverseInt(pt.Calibrator, &pt.NamedType, eng)
		if err != nil {
			return err
		}
		return enc.EncodeInteger(w, &pt.Encoding, raw)

	case model.PTFloat:
		f, err := toFloat(eng)
		if err != nil {
			return err
		}
		if err := checkRange(pt.ValidRange, f); err != nil {
			return err
		}
		raw := f
		if pt.Calibrator != nil {
			raw, err = calib.Inverse(pt.Calibrator, f, pt.ValidRange)
			if err != nil {
				return fmt.Errorf("ptype: calibration inverse failed: %w", err)
			}
		}
		if pt.Encoding.Kind == model.EncodingFloat {
			return enc.EncodeFloat(w, &pt.Encoding, raw)
		}
		return enc.EncodeInteger(w, &pt.Encoding, int64(raw))

	case model.PTEnumerated:
		raw, err := resolveEnumValue(pt.EnumLabels, eng)
		if err != nil {
			return err
		}
		return enc.EncodeInteger(w, &pt.Encoding, raw)

	case model.PTBoolean:
		s, ok := eng.(string)
		if !ok {
			return fmt.Errorf("ptype: boolean encode expects a string, got %T", eng)
		}
		zero, one := boolStrings(pt.ZeroString, pt.OneString)
		switch s {
		case zero:
			return enc.EncodeInteger(w, &pt.Encoding, 0)
		case one:
			return enc.EncodeInteger(w, &pt.Encoding, 1)
		default:
			return fmt.Errorf("ptype: boolean value %q matches neither %q nor %q", s, zero, one)
		}

	case model.PTString:
		s, ok := eng.(string)
		if !ok {
			return fmt.Errorf("ptype: string encode expects a string, got %T", eng)
		}
		return enc.EncodeString(w, &pt.Encoding, s)

	case model.PTBinary:
		b, ok := eng.([]byte)
		if !ok {
			return fmt.Errorf("ptype: binary encode expects []byte, got %T", eng)
		}
		return enc.EncodeBinary(w, &pt.Encoding, b)

	case model.PTAbsoluteTime:
		f, err := toFloat(eng)
		if err != nil {
			return err
		}
		raw := (f - pt.EpochOffsetSeconds) / scaleOrOne(pt.Scale)
		if raw < 0 || raw > float64(^uint32(0)) {
			return fmt.Errorf("ptype: absolute time value out of unsigned 32-bit range")
		}
		return w.WriteUnsigned(uint64(raw), 32)

	default:
		return fmt.Errorf("ptype: unsupported parameter type kind %d for encode (use EncodeArray)", pt.Kind)
	}
}

func scaleOrOne(s float64) float64 {
	if s == 0 {
		return 1
	}
	return s
}

func boolStrings(zero, one string) (string, string) {
	if zero == "" {
		zero = "False"
	}
	if one == "" {
		one = "True"
	}
	return zero, one
}

func lookupLabel(labels []model.EnumLabel, v int64) (string, bool) {
	for _, l := range labels {
		if l.Value == v {
			return l.Label, true
		}
	}
	return "", false
}

func resolveEnumValue(labels []model.EnumLabel, eng interface{}) (int64, error) {
	switch v := eng.(type) {
	case string:
		for _, l := range labels {
			if l.Label == v {
				return l.Value, nil
			}
		}
		return 0, fmt.Errorf("ptype: unknown enum label %q", v)
	case int64:
		for _, l := range labels {
			if l.Value == v {
				return v, nil
			}
		}
		return 0, fmt.Errorf("ptype: unknown enum value %d", v)
	case int:
		return resolveEnumValue(labels, int64(v))
	default:
		return 0, fmt.Errorf("ptype: enum encode expects a string label or integer value, got %T", eng)
	}
}

func toFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int:
		return float64(t), nil
	default:
		return 0, fmt.Errorf("ptype: expected a numeric value, got %T", v)
	}
}

func checkRange(rng *model.ValidRange, v float64) error {
	if rng == nil {
		return nil
	}
	if rng.HasMin && v < rng.Min {
		return fmt.Errorf("ptype: value %v below minimum %v", v, rng.Min)
	}
	if rng.HasMax && v > rng.Max {
		return fmt.Errorf("ptype: value %v above maximum %v", v, rng.Max)
	}
	return nil
}

func calibrateInt(c *model.Calibrator, raw int64) (interface{}, error) {
	if c == nil {
		return raw, nil
	}
	v, err := calib.Eval(c, float64(raw))
	if err != nil {
		return nil, err
	}
	return v, nil
}

// inverseInt computes the raw integer to encode for an Integer
// ParameterType's engineering value, honoring validRange against the
// calibrated value per spec §4.4.
func inverseInt(c *model.Calibrator, nt *model.NamedType, eng interface{}) (int64, error) {
	if c == nil {
		switch v := eng.(type) {
		case int64:
			return checkIntRange(nt.ValidRange, v)
		case int:
			return checkIntRange(nt.ValidRange, int64(v))
		case float64:
			return checkIntRange(nt.ValidRange, int64(v))
		default:
			return 0, fmt.Errorf("ptype: integer encode expects a numeric value, got %T", eng)
		}
	}
	f, err := toFloat(eng)
	if err != nil {
		return 0, err
	}
	if err := checkRange(nt.ValidRange, f); err != nil {
		return 0, err
	}
	raw, err := calib.Inverse(c, f, nt.ValidRange)
	if err != nil {
		return 0, fmt.Errorf("ptype: calibration inverse failed: %w", err)
	}
	return int64(raw), nil
}

func checkIntRange(rng *model.ValidRange, v int64) (int64, error) {
	if err := checkRange(rng, float64(v)); err != nil {
		return 0, err
	}
	return v, nil
}

func decodeArray(r *bitstream.Reader, pt *model.ParameterType, sizeOf enc.SizeLookup, resolver TypeResolver) (Decoded, error) {
	elemType, ok := resolver.ResolveParameterType(pt.ElementTypeRef)
	if !ok {
		return Decoded{}, fmt.Errorf("ptype: array element type %q not found", pt.ElementTypeRef)
	}
	n := int64(pt.ArrayFixedLen)
	if pt.ArrayLenParamRef != "" {
		v, ok := sizeOf(pt.ArrayLenParamRef)
		if !ok {
			return Decoded{}, fmt.Errorf("ptype: array length parameter %q not yet decoded", pt.ArrayLenParamRef)
		}
		n = v
	}
	if n < 0 {
		return Decoded{}, fmt.Errorf("ptype: negative array length %d", n)
	}
	rawElems := make([]interface{}, 0, n)
	engElems := make([]interface{}, 0, n)
	for i := int64(0); i < n; i++ {
		d, err := DecodeParameter(r, elemType, sizeOf, resolver)
		if err != nil {
			return Decoded{}, fmt.Errorf("ptype: array element %d: %w", i, err)
		}
		rawElems = append(rawElems, d.Raw)
		engElems = append(engElems, d.Engineering)
	}
	return Decoded{Raw: rawElems, Engineering: engElems}, nil
}

// EncodeArray writes an Array ParameterType's engineering value (a slice)
// to w. It is split from EncodeParameter because array element encoding
// needs the resolver that scalar encodes do not.
func EncodeArray(w *bitstream.Writer, pt *model.ParameterType, eng interface{}, resolver TypeResolver) error {
	if pt.Kind != model.PTArray {
		return fmt.Errorf("ptype: EncodeArray called on non-array type %q", pt.Name)
	}
	elemType, ok := resolver.ResolveParameterType(pt.ElementTypeRef)
	if !ok {
		return fmt.Errorf("ptype: array element type %q not found", pt.ElementTypeRef)
	}
	elems, ok := eng.([]interface{})
	if !ok {
		return fmt.Errorf("ptype: array encode expects []interface{}, got %T", eng)
	}
	declaredLen := pt.ArrayFixedLen
	if pt.ArrayLenParamRef != "" {
		declaredLen = len(elems)
	}
	if len(elems) != declaredLen {
		return fmt.Errorf("ptype: array has %d elements, declared length is %d", len(elems), declaredLen)
	}
	for i, e := range elems {
		if elemType.Kind == model.PTArray {
			if err := EncodeArray(w, elemType, e, resolver); err != nil {
				return fmt.Errorf("ptype: array element %d: %w", i, err)
			}
			continue
		}
		if err := EncodeParameter(w, elemType, e); err != nil {
			return fmt.Errorf("ptype: array element %d: %w", i, err)
		}
	}
	return nil
}
