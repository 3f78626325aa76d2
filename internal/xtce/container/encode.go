package container

import (
	"fmt"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/bitstream"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/compare"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/ptype"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/xerr"
)

// encodeScope adapts a plain engineering-value map to compare.Scope for
// restriction checking during encode. It always compares against the
// engineering value regardless of a Comparison's UseCalibratedValue flag,
// since encode callers supply engineering values only (see DESIGN.md).
type encodeScope struct {
	values map[string]interface{}
	idx    interface {
		ParameterTypeOf(string) (*model.ParameterType, error)
	}
}

func (s encodeScope) Lookup(parameterRef string) (compare.Value, *model.ParameterType, bool) {
	v, ok := s.values[parameterRef]
	if !ok {
		return compare.Value{}, nil, false
	}
	pt, err := s.idx.ParameterTypeOf(parameterRef)
	if err != nil {
		return compare.Value{}, nil, false
	}
	return compare.Value{Raw: v, Engineering: v}, pt, true
}

// EncodePacket assembles a byte buffer for containerName from values
// (qualified parameter name -> engineering value), per spec §4.6's encode
// algorithm.
func (e *Engine) EncodePacket(containerName string, values map[string]interface{}) ([]byte, error) {
	chain, err := e.idx.InheritanceChain(containerName)
	if err != nil {
		return nil, xerr.NewSchema(containerName, err)
	}

	work := make(map[string]interface{}, len(values))
	for k, v := range values {
		work[k] = v
	}
	scope := encodeScope{values: work, idx: e.idx}

	for _, c := range chain {
		if err := e.autoPopulateRestriction(c.Restriction, work); err != nil {
			return nil, xerr.NewEncode(containerName, err)
		}
	}
	for _, c := range chain {
		ok, err := compare.Evaluate(c.Restriction, scope)
		if err != nil {
			return nil, xerr.NewEncode(containerName, fmt.Errorf("evaluating restriction for %q: %w", c.Name, err))
		}
		if !ok {
			return nil, xerr.NewEncode(containerName, fmt.Errorf("provided values do not satisfy restriction on container %q", c.Name))
		}
	}

	entries, err := e.idx.FlattenedEntries(containerName)
	if err != nil {
		return nil, xerr.NewSchema(containerName, err)
	}
	w := bitstream.NewWriter()
	if err := e.encodeEntryList(w, entries, work, w.PositionBits(), containerName); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// autoPopulateRestriction fills in values implied by equality restrictions
// (spec §4.6 encode step 2) when the caller did not already supply them,
// coercing the comparison's string literal to the referenced parameter's
// engineering representation so both restriction evaluation and the later
// entry-list encode see a well-typed value.
func (e *Engine) autoPopulateRestriction(list model.ComparisonList, values map[string]interface{}) error {
	for _, c := range list {
		if c.Op != model.OpEQ {
			continue
		}
		if _, ok := values[c.ParameterRef]; ok {
			continue
		}
		pt, err := e.idx.ParameterTypeOf(c.ParameterRef)
		if err != nil {
			return err
		}
		v, err := coerceForType(pt, c.Value)
		if err != nil {
			return fmt.Errorf("restriction value for %q: %w", c.ParameterRef, err)
		}
		values[c.ParameterRef] = v
	}
	return nil
}

func (e *Engine) encodeEntryList(w *bitstream.Writer, entries []model.Entry, values map[string]interface{}, containerStartBit int64, path string) error {
	for i, entry := range entries {
		entryPath := fmt.Sprintf("%s[entry %d]", path, i)
		switch entry.Kind {
		case model.EntryParameterRef:
			if entry.HasLocation {
				w.SeekBits(locationTarget(entry, containerStartBit, w.PositionBits()))
			}
			pt, err := e.idx.ParameterTypeOf(entry.ParameterRef)
			if err != nil {
				return xerr.NewSchema(entryPath, err)
			}
			v, ok := values[entry.ParameterRef]
			if !ok {
				return xerr.NewEncode(entryPath, fmt.Errorf("missing value for parameter %q", entry.ParameterRef))
			}
			v, err = coerceForType(pt, v)
			if err != nil {
				return xerr.NewEncode(entryPath+" ("+entry.ParameterRef+")", err)
			}
			if pt.Kind == model.PTArray {
				err = ptype.EncodeArray(w, pt, v, e.idx)
			} else {
				err = ptype.EncodeParameter(w, pt, v)
			}
			if err != nil {
				return xerr.NewEncode(entryPath+" ("+entry.ParameterRef+")", err)
			}

		case model.EntryArgumentRef:
			arg, ok := e.idx.Argument(entry.ArgumentRef)
			if !ok {
				return xerr.NewSchema(entryPath, fmt.Errorf("dangling argument reference %q", entry.ArgumentRef))
			}
			at, ok := e.idx.ArgumentType(arg.TypeRef)
			if !ok {
				return xerr.NewSchema(entryPath, fmt.Errorf("argument %q references unknown type %q", entry.ArgumentRef, arg.TypeRef))
			}
			v, ok := values[entry.ArgumentRef]
			if !ok {
				return xerr.NewEncode(entryPath, fmt.Errorf("missing value for argument %q", entry.ArgumentRef))
			}
			if err := ptype.EncodeArgument(w, at, v, e.idx); err != nil {
				return xerr.NewEncode(entryPath+" ("+entry.ArgumentRef+")", err)
			}

		case model.EntryContainerRef:
			if len(entry.IncludeCondition) > 0 {
				ok, err := compare.Evaluate(entry.IncludeCondition, encodeScope{values: values, idx: e.idx})
				if err != nil {
					return xerr.NewEncode(entryPath, fmt.Errorf("evaluating include condition: %w", err))
				}
				if !ok {
					continue
				}
			}
			subEntries, err := e.idx.FlattenedEntries(entry.ContainerRef)
			if err != nil {
				return xerr.NewSchema(entryPath, err)
			}
			if err := e.encodeEntryList(w, subEntries, values, w.PositionBits(), entryPath+" ("+entry.ContainerRef+")"); err != nil {
				return err
			}

		case model.EntryFixedValue:
			if entry.SizeInBits <= 0 {
				return xerr.NewSchema(entryPath, fmt.Errorf("fixed value entry has non-positive width %d", entry.SizeInBits))
			}
			if entry.SizeInBits%8 == 0 {
				// Byte-wise write has no width bound, per spec §3 (a sync
				// marker or other fixed field may exceed 64 bits).
				if err := w.WriteBytes(entry.HexValue); err != nil {
					return xerr.NewEncode(entryPath, err)
				}
			} else {
				if entry.SizeInBits > 64 {
					return xerr.NewSchema(entryPath, fmt.Errorf("fixed value entry width %d is not a multiple of 8 and exceeds the 64-bit unsigned write limit", entry.SizeInBits))
				}
				if err := w.WriteUnsigned(bytesToUint(entry.HexValue), entry.SizeInBits); err != nil {
					return xerr.NewEncode(entryPath, err)
				}
			}

		default:
			return xerr.NewSchema(entryPath, fmt.Errorf("unsupported entry kind %d", entry.Kind))
		}
	}
	return nil
}

// coerceForType parses string-typed auto-populated restriction values into
// float64 for Integer, Float and AbsoluteTime parameter types so
// ptype.EncodeParameter receives a number; strings for other kinds (enum
// labels, boolean strings) and non-string values pass through unchanged.
func coerceForType(pt *model.ParameterType, v interface{}) (interface{}, error) {
	s, isString := v.(string)
	if !isString {
		return v, nil
	}
	switch pt.Kind {
	case model.PTInteger, model.PTFloat, model.PTAbsoluteTime:
		return parseNumericString(s)
	default:
		return v, nil
	}
}

func parseNumericString(s string) (interface{}, error) {
	var f float64
	if _, err := fmt.Sscanf(s, "%g", &f); err != nil {
		return nil, fmt.Errorf("cannot interpret restriction-derived value %q as numeric", s)
	}
	return f, nil
}
