// Package container implements §4.6's container engine: inheritance
// flattening, restriction-driven child selection during decode, the
// ordered entry-list walk, and the inverse encode algorithm.
package container

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/bitstream"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/compare"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/enc"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/ptype"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/schema"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/xerr"
)

// Engine resolves and walks container entry lists against a loaded schema
// index. It holds no per-call state; Decode/Encode are pure functions of
// (schema, input), per spec §5.
type Engine struct {
	idx *schema.Index
}

// New returns an Engine over idx.
func New(idx *schema.Index) *Engine {
	return &Engine{idx: idx}
}

// decodeScope adapts a ValueMap + schema index to compare.Scope.
type decodeScope struct {
	vm  *ValueMap
	idx *schema.Index
}

func (s decodeScope) Lookup(parameterRef string) (compare.Value, *model.ParameterType, bool) {
	e, ok := s.vm.Get(parameterRef)
	if !ok {
		return compare.Value{}, nil, false
	}
	pt, err := s.idx.ParameterTypeOf(parameterRef)
	if err != nil {
		return compare.Value{}, nil, false
	}
	return compare.Value{Raw: e.Raw, Engineering: e.Engineering}, pt, true
}

// DecodePacket decodes data against rootContainerName, per spec §4.6. It
// returns the ordered ValueMap of every parameter decoded along the
// selected inheritance chain.
func (e *Engine) DecodePacket(rootContainerName string, data []byte) (*ValueMap, error) {
	r := bitstream.NewReader(data)
	scope := NewValueMap()
	if _, err := e.decodeWithSelection(r, rootContainerName, scope, r.PositionBits(), rootContainerName); err != nil {
		return nil, err
	}
	return scope, nil
}

// decodeWithSelection decodes containerName's full inherited entry list,
// then cascades through matching children until none match, writing every
// decoded parameter into scope. containerStartBit anchors
// locationInContainerInBits's start_of_container reference for this
// cascade. It returns the name of the most specific container selected.
func (e *Engine) decodeWithSelection(r *bitstream.Reader, containerName string, scope *ValueMap, containerStartBit int64, path string) (string, error) {
	entries, err := e.idx.FlattenedEntries(containerName)
	if err != nil {
		return "", xerr.NewSchema(path, err)
	}
	if err := e.decodeEntryList(r, entries, scope, containerStartBit, path); err != nil {
		return "", err
	}

	cur := containerName
	for {
		children := e.idx.ChildrenOf(cur)
		var matched []*model.Container
		for _, c := range children {
			ok, err := compare.Evaluate(c.Restriction, decodeScope{scope, e.idx})
			if err != nil {
				return "", xerr.NewDecode(path, fmt.Errorf("evaluating restriction for candidate child %q: %w", c.Name, err))
			}
			if ok {
				matched = append(matched, c)
			}
		}
		if len(matched) == 0 {
			break
		}
		if len(matched) > 1 {
			names := make([]string, len(matched))
			for i, c := range matched {
				names[i] = c.Name
			}
			sort.Strings(names)
			return "", xerr.NewDecode(path, fmt.Errorf("ambiguous child containers for base %q: %s", cur, strings.Join(names, ", ")))
		}
		child := matched[0]
		childPath := path + " > " + child.Name
		if err := e.decodeEntryList(r, child.Entries, scope, containerStartBit, childPath); err != nil {
			return "", err
		}
		cur = child.Name
		path = childPath
	}
	return cur, nil
}

func (e *Engine) decodeEntryList(r *bitstream.Reader, entries []model.Entry, scope *ValueMap, containerStartBit int64, path string) error {
	for i, entry := range entries {
		entryPath := fmt.Sprintf("%s[entry %d]", path, i)
		switch entry.Kind {
		case model.EntryParameterRef:
			if entry.HasLocation {
				r.SeekBits(locationTarget(entry, containerStartBit, r.PositionBits()))
			}
			pt, err := e.idx.ParameterTypeOf(entry.ParameterRef)
			if err != nil {
				return xerr.NewSchema(entryPath, err)
			}
			sizeOf := scopeSizeLookup(scope)
			d, err := ptype.DecodeParameter(r, pt, sizeOf, e.idx)
			if err != nil {
				return xerr.NewDecode(entryPath+" ("+entry.ParameterRef+")", err)
			}
			scope.SetFlagged(entry.ParameterRef, d.Raw, d.Engineering, d.Unrecognized)

		case model.EntryArgumentRef:
			return xerr.NewDecode(entryPath, fmt.Errorf("argument reference entries are not valid in a decode direction"))

		case model.EntryContainerRef:
			if len(entry.IncludeCondition) > 0 {
				ok, err := compare.Evaluate(entry.IncludeCondition, decodeScope{scope, e.idx})
				if err != nil {
					return xerr.NewDecode(entryPath, fmt.Errorf("evaluating include condition: %w", err))
				}
				if !ok {
					continue
				}
			}
			if _, err := e.decodeWithSelection(r, entry.ContainerRef, scope, r.PositionBits(), entryPath+" ("+entry.ContainerRef+")"); err != nil {
				return err
			}

		case model.EntryFixedValue:
			if entry.SizeInBits <= 0 {
				return xerr.NewSchema(entryPath, fmt.Errorf("fixed value entry has non-positive width %d", entry.SizeInBits))
			}
			if entry.SizeInBits%8 == 0 {
				// Byte-wise comparison has no width bound, per spec §3 (a
				// sync marker or other fixed field may exceed 64 bits).
				got, err := r.ReadBytes(entry.SizeInBits)
				if err != nil {
					return xerr.NewDecode(entryPath, err)
				}
				if !bytes.Equal(got, entry.HexValue) {
					return xerr.NewDecode(entryPath, fmt.Errorf("fixed value mismatch: got %s, want %s", hex.EncodeToString(got), hex.EncodeToString(entry.HexValue)))
				}
			} else {
				if entry.SizeInBits > 64 {
					return xerr.NewSchema(entryPath, fmt.Errorf("fixed value entry width %d is not a multiple of 8 and exceeds the 64-bit unsigned comparison limit", entry.SizeInBits))
				}
				got, err := r.ReadUnsigned(entry.SizeInBits)
				if err != nil {
					return xerr.NewDecode(entryPath, err)
				}
				want := bytesToUint(entry.HexValue)
				if got != want {
					return xerr.NewDecode(entryPath, fmt.Errorf("fixed value mismatch: got 0x%x, want 0x%x (%s)", got, want, hex.EncodeToString(entry.HexValue)))
				}
			}

		default:
			return xerr.NewSchema(entryPath, fmt.Errorf("unsupported entry kind %d", entry.Kind))
		}
	}
	return nil
}

func locationTarget(entry model.Entry, containerStartBit, currentPos int64) int64 {
	switch entry.LocationReference {
	case model.LocationStartOfContainer:
		return containerStartBit + entry.OffsetBits
	case model.LocationPreviousEntry:
		return currentPos + entry.OffsetBits
	default:
		return currentPos
	}
}

func bytesToUint(b []byte) uint64 {
	var v uint64
	for _, by := range b {
		v = v<<8 | uint64(by)
	}
	return v
}

func scopeSizeLookup(scope *ValueMap) enc.SizeLookup {
	return func(name string) (int64, bool) {
		e, ok := scope.Get(name)
		if !ok {
			return 0, false
		}
		switch v := e.Engineering.(type) {
		case int64:
			return v, true
		case int:
			return int64(v), true
		}
		switch v := e.Raw.(type) {
		case int64:
			return v, true
		case int:
			return int64(v), true
		}
		return 0, false
	}
}
