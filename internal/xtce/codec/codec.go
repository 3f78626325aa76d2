// Package codec is the public entry point described in spec §6: given a
// loaded schema and wire bytes (or vice versa), decode or encode a
// container or command, attaching path context to every error per §7.
package codec

import (
	"fmt"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/container"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/schema"
)

// Schema is a loaded, indexed XTCE document ready for repeated decode/encode
// calls. It holds no per-call state and is safe to share across goroutines,
// per spec §5.
type Schema struct {
	idx    *schema.Index
	engine *container.Engine
}

// Load indexes root (as produced by an XTCE loader) and returns a Schema
// ready for DecodePacket/EncodePacket/EncodeCommand.
func Load(root *model.SpaceSystem) (*Schema, error) {
	idx, err := schema.Build(root)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	return &Schema{idx: idx, engine: container.New(idx)}, nil
}

// Value is one decoded parameter: its qualified name, raw (pre-calibration)
// value, and engineering (post-calibration) value.
type Value struct {
	Name        string
	Raw         interface{}
	Engineering interface{}
	// Unrecognized is set when Engineering is an Enumerated parameter's raw
	// integer because no EnumerationList label matched it, per spec §4.4.
	Unrecognized bool
}

// Result is the ordered decode of a packet, per spec §6.
type Result struct {
	Container string
	Values    []Value
}

// DecodePacket decodes data against the container named rootContainerName,
// selecting the most specific inherited child whose restriction matches at
// each level (spec §4.6). It returns every decoded parameter in decode
// order, or a *xerr.SchemaError/*xerr.DecodeError on failure with no
// partial result.
func (s *Schema) DecodePacket(rootContainerName string, data []byte) (*Result, error) {
	vm, err := s.engine.DecodePacket(rootContainerName, data)
	if err != nil {
		return nil, err
	}
	result := &Result{Container: rootContainerName}
	for _, e := range vm.Entries() {
		result.Values = append(result.Values, Value{Name: e.Name, Raw: e.Raw, Engineering: e.Engineering, Unrecognized: e.Unrecognized})
	}
	return result, nil
}

// EncodePacket assembles wire bytes for the container named containerName
// from values (qualified parameter name -> engineering value). Values
// implied by an equality restriction on containerName's inheritance chain
// may be omitted; they are filled in automatically (spec §4.6 encode step
// 2). Returns a *xerr.SchemaError/*xerr.EncodeError on failure.
func (s *Schema) EncodePacket(containerName string, values map[string]interface{}) ([]byte, error) {
	return s.engine.EncodePacket(containerName, values)
}

// EncodeCommand assembles wire bytes for the MetaCommand named
// metaCommandName from values (plain argument name -> engineering value).
// Arguments fixed by command inheritance may be omitted. Returns a
// *xerr.SchemaError/*xerr.EncodeError on failure.
func (s *Schema) EncodeCommand(metaCommandName string, values map[string]interface{}) ([]byte, error) {
	return s.engine.EncodeCommand(metaCommandName, values)
}

// ParameterType looks up a parameter type by qualified name, for callers
// building a UI or CLI around a loaded schema.
func (s *Schema) ParameterType(name string) (*model.ParameterType, bool) {
	return s.idx.ParameterType(name)
}

// ArgumentType looks up an argument type by qualified name.
func (s *Schema) ArgumentType(name string) (*model.ArgumentType, bool) {
	return s.idx.ArgumentType(name)
}

// Container looks up a container by qualified name.
func (s *Schema) Container(name string) (*model.Container, bool) {
	return s.idx.Container(name)
}

// MetaCommand looks up a MetaCommand by qualified name.
func (s *Schema) MetaCommand(name string) (*model.MetaCommand, bool) {
	return s.idx.MetaCommand(name)
}
