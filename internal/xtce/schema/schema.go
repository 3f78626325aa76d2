// Package schema builds a cross-reference index over a loaded
// model.SpaceSystem tree: parameter, type, and container lookup by
// qualified name, across arbitrarily nested child SpaceSystems, per
// spec §3/§9.
package schema

import (
	"fmt"
	"sort"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
)

// Index is the flattened, load-time-computed cross-reference over a
// SpaceSystem tree. It is immutable after Build and safe to share across
// goroutines, per spec §5.
type Index struct {
	root *model.SpaceSystem

	parameterTypes map[string]*model.ParameterType
	argumentTypes  map[string]*model.ArgumentType
	parameters     map[string]*model.Parameter
	arguments      map[string]*model.Argument
	containers     map[string]*model.Container
	metaCommands   map[string]*model.MetaCommand

	// children-by-base indexes containers by their BaseContainerRef,
	// sorted by qualified name so child selection sees a deterministic
	// order. Declaration order is not kept: SpaceSystem stores containers
	// in maps.
	childrenByBase map[string][]*model.Container
}

// Build walks root and its nested SpaceSystems, indexing every parameter
// type, argument type, parameter, container, and MetaCommand by qualified
// name. It fails on a duplicate name within the same namespace (spec §3
// invariant) or a dangling/cyclic container base reference.
func Build(root *model.SpaceSystem) (*Index, error) {
	idx := &Index{
		root:           root,
		parameterTypes: make(map[string]*model.ParameterType),
		argumentTypes:  make(map[string]*model.ArgumentType),
		parameters:     make(map[string]*model.Parameter),
		arguments:      make(map[string]*model.Argument),
		containers:     make(map[string]*model.Container),
		metaCommands:   make(map[string]*model.MetaCommand),
		childrenByBase: make(map[string][]*model.Container),
	}
	if err := idx.walk(root); err != nil {
		return nil, err
	}
	if err := idx.checkAcyclic(); err != nil {
		return nil, err
	}
	for _, c := range idx.containers {
		if c.BaseContainerRef != "" {
			idx.childrenByBase[c.BaseContainerRef] = append(idx.childrenByBase[c.BaseContainerRef], c)
		}
	}
	for _, kids := range idx.childrenByBase {
		sort.Slice(kids, func(i, j int) bool { return kids[i].Name < kids[j].Name })
	}
	return idx, nil
}

func (idx *Index) walk(ss *model.SpaceSystem) error {
	for name, t := range ss.ParameterTypes {
		if _, dup := idx.parameterTypes[name]; dup {
			return fmt.Errorf("schema: duplicate parameter type name %q", name)
		}
		idx.parameterTypes[name] = t
	}
	for name, t := range ss.ArgumentTypes {
		if _, dup := idx.argumentTypes[name]; dup {
			return fmt.Errorf("schema: duplicate argument type name %q", name)
		}
		idx.argumentTypes[name] = t
	}
	for name, p := range ss.Parameters {
		if _, dup := idx.parameters[name]; dup {
			return fmt.Errorf("schema: duplicate parameter name %q", name)
		}
		idx.parameters[name] = p
	}
	for name, a := range ss.Arguments {
		if _, dup := idx.arguments[name]; dup {
			return fmt.Errorf("schema: duplicate argument name %q", name)
		}
		idx.arguments[name] = a
	}
	for name, c := range ss.Containers {
		if _, dup := idx.containers[name]; dup {
			return fmt.Errorf("schema: duplicate container name %q", name)
		}
		idx.containers[name] = c
	}
	for name, mc := range ss.MetaCommands {
		if _, dup := idx.metaCommands[name]; dup {
			return fmt.Errorf("schema: duplicate meta command name %q", name)
		}
		idx.metaCommands[name] = mc
	}
	for _, child := range ss.Children {
		if err := idx.walk(child); err != nil {
			return err
		}
	}
	return nil
}

func (idx *Index) checkAcyclic() error {
	state := make(map[string]int) // 0 unvisited, 1 in-progress, 2 done
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case 2:
			return nil
		case 1:
			return fmt.Errorf("schema: cyclic container inheritance detected at %q", name)
		}
		state[name] = 1
		c, ok := idx.containers[name]
		if !ok {
			return fmt.Errorf("schema: dangling container reference %q", name)
		}
		if c.BaseContainerRef != "" {
			if err := visit(c.BaseContainerRef); err != nil {
				return err
			}
		}
		state[name] = 2
		return nil
	}
	for name := range idx.containers {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// ParameterType looks up a parameter type by fully qualified name.
func (idx *Index) ParameterType(name string) (*model.ParameterType, bool) {
	t, ok := idx.parameterTypes[name]
	return t, ok
}

// ResolveParameterType implements internal/xtce/ptype.TypeResolver.
func (idx *Index) ResolveParameterType(name string) (*model.ParameterType, bool) {
	return idx.ParameterType(name)
}

// ArgumentType looks up an argument type by fully qualified name.
func (idx *Index) ArgumentType(name string) (*model.ArgumentType, bool) {
	t, ok := idx.argumentTypes[name]
	return t, ok
}

// Parameter looks up a parameter by fully qualified name.
func (idx *Index) Parameter(name string) (*model.Parameter, bool) {
	p, ok := idx.parameters[name]
	return p, ok
}

// Argument looks up a MetaCommand argument by qualified
// "<MetaCommandQName>/<ArgName>" key, matching model.SpaceSystem.Arguments.
func (idx *Index) Argument(name string) (*model.Argument, bool) {
	a, ok := idx.arguments[name]
	return a, ok
}

// ParameterTypeOf resolves a parameter's declared type directly.
func (idx *Index) ParameterTypeOf(paramName string) (*model.ParameterType, error) {
	p, ok := idx.parameters[paramName]
	if !ok {
		return nil, fmt.Errorf("schema: dangling parameter reference %q", paramName)
	}
	t, ok := idx.parameterTypes[p.TypeRef]
	if !ok {
		return nil, fmt.Errorf("schema: parameter %q references unknown type %q", paramName, p.TypeRef)
	}
	return t, nil
}

// Container looks up a container by fully qualified name.
func (idx *Index) Container(name string) (*model.Container, bool) {
	c, ok := idx.containers[name]
	return c, ok
}

// MetaCommand looks up a MetaCommand by fully qualified name.
func (idx *Index) MetaCommand(name string) (*model.MetaCommand, bool) {
	mc, ok := idx.metaCommands[name]
	return mc, ok
}

// ChildrenOf returns the containers whose BaseContainerRef is baseName,
// sorted by qualified name.
func (idx *Index) ChildrenOf(baseName string) []*model.Container {
	return idx.childrenByBase[baseName]
}

// InheritanceChain returns the containers from the root of name's
// inheritance chain down to and including name itself.
func (idx *Index) InheritanceChain(name string) ([]*model.Container, error) {
	var chain []*model.Container
	cur := name
	seen := make(map[string]bool)
	for cur != "" {
		if seen[cur] {
			return nil, fmt.Errorf("schema: cyclic container inheritance detected at %q", cur)
		}
		seen[cur] = true
		c, ok := idx.containers[cur]
		if !ok {
			return nil, fmt.Errorf("schema: dangling container reference %q", cur)
		}
		chain = append([]*model.Container{c}, chain...)
		cur = c.BaseContainerRef
	}
	return chain, nil
}

// FlattenedEntries returns the full inherited entry list for container
// name: every ancestor's own entries, root first, followed by name's own
// entries, per spec §4.6.
func (idx *Index) FlattenedEntries(name string) ([]model.Entry, error) {
	chain, err := idx.InheritanceChain(name)
	if err != nil {
		return nil, err
	}
	var entries []model.Entry
	for _, c := range chain {
		entries = append(entries, c.Entries...)
	}
	return entries, nil
}

// CommandInheritanceChain returns the MetaCommands from the root of name's
// BaseCommandRef chain down to and including name itself, mirroring
// InheritanceChain for containers.
func (idx *Index) CommandInheritanceChain(name string) ([]*model.MetaCommand, error) {
	var chain []*model.MetaCommand
	cur := name
	seen := make(map[string]bool)
	for cur != "" {
		if seen[cur] {
			return nil, fmt.Errorf("schema: cyclic meta command inheritance detected at %q", cur)
		}
		seen[cur] = true
		mc, ok := idx.metaCommands[cur]
		if !ok {
			return nil, fmt.Errorf("schema: dangling meta command reference %q", cur)
		}
		chain = append([]*model.MetaCommand{mc}, chain...)
		cur = mc.BaseCommandRef
	}
	return chain, nil
}

// FlattenedCommandEntries returns the full inherited argument-assignment
// list and entry list for MetaCommand name: every ancestor's own
// assignments/entries, root first, followed by name's own.
func (idx *Index) FlattenedCommandEntries(name string) (model.ComparisonList, []model.Entry, error) {
	chain, err := idx.CommandInheritanceChain(name)
	if err != nil {
		return nil, nil, err
	}
	var assignments model.ComparisonList
	var entries []model.Entry
	for _, mc := range chain {
		assignments = append(assignments, mc.ArgumentAssignments...)
		entries = append(entries, mc.Entries...)
	}
	return assignments, entries, nil
}
