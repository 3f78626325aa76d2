package container

// ValueEntry is one decoded parameter in a ValueMap, per spec §6: an
// ordered mapping from qualified parameter name to {raw, engineering}.
type ValueEntry struct {
	Name        string
	Raw         interface{}
	Engineering interface{}
	// Unrecognized is set when Engineering is an Enumerated parameter's raw
	// integer because no EnumerationList label matched it.
	Unrecognized bool
}

// ValueMap is the ordered result of a packet decode.
type ValueMap struct {
	entries []ValueEntry
	index   map[string]int
}

// NewValueMap returns an empty ValueMap.
func NewValueMap() *ValueMap {
	return &ValueMap{index: make(map[string]int)}
}

// Set records or overwrites name's decoded value, preserving first-seen
// order.
func (vm *ValueMap) Set(name string, raw, engineering interface{}) {
	vm.SetFlagged(name, raw, engineering, false)
}

// SetFlagged is Set with an explicit Unrecognized flag, used when decoding
// an Enumerated parameter whose raw value matched no label.
func (vm *ValueMap) SetFlagged(name string, raw, engineering interface{}, unrecognized bool) {
	if i, ok := vm.index[name]; ok {
		vm.entries[i].Raw = raw
		vm.entries[i].Engineering = engineering
		vm.entries[i].Unrecognized = unrecognized
		return
	}
	vm.index[name] = len(vm.entries)
	vm.entries = append(vm.entries, ValueEntry{Name: name, Raw: raw, Engineering: engineering, Unrecognized: unrecognized})
}

// Get looks up a previously decoded parameter by qualified name.
func (vm *ValueMap) Get(name string) (ValueEntry, bool) {
	i, ok := vm.index[name]
	if !ok {
		return ValueEntry{}, false
	}
	return vm.entries[i], true
}

// Entries returns the decoded values in decode order.
func (vm *ValueMap) Entries() []ValueEntry {
	return vm.entries
}
