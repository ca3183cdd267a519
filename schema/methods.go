package schema

import (
	"encoding/json"
	"fmt"
)

// MethodTable maps method names to their overloads, remembering the order
// in which names were first added.
type MethodTable struct {
	names  []string
	byName map[string][]*Method
}

// NewMethodTable returns an empty table.
func NewMethodTable() *MethodTable {
	return &MethodTable{byName: make(map[string][]*Method)}
}

// Add appends overloads under name. A name seen for the first time is
// placed after all existing names.
func (t *MethodTable) Add(name string, methods ...*Method) {
	if t.byName == nil {
		t.byName = make(map[string][]*Method)
	}
	if _, ok := t.byName[name]; !ok {
		t.names = append(t.names, name)
	}
	t.byName[name] = append(t.byName[name], methods...)
}

// Get returns the overloads registered under name.
func (t *MethodTable) Get(name string) []*Method {
	if t == nil {
		return nil
	}
	return t.byName[name]
}

// Has reports whether name is present.
func (t *MethodTable) Has(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.byName[name]
	return ok
}

// Names returns the method names in insertion order.
func (t *MethodTable) Names() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.names...)
}

// Len returns the number of distinct method names.
func (t *MethodTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Range calls fn for every (name, overload) pair in table order and stops
// early when fn returns false.
func (t *MethodTable) Range(fn func(name string, m *Method) bool) {
	if t == nil {
		return
	}
	for _, name := range t.names {
		for _, m := range t.byName[name] {
			if !fn(name, m) {
				return
			}
		}
	}
}

type methodEntry struct {
	Name      string    `json:"name"`
	Overloads []*Method `json:"overloads"`
}

// MarshalJSON encodes the table as an ordered array of entries.
func (t *MethodTable) MarshalJSON() ([]byte, error) {
	entries := make([]methodEntry, 0, t.Len())
	if t != nil {
		for _, name := range t.names {
			entries = append(entries, methodEntry{Name: name, Overloads: t.byName[name]})
		}
	}
	return json.Marshal(entries)
}

// UnmarshalJSON decodes an ordered array of entries. Repeated names are
// merged into the first occurrence.
func (t *MethodTable) UnmarshalJSON(data []byte) error {
	var entries []methodEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("schema: decode method table: %w", err)
	}
	*t = MethodTable{byName: make(map[string][]*Method, len(entries))}
	for _, e := range entries {
		t.Add(e.Name, e.Overloads...)
	}
	return nil
}
