// Package statics implements the static-field storage, string intern
// table, and class-mirror intern table (spec C8). All three are
// shared, VM-lifetime-long tables guarded by a mutex, the same shape
// Jacobin gives its global Classes map.
package statics

import (
	"sync"

	"github.com/z-yn/litejvm/internal/types"
	"github.com/z-yn/litejvm/internal/vmerrors"
)

// Table holds every loaded class's static field slots, keyed first by
// owning class name then by field name. A class's entry is created
// once, at link time, by DefineClass; reads/writes afterward never
// resize the outer map, so lookups never need to upgrade from a read
// lock.
type Table struct {
	mu     sync.RWMutex
	fields map[string]map[string]types.Value
}

// New returns an empty static-field table.
func New() *Table {
	return &Table{fields: make(map[string]map[string]types.Value)}
}

// DefineClass reserves storage for className's static fields, seeding
// each with the zero value appropriate to its descriptor. It is called
// once per class, during linking, before any GetStatic/PutStatic.
func (t *Table) DefineClass(className string, fieldDescriptors map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.fields[className]; exists {
		return
	}
	slots := make(map[string]types.Value, len(fieldDescriptors))
	for name, desc := range fieldDescriptors {
		slots[name] = types.ZeroFor(desc)
	}
	t.fields[className] = slots
}

// Get reads a static field's current value.
func (t *Table) Get(className, fieldName string) (types.Value, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	slots, ok := t.fields[className]
	if !ok {
		return types.Value{}, vmerrors.New(vmerrors.ClassNotFound, "no static storage for class %s", className)
	}
	v, ok := slots[fieldName]
	if !ok {
		return types.Value{}, vmerrors.New(vmerrors.FieldNotFound, "no static field %s.%s", className, fieldName)
	}
	return v, nil
}

// Set writes a static field's value.
func (t *Table) Set(className, fieldName string, v types.Value) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	slots, ok := t.fields[className]
	if !ok {
		return vmerrors.New(vmerrors.ClassNotFound, "no static storage for class %s", className)
	}
	if _, ok := slots[fieldName]; !ok {
		return vmerrors.New(vmerrors.FieldNotFound, "no static field %s.%s", className, fieldName)
	}
	slots[fieldName] = v
	return nil
}

// InternTable maps distinct keys (string contents, class names) to a
// single canonical heap reference, so that repeated ldc of the same
// string constant or repeated Class-object lookups for the same class
// return the identical reference — required for `==` and `intern()`
// semantics on interned strings per spec section 7.
type InternTable struct {
	mu      sync.Mutex
	entries map[string]types.Ref
}

// NewInternTable returns an empty intern table.
func NewInternTable() *InternTable {
	return &InternTable{entries: make(map[string]types.Ref)}
}

// Intern returns the existing reference for key if one was already
// recorded, and whether it was found. Callers allocate the backing
// object only on a miss, then call Put to record it.
func (it *InternTable) Intern(key string) (types.Ref, bool) {
	it.mu.Lock()
	defer it.mu.Unlock()
	ref, ok := it.entries[key]
	return ref, ok
}

// Put records key's canonical reference. It is a no-op if key was
// already recorded by a concurrent caller, returning the winning
// reference instead of ref — callers must discard any object they
// allocated speculatively in that case.
func (it *InternTable) Put(key string, ref types.Ref) types.Ref {
	it.mu.Lock()
	defer it.mu.Unlock()
	if existing, ok := it.entries[key]; ok {
		return existing
	}
	it.entries[key] = ref
	return ref
}
