package methodarea

import (
	"github.com/z-yn/litejvm/internal/classfile"
	"github.com/z-yn/litejvm/internal/types"
)

// Field is a class's runtime field record (spec section 3). Offset is
// 1-based within an instance; 0 marks a static field, whose value
// lives in the static area instead.
type Field struct {
	AccessFlags   uint16
	Name          string
	Descriptor    string
	ConstantValue any // resolved Int32/Float32/Int64/Float64/string, or nil
	Offset        int
}

func (f *Field) IsStatic() bool { return f.AccessFlags&classfile.FieldAccStatic != 0 }

// Method is a class's runtime method record.
type Method struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Parsed      types.MethodDescriptor
	Code        *classfile.Code // nil for abstract/native methods
	Exceptions  []string
}

func (m *Method) IsStatic() bool   { return m.AccessFlags&classfile.MethodAccStatic != 0 }
func (m *Method) IsNative() bool   { return m.AccessFlags&classfile.MethodAccNative != 0 }
func (m *Method) IsAbstract() bool { return m.AccessFlags&classfile.MethodAccAbstract != 0 }

func methodKey(name, descriptor string) string { return name + descriptor }

// Class is a loaded class's runtime record (spec section 3).
type Class struct {
	Name         string
	MajorVersion int
	AccessFlags  uint16
	Pool         *classfile.RuntimeConstantPool

	Super      *Class
	Interfaces []*Class

	fieldOrder []string
	fieldsByName map[string]*Field

	methods map[string]*Method

	SourceFile string

	totalInstanceFields int

	status Status

	// HeapClassID is the class ID this class was registered under in
	// the heap's class registry (internal/heap.Heap.RegisterClass),
	// used when laying out new instances of this class.
	HeapClassID uint32
}

// ClassName satisfies internal/heap.ClassLayout.
func (c *Class) ClassName() string { return c.Name }

// TotalInstanceFields satisfies internal/heap.ClassLayout.
func (c *Class) TotalInstanceFields() int { return c.totalInstanceFields }

func (c *Class) Status() Status { return c.status }

func (c *Class) IsInterface() bool { return c.AccessFlags&classfile.AccInterface != 0 }
func (c *Class) IsAbstract() bool  { return c.AccessFlags&classfile.AccAbstract != 0 }

// Fields returns fields in declaration order.
func (c *Class) Fields() []*Field {
	out := make([]*Field, 0, len(c.fieldOrder))
	for _, n := range c.fieldOrder {
		out = append(out, c.fieldsByName[n])
	}
	return out
}

// FieldByName returns a field declared directly on this class (not
// its superclasses).
func (c *Class) FieldByName(name string) (*Field, bool) {
	f, ok := c.fieldsByName[name]
	return f, ok
}

// ExactMethod looks up a method by (name, descriptor) in this class's
// own table only — no super-chain search.
func (c *Class) ExactMethod(name, descriptor string) (*Method, bool) {
	m, ok := c.methods[methodKey(name, descriptor)]
	return m, ok
}

// IsSubclassOf reports whether c is other or a (possibly indirect)
// subclass of other, walking the super chain.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Super {
		if cur == other {
			return true
		}
	}
	return false
}

// Implements reports whether c or any of its superclasses directly or
// transitively declares iface among its interfaces.
func (c *Class) Implements(iface *Class) bool {
	for cur := c; cur != nil; cur = cur.Super {
		for _, i := range cur.Interfaces {
			if i == iface || i.Implements(iface) {
				return true
			}
		}
	}
	return false
}

// IsInstanceOf reports whether an instance of c would satisfy a
// checkcast/instanceof test against target — target may be a
// superclass or an implemented interface.
func (c *Class) IsInstanceOf(target *Class) bool {
	return c.IsSubclassOf(target) || c.Implements(target)
}
