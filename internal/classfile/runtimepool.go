package classfile

import (
	"github.com/z-yn/litejvm/internal/vmerrors"
)

// RuntimeConstant is the closed variant set from spec section 3: each
// entry owns its resolved strings rather than re-chasing CP indices on
// every access, which is the chief difference from the raw pool.
type RuntimeConstant interface{ isRuntimeConstant() }

type Utf8Const struct{ Value string }
type IntegerConst struct{ Value int32 }
type FloatConst struct{ Value float32 }
type LongConst struct{ Value int64 }
type DoubleConst struct{ Value float64 }
type ClassRefConst struct{ Name string }
type StringRefConst struct{ Value string }
type FieldRefConst struct{ OwnerClass, Name, Descriptor string }
type MethodRefConst struct{ OwnerClass, Name, Descriptor string }
type InterfaceMethodRefConst struct{ OwnerClass, Name, Descriptor string }
type NameAndTypeConst struct{ Name, Descriptor string }
type MethodHandleConst struct {
	Kind                     ReferenceKind
	OwnerClass, Name, Descriptor string
}
type MethodTypeConst struct{ Descriptor string }
type DynamicConst struct {
	BootstrapIndex    uint16
	Name, Descriptor  string
}
type InvokeDynamicConst struct {
	BootstrapIndex    uint16
	Name, Descriptor  string
}
type ModuleConst struct{ Name string }
type PackageConst struct{ Name string }
type placeholderConstant struct{}

func (Utf8Const) isRuntimeConstant()               {}
func (IntegerConst) isRuntimeConstant()             {}
func (FloatConst) isRuntimeConstant()               {}
func (LongConst) isRuntimeConstant()                {}
func (DoubleConst) isRuntimeConstant()              {}
func (ClassRefConst) isRuntimeConstant()            {}
func (StringRefConst) isRuntimeConstant()           {}
func (FieldRefConst) isRuntimeConstant()            {}
func (MethodRefConst) isRuntimeConstant()           {}
func (InterfaceMethodRefConst) isRuntimeConstant()  {}
func (NameAndTypeConst) isRuntimeConstant()         {}
func (MethodHandleConst) isRuntimeConstant()        {}
func (MethodTypeConst) isRuntimeConstant()          {}
func (DynamicConst) isRuntimeConstant()             {}
func (InvokeDynamicConst) isRuntimeConstant()        {}
func (ModuleConst) isRuntimeConstant()              {}
func (PackageConst) isRuntimeConstant()             {}
func (placeholderConstant) isRuntimeConstant()      {}

// RuntimeConstantPool is the materialized, self-contained pool built
// from a ClassFile's raw pool. Index 0 is always invalid.
type RuntimeConstantPool struct {
	entries []RuntimeConstant
}

// BuildRuntimeConstantPool resolves every raw entry's indirection
// (class→utf8, name-and-type→two utf8s, etc.) once, up front.
func BuildRuntimeConstantPool(raw []RawConstant) (*RuntimeConstantPool, error) {
	rp := &RuntimeConstantPool{entries: make([]RuntimeConstant, len(raw))}
	for i := 1; i < len(raw); i++ {
		if raw[i].IsPlaceholder {
			rp.entries[i] = placeholderConstant{}
			continue
		}
		entry, err := resolveOne(raw, i)
		if err != nil {
			return nil, err
		}
		rp.entries[i] = entry
	}
	return rp, nil
}

func utf8At(raw []RawConstant, idx uint16) (string, error) {
	if int(idx) == 0 || int(idx) >= len(raw) {
		return "", vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d out of range", idx)
	}
	e := raw[idx]
	if e.IsPlaceholder {
		return "", vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d is a wide-entry placeholder", idx)
	}
	if e.Tag != TagUtf8 {
		return "", vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d: expected Utf8, got tag %d", idx, e.Tag)
	}
	return e.Str, nil
}

func nameAndTypeAt(raw []RawConstant, idx uint16) (name, desc string, err error) {
	if int(idx) == 0 || int(idx) >= len(raw) {
		return "", "", vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d out of range", idx)
	}
	e := raw[idx]
	if e.Tag != TagNameAndType {
		return "", "", vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d: expected NameAndType, got tag %d", idx, e.Tag)
	}
	name, err = utf8At(raw, e.Index1)
	if err != nil {
		return "", "", err
	}
	desc, err = utf8At(raw, e.Index2)
	if err != nil {
		return "", "", err
	}
	return name, desc, nil
}

func classRefNameAt(raw []RawConstant, idx uint16) (string, error) {
	if int(idx) == 0 || int(idx) >= len(raw) {
		return "", vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d out of range", idx)
	}
	e := raw[idx]
	if e.Tag != TagClass {
		return "", vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d: expected Class, got tag %d", idx, e.Tag)
	}
	return utf8At(raw, e.Index1)
}

func resolveOne(raw []RawConstant, i int) (RuntimeConstant, error) {
	e := raw[i]
	switch e.Tag {
	case TagUtf8:
		return Utf8Const{Value: e.Str}, nil
	case TagInteger:
		return IntegerConst{Value: e.Int}, nil
	case TagFloat:
		return FloatConst{Value: e.Float}, nil
	case TagLong:
		return LongConst{Value: e.Long}, nil
	case TagDouble:
		return DoubleConst{Value: e.Double}, nil
	case TagClass:
		name, err := utf8At(raw, e.Index1)
		if err != nil {
			return nil, err
		}
		return ClassRefConst{Name: name}, nil
	case TagString:
		s, err := utf8At(raw, e.Index1)
		if err != nil {
			return nil, err
		}
		return StringRefConst{Value: s}, nil
	case TagFieldref:
		owner, err := classRefNameAt(raw, e.Index1)
		if err != nil {
			return nil, err
		}
		name, desc, err := nameAndTypeAt(raw, e.Index2)
		if err != nil {
			return nil, err
		}
		return FieldRefConst{OwnerClass: owner, Name: name, Descriptor: desc}, nil
	case TagMethodref:
		owner, err := classRefNameAt(raw, e.Index1)
		if err != nil {
			return nil, err
		}
		name, desc, err := nameAndTypeAt(raw, e.Index2)
		if err != nil {
			return nil, err
		}
		return MethodRefConst{OwnerClass: owner, Name: name, Descriptor: desc}, nil
	case TagInterfaceMethodref:
		owner, err := classRefNameAt(raw, e.Index1)
		if err != nil {
			return nil, err
		}
		name, desc, err := nameAndTypeAt(raw, e.Index2)
		if err != nil {
			return nil, err
		}
		return InterfaceMethodRefConst{OwnerClass: owner, Name: name, Descriptor: desc}, nil
	case TagNameAndType:
		// NameAndType entries resolve their own two indices directly
		// (not via nameAndTypeAt, which expects to be pointed AT one).
		n, err := utf8At(raw, e.Index1)
		if err != nil {
			return nil, err
		}
		d, err := utf8At(raw, e.Index2)
		if err != nil {
			return nil, err
		}
		return NameAndTypeConst{Name: n, Descriptor: d}, nil
	case TagMethodHandle:
		owner, name, desc, err := methodHandleTarget(raw, e.RefIndex)
		if err != nil {
			return nil, err
		}
		return MethodHandleConst{Kind: ReferenceKind(e.RefKind), OwnerClass: owner, Name: name, Descriptor: desc}, nil
	case TagMethodType:
		d, err := utf8At(raw, e.Index1)
		if err != nil {
			return nil, err
		}
		return MethodTypeConst{Descriptor: d}, nil
	case TagDynamic:
		name, desc, err := nameAndTypeAt(raw, e.Index2)
		if err != nil {
			return nil, err
		}
		return DynamicConst{BootstrapIndex: e.Index1, Name: name, Descriptor: desc}, nil
	case TagInvokeDynamic:
		name, desc, err := nameAndTypeAt(raw, e.Index2)
		if err != nil {
			return nil, err
		}
		return InvokeDynamicConst{BootstrapIndex: e.Index1, Name: name, Descriptor: desc}, nil
	case TagModule:
		n, err := utf8At(raw, e.Index1)
		if err != nil {
			return nil, err
		}
		return ModuleConst{Name: n}, nil
	case TagPackage:
		n, err := utf8At(raw, e.Index1)
		if err != nil {
			return nil, err
		}
		return PackageConst{Name: n}, nil
	default:
		return nil, vmerrors.New(vmerrors.ConstantPoolTagNotSupported, "tag=%d at index %d", e.Tag, i)
	}
}

// methodHandleTarget resolves a MethodHandle's reference index, which
// points at a Fieldref, Methodref, or InterfaceMethodref depending on
// the handle's kind.
func methodHandleTarget(raw []RawConstant, refIdx uint16) (owner, name, desc string, err error) {
	if int(refIdx) == 0 || int(refIdx) >= len(raw) {
		return "", "", "", vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d out of range", refIdx)
	}
	e := raw[refIdx]
	switch e.Tag {
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		owner, err = classRefNameAt(raw, e.Index1)
		if err != nil {
			return "", "", "", err
		}
		name, desc, err = nameAndTypeAt(raw, e.Index2)
		return owner, name, desc, err
	default:
		return "", "", "", vmerrors.New(vmerrors.ClassFormatError, "MethodHandle ref_index %d points at unsupported tag %d", refIdx, e.Tag)
	}
}

// Get returns the runtime constant at index i, failing on out-of-range
// or placeholder indices (spec invariant 3).
func (rp *RuntimeConstantPool) Get(i int) (RuntimeConstant, error) {
	if i <= 0 || i >= len(rp.entries) {
		return nil, vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d out of range", i)
	}
	if _, ok := rp.entries[i].(placeholderConstant); ok {
		return nil, vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d is a wide-entry placeholder", i)
	}
	return rp.entries[i], nil
}

func (rp *RuntimeConstantPool) GetUtf8(i int) (string, error) {
	e, err := rp.Get(i)
	if err != nil {
		return "", err
	}
	u, ok := e.(Utf8Const)
	if !ok {
		return "", vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d: expected Utf8Const", i)
	}
	return u.Value, nil
}

func (rp *RuntimeConstantPool) GetClassName(i int) (string, error) {
	e, err := rp.Get(i)
	if err != nil {
		return "", err
	}
	c, ok := e.(ClassRefConst)
	if !ok {
		return "", vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d: expected ClassRefConst", i)
	}
	return c.Name, nil
}

// GetField returns a FieldRefConst's (owner, name, descriptor) triple.
func (rp *RuntimeConstantPool) GetField(i int) (owner, name, desc string, err error) {
	e, err := rp.Get(i)
	if err != nil {
		return "", "", "", err
	}
	f, ok := e.(FieldRefConst)
	if !ok {
		return "", "", "", vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d: expected FieldRefConst", i)
	}
	return f.OwnerClass, f.Name, f.Descriptor, nil
}

// GetMethod returns a MethodRefConst's or InterfaceMethodRefConst's
// (owner, name, descriptor) triple, and whether it was an interface
// method reference.
func (rp *RuntimeConstantPool) GetMethod(i int) (owner, name, desc string, isInterface bool, err error) {
	e, err := rp.Get(i)
	if err != nil {
		return "", "", "", false, err
	}
	switch m := e.(type) {
	case MethodRefConst:
		return m.OwnerClass, m.Name, m.Descriptor, false, nil
	case InterfaceMethodRefConst:
		return m.OwnerClass, m.Name, m.Descriptor, true, nil
	default:
		return "", "", "", false, vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d: expected a method ref", i)
	}
}

// Len returns the number of physical slots (including index 0 and
// wide-entry placeholders).
func (rp *RuntimeConstantPool) Len() int { return len(rp.entries) }
