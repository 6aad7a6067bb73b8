// Package interp implements the interpreter (spec C10): a per-frame
// stack-machine execution engine over the full opcode set, method
// dispatch (static/special/virtual/interface), exception propagation
// through per-method handler tables, and on-demand class
// initialization. It is the one component that reaches into every
// other subsystem, the same role initializerBlock.go/instantiate.go
// play together in Jacobin.
package interp

import (
	"github.com/z-yn/litejvm/internal/classfile"
	"github.com/z-yn/litejvm/internal/frame"
	"github.com/z-yn/litejvm/internal/heap"
	"github.com/z-yn/litejvm/internal/methodarea"
	"github.com/z-yn/litejvm/internal/natives"
	"github.com/z-yn/litejvm/internal/statics"
	"github.com/z-yn/litejvm/internal/trace"
	"github.com/z-yn/litejvm/internal/types"
	"github.com/z-yn/litejvm/internal/vmerrors"
)

// Interp owns a heap, method area, static area, and native registry,
// and drives exactly one call stack — the single-execution-context
// profile of spec section 5.
type Interp struct {
	MA    *methodarea.MethodArea
	Heap  *heap.Heap
	St    *statics.Table
	Nat   *natives.Registry
	Calls *frame.CallStack

	StringInterns *statics.InternTable
	ClassInterns  *statics.InternTable
}

// New wires an interpreter over already-constructed subsystems. The
// method area's ClinitInvoker is set to the new Interp.
func New(ma *methodarea.MethodArea, h *heap.Heap, st *statics.Table, nat *natives.Registry, callStackCapacity int) *Interp {
	it := &Interp{
		MA:            ma,
		Heap:          h,
		St:            st,
		Nat:           nat,
		Calls:         frame.NewCallStack(callStackCapacity),
		StringInterns: statics.NewInternTable(),
		ClassInterns:  statics.NewInternTable(),
	}
	ma.SetInvoker(it)
	nat.Register("java/lang/Object", "getClass", "()Ljava/lang/Class;", it.nativeGetClass)
	return it
}

// nativeGetClass backs java/lang/Object.getClass. It is registered
// here rather than in internal/natives because materializing a Class
// mirror needs the method area and intern tables ClassMirror draws on,
// which a bare *heap.Heap reference (natives.Func's only receiver-side
// state) can't reach.
func (it *Interp) nativeGetClass(h *heap.Heap, recv *types.Value, args []types.Value) (*types.Value, error) {
	if recv == nil || !recv.IsReference() || recv.Tag == types.TagNull {
		return nil, vmerrors.New(vmerrors.NullPointerException, "getClass on null receiver")
	}
	layout, err := it.classLayoutOf(recv.Ref)
	if err != nil {
		return nil, err
	}
	mirror, err := it.ClassMirror(layout.ClassName())
	if err != nil {
		return nil, err
	}
	return &mirror, nil
}

// InvokeClinit satisfies methodarea.ClinitInvoker.
func (it *Interp) InvokeClinit(class *methodarea.Class, method *methodarea.Method) error {
	_, err := it.InvokeMethod(class, method, nil, nil)
	return err
}

type codeRef struct{ code *classfile.Code }

func (c codeRef) Bytes() []byte  { return c.code.Bytes }
func (c codeRef) MaxStack() int  { return c.code.MaxStack }
func (c codeRef) MaxLocals() int { return c.code.MaxLocals }

// InvokeMethod runs one method activation to completion: native
// dispatch, or a fresh frame pushed, executed, and popped. receiver is
// nil for static methods and <clinit>.
func (it *Interp) InvokeMethod(owner *methodarea.Class, m *methodarea.Method, receiver *types.Value, args []types.Value) (*types.Value, error) {
	if m.IsNative() {
		return it.Nat.Invoke(it.Heap, owner.Name, m.Name, m.Descriptor, receiver, args)
	}
	if m.Code == nil {
		return nil, vmerrors.New(vmerrors.InternalError, "%s.%s%s has no code and is not native", owner.Name, m.Name, m.Descriptor)
	}

	f := frame.New(owner.Name, m.Name, m.Descriptor, codeRef{m.Code}, m.Code.MaxLocals, m.Code.MaxStack)
	idx := 0
	if receiver != nil {
		f.Locals[idx] = *receiver
		idx++
	}
	for i, paramDesc := range m.Parsed.Params {
		f.Locals[idx] = args[i]
		idx++
		if paramDesc == "J" || paramDesc == "D" {
			idx++
		}
	}

	if err := it.Calls.Push(f); err != nil {
		return nil, err
	}
	result, err := it.runFrame(f, owner, m)
	if _, popErr := it.Calls.Pop(); popErr != nil {
		trace.Warning("interp: call stack pop after " + owner.Name + "." + m.Name + " failed: " + popErr.Error())
	}
	return result, err
}

// NewObject allocates a zero-initialized instance of class, per C12's
// new_object.
func (it *Interp) NewObject(class *methodarea.Class) (types.Value, error) {
	ref, err := it.Heap.AllocObject(class.HeapClassID)
	if err != nil {
		return types.Value{}, err
	}
	for _, f := range class.Fields() {
		if f.IsStatic() {
			continue
		}
		if err := it.Heap.SetField(ref, f.Offset, f.Descriptor, types.ZeroFor(f.Descriptor)); err != nil {
			return types.Value{}, err
		}
	}
	return types.ObjectRef(ref), nil
}

// NewArray allocates a primitive array from a newarray atype tag, per
// C12's new_array.
func (it *Interp) NewArray(atype uint8, length int) (types.Value, error) {
	ref, err := it.Heap.AllocArray(heap.PrimitiveArrayHeader(atype), length)
	if err != nil {
		return types.Value{}, err
	}
	return types.ArrayRef(ref), nil
}

// NewObjectArray allocates a reference-element array (anewarray).
func (it *Interp) NewObjectArray(length int) (types.Value, error) {
	ref, err := it.Heap.AllocArray(heap.ObjectArrayHeader(), length)
	if err != nil {
		return types.Value{}, err
	}
	return types.ArrayRef(ref), nil
}

// NewArrayOfArrays allocates an array whose elements are themselves
// arrays — the outer dimensions of a multianewarray (C12's
// new_array_of_arrays).
func (it *Interp) NewArrayOfArrays(length int) (types.Value, error) {
	ref, err := it.Heap.AllocArray(heap.NestedArrayHeader(), length)
	if err != nil {
		return types.Value{}, err
	}
	return types.ArrayRef(ref), nil
}

// GetStatic reads a static field, triggering class initialization
// first, per C12's get_static.
func (it *Interp) GetStatic(className, fieldName string) (types.Value, error) {
	class, err := it.MA.LookupClassAndInitialize(className)
	if err != nil {
		return types.Value{}, err
	}
	return it.St.Get(class.Name, fieldName)
}

// SetStatic writes a static field, triggering class initialization
// first, per C12's set_static.
func (it *Interp) SetStatic(className, fieldName string, v types.Value) error {
	class, err := it.MA.LookupClassAndInitialize(className)
	if err != nil {
		return err
	}
	return it.St.Set(class.Name, fieldName, v)
}
