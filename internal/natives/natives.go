// Package natives implements the native method registry (spec C11):
// a name-keyed table of host functions backing methods whose access
// flags include NATIVE, pre-loaded with the small set of natives the
// spec mandates plus a few supplemented from original_source that a
// complete VM needs to get anything beyond a bare no-arg main running
// (Object.hashCode, System.currentTimeMillis/nanoTime). Object.getClass
// is not among them; internal/interp registers it when it is created.
package natives

import (
	"time"

	"github.com/z-yn/litejvm/internal/heap"
	"github.com/z-yn/litejvm/internal/types"
	"github.com/z-yn/litejvm/internal/vmerrors"
)

// Func is a native method implementation. receiver is nil for static
// natives. The returned value is nil for void natives.
type Func func(h *heap.Heap, receiver *types.Value, args []types.Value) (*types.Value, error)

// Registry maps "owner:name<descriptor>" to its native implementation.
type Registry struct {
	funcs map[string]Func
}

// Key builds a registry key, per spec section 4.11's
// "owner:name<descriptor>" format.
func Key(owner, name, descriptor string) string {
	return owner + ":" + name + "<" + descriptor + ">"
}

// New returns a registry pre-loaded with the spec-mandated natives.
func New() *Registry {
	r := &Registry{funcs: make(map[string]Func)}
	r.registerBuiltins()
	return r
}

// Register adds or replaces a native implementation.
func (r *Registry) Register(owner, name, descriptor string, fn Func) {
	r.funcs[Key(owner, name, descriptor)] = fn
}

// Lookup finds a native by its registry key.
func (r *Registry) Lookup(owner, name, descriptor string) (Func, bool) {
	fn, ok := r.funcs[Key(owner, name, descriptor)]
	return fn, ok
}

// Invoke dispatches a native call, failing with NotImplemented if the
// method was never registered — unregistered natives surface as an
// ordinary VM error rather than panicking (spec section 9's open
// question on unknown native behavior).
func (r *Registry) Invoke(h *heap.Heap, owner, name, descriptor string, receiver *types.Value, args []types.Value) (*types.Value, error) {
	fn, ok := r.Lookup(owner, name, descriptor)
	if !ok {
		return nil, vmerrors.New(vmerrors.NotImplemented, "native %s", Key(owner, name, descriptor))
	}
	return fn(h, receiver, args)
}

func noop(_ *heap.Heap, _ *types.Value, _ []types.Value) (*types.Value, error) {
	return nil, nil
}

func (r *Registry) registerBuiltins() {
	r.Register("java/lang/Object", "registerNatives", "()V", noop)
	r.Register("java/lang/Class", "registerNatives", "()V", noop)
	// spec section 4.11: delegates to initPhase1/initializeSystemClass
	// depending on version; both are themselves elaborate Java-side
	// bootstrap sequences out of scope for this interpreter, so the
	// native itself stays a no-op and the version branch is not
	// modeled.
	r.Register("java/lang/System", "registerNatives", "()V", noop)

	r.Register("java/lang/System", "arraycopy", "(Ljava/lang/Object;ILjava/lang/Object;II)V", arraycopy)

	r.Register("java/lang/Class", "getPrimitiveClass", "(Ljava/lang/String;)Ljava/lang/Class;", func(h *heap.Heap, recv *types.Value, args []types.Value) (*types.Value, error) {
		v := types.Null()
		return &v, nil
	})
	r.Register("java/lang/Class", "desiredAssertionStatus0", "(Ljava/lang/Class;)Z", func(h *heap.Heap, recv *types.Value, args []types.Value) (*types.Value, error) {
		v := types.Int(0)
		return &v, nil
	})

	r.Register("java/lang/Object", "hashCode", "()I", objectHashCode)

	r.Register("java/lang/System", "currentTimeMillis", "()J", func(h *heap.Heap, recv *types.Value, args []types.Value) (*types.Value, error) {
		v := types.Long(time.Now().UnixMilli())
		return &v, nil
	})
	r.Register("java/lang/System", "nanoTime", "()J", func(h *heap.Heap, recv *types.Value, args []types.Value) (*types.Value, error) {
		v := types.Long(time.Now().UnixNano())
		return &v, nil
	})
}

// objectHashCode returns a stable per-object integer: the reference's
// own heap byte offset, which never changes for the lifetime of the
// never-moving, never-compacted heap.
func objectHashCode(h *heap.Heap, recv *types.Value, args []types.Value) (*types.Value, error) {
	if recv == nil || !recv.IsReference() {
		return nil, vmerrors.New(vmerrors.NullPointerException, "hashCode on non-reference receiver")
	}
	v := types.Int(int32(uint32(recv.Ref)))
	return &v, nil
}

func arraycopy(h *heap.Heap, recv *types.Value, args []types.Value) (*types.Value, error) {
	if len(args) != 5 {
		return nil, vmerrors.New(vmerrors.InternalError, "arraycopy expects 5 arguments, got %d", len(args))
	}
	src, srcPos, dst, dstPos, length := args[0], args[1], args[2], args[3], args[4]
	if src.Tag == types.TagNull || dst.Tag == types.TagNull {
		return nil, vmerrors.New(vmerrors.NullPointerException, "arraycopy with null array")
	}
	n := int(length.I)
	sp := int(srcPos.I)
	dp := int(dstPos.I)
	if n < 0 || sp < 0 || dp < 0 {
		return nil, vmerrors.New(vmerrors.IndexOutOfBounds, "arraycopy negative length/position")
	}
	if sp == dp && src.Ref == dst.Ref {
		return nil, nil
	}
	for i := 0; i < n; i++ {
		v, err := h.GetElement(src.Ref, sp+i)
		if err != nil {
			return nil, err
		}
		if err := h.SetElement(dst.Ref, dp+i, v); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
