package natives

import (
	"errors"
	"testing"

	"github.com/z-yn/litejvm/internal/heap"
	"github.com/z-yn/litejvm/internal/types"
	"github.com/z-yn/litejvm/internal/vmerrors"
)

func TestLookupUnregisteredFails(t *testing.T) {
	r := New()
	if _, ok := r.Lookup("demo/Foo", "bar", "()V"); ok {
		t.Error("Lookup found an unregistered native")
	}
}

func TestInvokeUnregisteredReturnsNotImplemented(t *testing.T) {
	r := New()
	h := heap.New(4096)
	_, err := r.Invoke(h, "demo/Foo", "bar", "()V", nil, nil)
	if err == nil {
		t.Fatal("Invoke on an unregistered native succeeded, want NotImplemented")
	}
}

func TestRegisterNativesAreNoops(t *testing.T) {
	r := New()
	h := heap.New(4096)
	v, err := r.Invoke(h, "java/lang/Object", "registerNatives", "()V", nil, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if v != nil {
		t.Errorf("registerNatives returned %v, want nil", v)
	}
}

func TestObjectHashCodeOnReference(t *testing.T) {
	r := New()
	h := heap.New(4096)
	classID := h.RegisterClass(fakeLayout{name: "demo/X"})
	ref, err := h.AllocObject(classID)
	if err != nil {
		t.Fatal(err)
	}
	recv := types.ObjectRef(ref)
	v, err := r.Invoke(h, "java/lang/Object", "hashCode", "()I", &recv, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if v == nil || v.Tag != types.TagInt {
		t.Fatalf("hashCode returned %v, want an int", v)
	}
}

func TestObjectHashCodeOnNonReferenceFails(t *testing.T) {
	r := New()
	h := heap.New(4096)
	recv := types.Int(5)
	if _, err := r.Invoke(h, "java/lang/Object", "hashCode", "()I", &recv, nil); err == nil {
		t.Error("hashCode on a non-reference receiver succeeded, want error")
	}
}

func TestArraycopyCopiesElements(t *testing.T) {
	h := heap.New(4096)
	src, err := h.AllocArray(heap.PrimitiveArrayHeader(heap.TagInt), 3)
	if err != nil {
		t.Fatal(err)
	}
	dst, err := h.AllocArray(heap.PrimitiveArrayHeader(heap.TagInt), 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := h.SetElement(src, i, types.Int(int32(i+1))); err != nil {
			t.Fatal(err)
		}
	}

	args := []types.Value{
		types.ArrayRef(src), types.Int(0),
		types.ArrayRef(dst), types.Int(0),
		types.Int(3),
	}
	if _, err := arraycopy(h, nil, args); err != nil {
		t.Fatalf("arraycopy: %v", err)
	}
	for i := 0; i < 3; i++ {
		v, err := h.GetElement(dst, i)
		if err != nil {
			t.Fatal(err)
		}
		if v.I != int32(i+1) {
			t.Errorf("dst[%d] = %d, want %d", i, v.I, i+1)
		}
	}
}

func TestArraycopyNullArrayFails(t *testing.T) {
	h := heap.New(4096)
	args := []types.Value{types.Null(), types.Int(0), types.Null(), types.Int(0), types.Int(1)}
	_, err := arraycopy(h, nil, args)
	if err == nil {
		t.Fatal("arraycopy with null arrays succeeded, want error")
	}
	var vmErr *vmerrors.VMError
	if !errors.As(err, &vmErr) || vmErr.Kind != vmerrors.NullPointerException {
		t.Errorf("got %v, want NullPointerException", err)
	}
}

func TestArraycopyNegativeLengthFails(t *testing.T) {
	h := heap.New(4096)
	src, _ := h.AllocArray(heap.PrimitiveArrayHeader(heap.TagInt), 2)
	dst, _ := h.AllocArray(heap.PrimitiveArrayHeader(heap.TagInt), 2)
	args := []types.Value{types.ArrayRef(src), types.Int(0), types.ArrayRef(dst), types.Int(0), types.Int(-1)}
	if _, err := arraycopy(h, nil, args); err == nil {
		t.Error("arraycopy with negative length succeeded, want error")
	}
}

func TestArraycopySelfCopySameOffsetShortCircuits(t *testing.T) {
	h := heap.New(4096)
	ref, _ := h.AllocArray(heap.PrimitiveArrayHeader(heap.TagInt), 2)
	h.SetElement(ref, 0, types.Int(9))
	args := []types.Value{types.ArrayRef(ref), types.Int(0), types.ArrayRef(ref), types.Int(0), types.Int(2)}
	if _, err := arraycopy(h, nil, args); err != nil {
		t.Fatalf("arraycopy: %v", err)
	}
	v, _ := h.GetElement(ref, 0)
	if v.I != 9 {
		t.Errorf("self-copy mutated data: got %d, want 9", v.I)
	}
}

type fakeLayout struct{ name string }

func (f fakeLayout) ClassName() string        { return f.name }
func (f fakeLayout) TotalInstanceFields() int { return 0 }
