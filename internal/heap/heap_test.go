package heap

import (
	"errors"
	"testing"

	"github.com/z-yn/litejvm/internal/types"
	"github.com/z-yn/litejvm/internal/vmerrors"
)

type fakeLayout struct {
	name   string
	fields int
}

func (f fakeLayout) ClassName() string        { return f.name }
func (f fakeLayout) TotalInstanceFields() int { return f.fields }

func TestAllocObjectFieldRoundTrip(t *testing.T) {
	h := New(4096)
	classID := h.RegisterClass(fakeLayout{name: "demo/Point", fields: 2})

	ref, err := h.AllocObject(classID)
	if err != nil {
		t.Fatalf("AllocObject: %v", err)
	}

	if err := h.SetField(ref, 1, "I", types.Int(7)); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if err := h.SetField(ref, 2, "J", types.Long(1<<40)); err != nil {
		t.Fatalf("SetField: %v", err)
	}

	v, err := h.GetField(ref, 1, "I")
	if err != nil {
		t.Fatalf("GetField: %v", err)
	}
	if v.I != 7 {
		t.Errorf("field 1 = %d, want 7", v.I)
	}
	v, err = h.GetField(ref, 2, "J")
	if err != nil {
		t.Fatalf("GetField: %v", err)
	}
	if v.L != 1<<40 {
		t.Errorf("field 2 = %d, want %d", v.L, int64(1<<40))
	}

	layout, err := h.ClassOf(ref)
	if err != nil {
		t.Fatalf("ClassOf: %v", err)
	}
	if layout.ClassName() != "demo/Point" {
		t.Errorf("ClassOf().ClassName() = %q, want demo/Point", layout.ClassName())
	}
}

func TestFieldOffsetOutOfRange(t *testing.T) {
	h := New(4096)
	classID := h.RegisterClass(fakeLayout{name: "demo/Empty", fields: 1})
	ref, err := h.AllocObject(classID)
	if err != nil {
		t.Fatalf("AllocObject: %v", err)
	}
	if _, err := h.GetField(ref, 2, "I"); err == nil {
		t.Error("GetField at out-of-range offset succeeded, want error")
	}
}

func TestAllocArrayElementRoundTrip(t *testing.T) {
	h := New(4096)
	ref, err := h.AllocArray(PrimitiveArrayHeader(TagInt), 3)
	if err != nil {
		t.Fatalf("AllocArray: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := h.SetElement(ref, i, types.Int(int32(i*10))); err != nil {
			t.Fatalf("SetElement(%d): %v", i, err)
		}
	}
	for i := 0; i < 3; i++ {
		v, err := h.GetElement(ref, i)
		if err != nil {
			t.Fatalf("GetElement(%d): %v", i, err)
		}
		if v.I != int32(i*10) {
			t.Errorf("element %d = %d, want %d", i, v.I, i*10)
		}
	}
	n, err := h.ArrayLength(ref)
	if err != nil {
		t.Fatalf("ArrayLength: %v", err)
	}
	if n != 3 {
		t.Errorf("ArrayLength = %d, want 3", n)
	}
}

func TestArrayBoundsChecked(t *testing.T) {
	h := New(4096)
	ref, err := h.AllocArray(PrimitiveArrayHeader(TagInt), 2)
	if err != nil {
		t.Fatalf("AllocArray: %v", err)
	}
	if _, err := h.GetElement(ref, 2); err == nil {
		t.Error("GetElement at length succeeded, want out-of-bounds error")
	}
	if _, err := h.GetElement(ref, -1); err == nil {
		t.Error("GetElement at -1 succeeded, want out-of-bounds error")
	}
}

func TestNegativeArrayLengthRejected(t *testing.T) {
	h := New(4096)
	_, err := h.AllocArray(PrimitiveArrayHeader(TagInt), -1)
	if err == nil {
		t.Fatal("AllocArray(-1) succeeded, want error")
	}
	var vmErr *vmerrors.VMError
	if !errors.As(err, &vmErr) || vmErr.Kind != vmerrors.IndexOutOfBounds {
		t.Errorf("got %v, want IndexOutOfBounds", err)
	}
}

func TestHeapOutOfMemory(t *testing.T) {
	h := New(16) // room for the alloc and object headers, not the four field slots
	classID := h.RegisterClass(fakeLayout{name: "demo/Big", fields: 4})
	if _, err := h.AllocObject(classID); err == nil {
		t.Error("AllocObject in undersized heap succeeded, want error")
	}
}

func TestObjectReferenceNotArray(t *testing.T) {
	h := New(4096)
	classID := h.RegisterClass(fakeLayout{name: "demo/X", fields: 0})
	ref, err := h.AllocObject(classID)
	if err != nil {
		t.Fatalf("AllocObject: %v", err)
	}
	if _, err := h.ArrayLength(ref); err == nil {
		t.Error("ArrayLength on an object reference succeeded, want error")
	}
}
