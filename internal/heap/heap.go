// Package heap implements the managed heap (spec C7): a bump-allocated
// byte arena laying out object and array instances with explicit
// headers, accessed only through checked, typed read/write primitives.
// There is no garbage collector — objects and arrays live until the
// Heap itself is dropped, per spec section 9's acknowledged non-goal.
package heap

import (
	"encoding/binary"

	"github.com/z-yn/litejvm/internal/types"
	"github.com/z-yn/litejvm/internal/vmerrors"
)

const (
	allocHeaderSize  = 8
	objectHeaderSize = 8
	arrayHeaderSize  = 16
	slotSize         = 8
)

// ClassLayout is the minimal view of a loaded class the heap needs in
// order to lay out and bounds-check an instance's fields. It is
// implemented by internal/methodarea.Class; the heap package itself
// has no dependency on the method area, only on this narrow interface,
// and the method area does not import the heap either. ClassLayout is
// an alias of the unnamed interface type so that RegisterClass's
// signature matches methodarea.ClassRegistrar's exactly.
type ClassLayout = interface {
	ClassName() string
	TotalInstanceFields() int
}

// Heap is a single pre-allocated, 8-byte-aligned byte arena with a
// bump cursor. It is not safe for concurrent use — per spec section 5,
// exactly one interpreter drives exactly one heap at a time.
type Heap struct {
	arena  []byte
	cursor int

	classes []ClassLayout // index 0 reserved/unused; object headers store an index into this slice
}

// New allocates a heap with the given fixed capacity in bytes.
func New(capacity int) *Heap {
	return &Heap{
		arena:   make([]byte, capacity),
		cursor:  0,
		classes: make([]ClassLayout, 1),
	}
}

// RegisterClass assigns a stable class ID used by object headers. IDs
// are never reused or invalidated, matching the method area's "handle
// stable for the VM's lifetime" invariant.
func (h *Heap) RegisterClass(c ClassLayout) uint32 {
	h.classes = append(h.classes, c)
	return uint32(len(h.classes) - 1)
}

func (h *Heap) classLayout(id uint32) (ClassLayout, error) {
	if id == 0 || int(id) >= len(h.classes) {
		return nil, vmerrors.New(vmerrors.InternalError, "heap: invalid class id %d", id)
	}
	return h.classes[id], nil
}

func (h *Heap) bump(n int) (int, error) {
	if h.cursor+n > len(h.arena) {
		return 0, vmerrors.New(vmerrors.InternalError, "heap: out of memory allocating %d bytes (cursor=%d cap=%d)", n, h.cursor, len(h.arena))
	}
	start := h.cursor
	h.cursor += n
	return start, nil
}

// AllocObject lays out a new instance of classID: alloc header, object
// header, then N zeroed 8-byte field slots (N = layout's total
// instance field count). Fields are left at their raw zero value; the
// caller (internal/interp's NewObject) writes each field's
// descriptor-appropriate zero.
func (h *Heap) AllocObject(classID uint32) (types.Ref, error) {
	layout, err := h.classLayout(classID)
	if err != nil {
		return 0, err
	}
	n := layout.TotalInstanceFields()
	total := allocHeaderSize + objectHeaderSize + n*slotSize
	start, err := h.bump(total)
	if err != nil {
		return 0, err
	}
	writeAllocHeader(h.arena[start:], allocHeader{Kind: kindObject, Size: uint32(total)})
	writeObjectHeader(h.arena[start+allocHeaderSize:], objectHeader{ClassID: classID})
	return types.Ref(start), nil
}

// AllocArray lays out a new array instance of length elements whose
// element kind/tag is described by hdr.
func (h *Heap) AllocArray(hdr ArrayHeaderInfo, length int) (types.Ref, error) {
	if length < 0 {
		return 0, vmerrors.New(vmerrors.IndexOutOfBounds, "negative array length %d", length)
	}
	total := allocHeaderSize + arrayHeaderSize + length*slotSize
	start, err := h.bump(total)
	if err != nil {
		return 0, err
	}
	writeAllocHeader(h.arena[start:], allocHeader{Kind: kindArray, Size: uint32(total)})
	writeArrayHeader(h.arena[start+allocHeaderSize:], arrayHeader{
		ElemKind:     hdr.ElemKind,
		PrimitiveTag: hdr.PrimitiveTag,
		Length:       uint32(length),
	})
	return types.Ref(start), nil
}

// ClassOf returns the class layout of an object reference.
func (h *Heap) ClassOf(ref types.Ref) (ClassLayout, error) {
	oh, err := h.readObjectHeader(ref)
	if err != nil {
		return nil, err
	}
	return h.classLayout(oh.ClassID)
}

// ClassIDOf returns the raw class ID stored in an object's header.
func (h *Heap) ClassIDOf(ref types.Ref) (uint32, error) {
	oh, err := h.readObjectHeader(ref)
	if err != nil {
		return 0, err
	}
	return oh.ClassID, nil
}

// ArrayLength returns the length of an array reference.
func (h *Heap) ArrayLength(ref types.Ref) (int, error) {
	ah, err := h.readArrayHeader(ref)
	if err != nil {
		return 0, err
	}
	return int(ah.Length), nil
}

// ArrayElemKind reports whether ref's elements are primitives,
// objects, or nested arrays, plus the newarray primitive tag when
// applicable.
func (h *Heap) ArrayElemKind(ref types.Ref) (ElemKind, uint8, error) {
	ah, err := h.readArrayHeader(ref)
	if err != nil {
		return 0, 0, err
	}
	return ah.ElemKind, ah.PrimitiveTag, nil
}

func (h *Heap) boundsCheckAlloc(ref types.Ref, minSize int) error {
	start := int(ref)
	if start < 0 || start+minSize > len(h.arena) {
		return vmerrors.New(vmerrors.IndexOutOfBounds, "heap reference %d out of bounds", ref)
	}
	return nil
}

func (h *Heap) readAllocHeader(ref types.Ref) (allocHeader, error) {
	if err := h.boundsCheckAlloc(ref, allocHeaderSize); err != nil {
		return allocHeader{}, err
	}
	return readAllocHeader(h.arena[ref:]), nil
}

func (h *Heap) readObjectHeader(ref types.Ref) (objectHeader, error) {
	ah, err := h.readAllocHeader(ref)
	if err != nil {
		return objectHeader{}, err
	}
	if ah.Kind != kindObject {
		return objectHeader{}, vmerrors.New(vmerrors.ValueTypeMismatch, "heap reference %d is not an object", ref)
	}
	if err := h.boundsCheckAlloc(ref, allocHeaderSize+objectHeaderSize); err != nil {
		return objectHeader{}, err
	}
	return readObjectHeader(h.arena[int(ref)+allocHeaderSize:]), nil
}

func (h *Heap) readArrayHeader(ref types.Ref) (arrayHeader, error) {
	ah, err := h.readAllocHeader(ref)
	if err != nil {
		return arrayHeader{}, err
	}
	if ah.Kind != kindArray {
		return arrayHeader{}, vmerrors.New(vmerrors.ValueTypeMismatch, "heap reference %d is not an array", ref)
	}
	if err := h.boundsCheckAlloc(ref, allocHeaderSize+arrayHeaderSize); err != nil {
		return arrayHeader{}, err
	}
	return readArrayHeader(h.arena[int(ref)+allocHeaderSize:]), nil
}

// rawSlot returns a mutable 8-byte window into the arena for byte
// offset pos, bounds-checked against the arena's total size.
func (h *Heap) rawSlot(pos int) ([]byte, error) {
	if pos < 0 || pos+slotSize > len(h.arena) {
		return nil, vmerrors.New(vmerrors.IndexOutOfBounds, "heap slot at byte %d out of bounds", pos)
	}
	return h.arena[pos : pos+slotSize], nil
}

func readU64(b []byte) uint64  { return binary.LittleEndian.Uint64(b) }
func writeU64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
