package heap

import (
	"math"

	"github.com/z-yn/litejvm/internal/types"
	"github.com/z-yn/litejvm/internal/vmerrors"
)

func (h *Heap) fieldSlotPos(ref types.Ref, offset int) (int, error) {
	oh, err := h.readObjectHeader(ref)
	if err != nil {
		return 0, err
	}
	layout, err := h.classLayout(oh.ClassID)
	if err != nil {
		return 0, err
	}
	if offset < 1 || offset > layout.TotalInstanceFields() {
		return 0, vmerrors.New(vmerrors.IndexOutOfBounds, "field offset %d out of range for %s (%d fields)", offset, layout.ClassName(), layout.TotalInstanceFields())
	}
	return int(ref) + allocHeaderSize + objectHeaderSize + (offset-1)*slotSize, nil
}

// GetField reads instance field offset (1-based, per spec section 3's
// field layout) dispatching on descriptor's category.
func (h *Heap) GetField(ref types.Ref, offset int, descriptor string) (types.Value, error) {
	pos, err := h.fieldSlotPos(ref, offset)
	if err != nil {
		return types.Value{}, err
	}
	slot, err := h.rawSlot(pos)
	if err != nil {
		return types.Value{}, err
	}
	return decodeSlot(slot, descriptor), nil
}

// SetField writes instance field offset, truncating/widening v to fit
// descriptor's category.
func (h *Heap) SetField(ref types.Ref, offset int, descriptor string, v types.Value) error {
	pos, err := h.fieldSlotPos(ref, offset)
	if err != nil {
		return err
	}
	slot, err := h.rawSlot(pos)
	if err != nil {
		return err
	}
	encodeSlot(slot, descriptor, v)
	return nil
}

func (h *Heap) elemSlotPos(ref types.Ref, index int) (int, arrayHeader, error) {
	ah, err := h.readArrayHeader(ref)
	if err != nil {
		return 0, ah, err
	}
	if index < 0 || index >= int(ah.Length) {
		return 0, ah, vmerrors.New(vmerrors.IndexOutOfBounds, "array index %d out of bounds for length %d", index, ah.Length)
	}
	return int(ref) + allocHeaderSize + arrayHeaderSize + index*slotSize, ah, nil
}

// GetElement reads array element index, dispatching on the array's own
// element kind/tag rather than a caller-supplied descriptor — the
// array header is the single source of truth for its element type.
func (h *Heap) GetElement(ref types.Ref, index int) (types.Value, error) {
	pos, ah, err := h.elemSlotPos(ref, index)
	if err != nil {
		return types.Value{}, err
	}
	slot, err := h.rawSlot(pos)
	if err != nil {
		return types.Value{}, err
	}
	return decodeSlot(slot, arrayElemDescriptor(ah)), nil
}

// SetElement writes array element index, truncating/widening v to fit
// the array's declared element kind/tag.
func (h *Heap) SetElement(ref types.Ref, index int, v types.Value) error {
	pos, ah, err := h.elemSlotPos(ref, index)
	if err != nil {
		return err
	}
	slot, err := h.rawSlot(pos)
	if err != nil {
		return err
	}
	encodeSlot(slot, arrayElemDescriptor(ah), v)
	return nil
}

// arrayElemDescriptor reduces an array header's kind/tag to the single
// descriptor character decodeSlot/encodeSlot need to pick a category.
// A nested-array element decodes as "[" so GetElement hands back an
// ArrayRef-tagged value rather than an ObjectRef-tagged one.
func arrayElemDescriptor(ah arrayHeader) string {
	switch ah.ElemKind {
	case ElemArray:
		return "["
	case ElemObject:
		return "L"
	}
	switch ah.PrimitiveTag {
	case TagBoolean:
		return "Z"
	case TagChar:
		return "C"
	case TagFloat:
		return "F"
	case TagDouble:
		return "D"
	case TagByte:
		return "B"
	case TagShort:
		return "S"
	case TagLong:
		return "J"
	default:
		return "I"
	}
}

func decodeSlot(slot []byte, descriptor string) types.Value {
	if len(descriptor) == 0 {
		return types.Null()
	}
	switch descriptor[0] {
	case 'J':
		return types.Long(int64(readU64(slot)))
	case 'D':
		return types.Double(math.Float64frombits(readU64(slot)))
	case 'F':
		return types.Float(math.Float32frombits(uint32(readU64(slot))))
	case 'L', '[':
		raw := readU64(slot)
		if raw == 0 {
			return types.Null()
		}
		if descriptor[0] == '[' {
			return types.ArrayRef(types.Ref(raw))
		}
		return types.ObjectRef(types.Ref(raw))
	case 'B':
		return types.Int(int32(int8(int32(readU64(slot)))))
	case 'S':
		return types.Int(int32(int16(int32(readU64(slot)))))
	case 'C':
		return types.Int(int32(uint16(readU64(slot))))
	case 'Z':
		if readU64(slot) != 0 {
			return types.Int(1)
		}
		return types.Int(0)
	default: // 'I' and anything else defaults to plain int
		return types.Int(int32(readU64(slot)))
	}
}

func encodeSlot(slot []byte, descriptor string, v types.Value) {
	if len(descriptor) == 0 {
		writeU64(slot, 0)
		return
	}
	switch descriptor[0] {
	case 'J':
		writeU64(slot, uint64(v.L))
	case 'D':
		writeU64(slot, math.Float64bits(v.D))
	case 'F':
		writeU64(slot, uint64(math.Float32bits(v.F)))
	case 'L', '[':
		writeU64(slot, uint64(v.Ref))
	case 'B':
		writeU64(slot, uint64(uint32(int32(int8(v.I)))))
	case 'S':
		writeU64(slot, uint64(uint32(int32(int16(v.I)))))
	case 'C':
		writeU64(slot, uint64(uint16(v.I)))
	case 'Z':
		if v.I != 0 {
			writeU64(slot, 1)
		} else {
			writeU64(slot, 0)
		}
	default:
		writeU64(slot, uint64(uint32(v.I)))
	}
}
