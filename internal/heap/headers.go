package heap

import "encoding/binary"

type allocKind uint8

const (
	kindObject allocKind = 0
	kindArray  allocKind = 1
)

// allocHeader is the first 8 bytes of every heap allocation: which
// kind of thing follows, and its total size in bytes (header included),
// per spec section 4.7.
type allocHeader struct {
	Kind allocKind
	Size uint32
}

func writeAllocHeader(b []byte, h allocHeader) {
	b[0] = byte(h.Kind)
	binary.LittleEndian.PutUint32(b[1:5], h.Size)
}

func readAllocHeader(b []byte) allocHeader {
	return allocHeader{
		Kind: allocKind(b[0]),
		Size: binary.LittleEndian.Uint32(b[1:5]),
	}
}

// objectHeader is the 8 bytes following an object's alloc header: the
// resolved class reference the instance belongs to.
type objectHeader struct {
	ClassID uint32
}

func writeObjectHeader(b []byte, h objectHeader) {
	binary.LittleEndian.PutUint32(b[0:4], h.ClassID)
}

func readObjectHeader(b []byte) objectHeader {
	return objectHeader{ClassID: binary.LittleEndian.Uint32(b[0:4])}
}

// ElemKind classifies an array's element type, per spec section 4.7's
// "primitive tag, class reference, or nested array" element typing.
type ElemKind uint8

const (
	ElemPrimitive ElemKind = iota
	ElemObject
	ElemArray
)

// Primitive newarray tags (JVMS Table 6.5.newarray), reused verbatim as
// the wire representation of an array's primitive element type.
const (
	TagBoolean uint8 = 4
	TagChar    uint8 = 5
	TagFloat   uint8 = 6
	TagDouble  uint8 = 7
	TagByte    uint8 = 8
	TagShort   uint8 = 9
	TagInt     uint8 = 10
	TagLong    uint8 = 11
)

// ArrayHeaderInfo is the caller-supplied description of a new array's
// element type, passed to AllocArray.
type ArrayHeaderInfo struct {
	ElemKind     ElemKind
	PrimitiveTag uint8 // meaningful when ElemKind == ElemPrimitive
}

// arrayHeader is the 16 bytes following an array's alloc header: its
// element kind/tag and its length.
type arrayHeader struct {
	ElemKind     ElemKind
	PrimitiveTag uint8
	Length       uint32
}

func writeArrayHeader(b []byte, h arrayHeader) {
	b[0] = byte(h.ElemKind)
	b[1] = h.PrimitiveTag
	binary.LittleEndian.PutUint32(b[4:8], h.Length)
}

func readArrayHeader(b []byte) arrayHeader {
	return arrayHeader{
		ElemKind:     ElemKind(b[0]),
		PrimitiveTag: b[1],
		Length:       binary.LittleEndian.Uint32(b[4:8]),
	}
}

// PrimitiveArrayHeader builds the ArrayHeaderInfo for a newarray atype
// tag (4-11).
func PrimitiveArrayHeader(tag uint8) ArrayHeaderInfo {
	return ArrayHeaderInfo{ElemKind: ElemPrimitive, PrimitiveTag: tag}
}

// ObjectArrayHeader builds the ArrayHeaderInfo for an anewarray whose
// element type is a class/interface reference.
func ObjectArrayHeader() ArrayHeaderInfo {
	return ArrayHeaderInfo{ElemKind: ElemObject}
}

// NestedArrayHeader builds the ArrayHeaderInfo for a multianewarray
// dimension whose elements are themselves arrays.
func NestedArrayHeader() ArrayHeaderInfo {
	return ArrayHeaderInfo{ElemKind: ElemArray}
}

// NewArrayTagFromDescriptor maps a primitive field descriptor char to
// its newarray atype tag.
func NewArrayTagFromDescriptor(descriptor byte) (uint8, bool) {
	switch descriptor {
	case 'Z':
		return TagBoolean, true
	case 'C':
		return TagChar, true
	case 'F':
		return TagFloat, true
	case 'D':
		return TagDouble, true
	case 'B':
		return TagByte, true
	case 'S':
		return TagShort, true
	case 'I':
		return TagInt, true
	case 'J':
		return TagLong, true
	default:
		return 0, false
	}
}
