package classfile

// Tag identifies the kind of a raw constant-pool entry, per spec
// section 4.2's tag dispatch table.
type Tag uint8

const (
	TagUtf8               Tag = 1
	TagInteger             Tag = 3
	TagFloat               Tag = 4
	TagLong                Tag = 5
	TagDouble              Tag = 6
	TagClass               Tag = 7
	TagString              Tag = 8
	TagFieldref            Tag = 9
	TagMethodref           Tag = 10
	TagInterfaceMethodref  Tag = 11
	TagNameAndType         Tag = 12
	TagMethodHandle        Tag = 15
	TagMethodType          Tag = 16
	TagDynamic             Tag = 17
	TagInvokeDynamic       Tag = 18
	TagModule              Tag = 19
	TagPackage             Tag = 20
)

// RawConstant is one physical constant-pool slot as decoded straight
// off the wire, before the owning-name/descriptor indirection has been
// chased (see runtimepool.go for the resolved form).
type RawConstant struct {
	Tag Tag

	// Utf8
	Str string

	// Integer / Float / Long / Double
	Int    int32
	Float  float32
	Long   int64
	Double float64

	// Class / String / MethodType / Module / Package: single u2 index
	Index1 uint16

	// Fieldref / Methodref / InterfaceMethodref / NameAndType /
	// Dynamic / InvokeDynamic: two u2 indices
	Index2 uint16

	// MethodHandle
	RefKind  uint8
	RefIndex uint16

	// IsPlaceholder marks the unusable slot following a Long or
	// Double's logical entry (spec section 3's "wide entries").
	IsPlaceholder bool
}

// ReferenceKind enumerates MethodHandle kinds (JVMS table 5.3.5-A),
// kept narrow since this VM only needs to carry the value through,
// never dispatch on method-handle semantics (invokedynamic is stubbed).
type ReferenceKind uint8

const (
	RefGetField ReferenceKind = iota + 1
	RefGetStatic
	RefPutField
	RefPutStatic
	RefInvokeVirtual
	RefInvokeStatic
	RefInvokeSpecial
	RefNewInvokeSpecial
	RefInvokeInterface
)
