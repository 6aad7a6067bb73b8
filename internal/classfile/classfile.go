package classfile

// Version enumerates known class-file major versions, per spec section
// 6's "45..65 map to Jdk1_1..Jdk21" table.
type Version int

const (
	Jdk1_1 Version = iota + 45
	Jdk1_2
	Jdk1_3
	Jdk1_4
	Jdk5
	Jdk6
	Jdk7
	Jdk8
	Jdk9
	Jdk10
	Jdk11
	Jdk12
	Jdk13
	Jdk14
	Jdk15
	Jdk16
	Jdk17
	Jdk18
	Jdk19
	Jdk20
	Jdk21
)

const (
	minMajorVersion = uint16(Jdk1_1)
	maxMajorVersion = uint16(Jdk21)
	magic           = 0xCAFEBABE
)

// Class access-flag bits, per spec section 6.
const (
	AccPublic     = 0x0001
	AccFinal      = 0x0010
	AccSuper      = 0x0020
	AccInterface  = 0x0200
	AccAbstract   = 0x0400
	AccSynthetic  = 0x1000
	AccAnnotation = 0x2000
	AccEnum       = 0x4000
	AccModule     = 0x8000
)

// Field access-flag bits.
const (
	FieldAccPublic    = 0x0001
	FieldAccPrivate   = 0x0002
	FieldAccProtected = 0x0004
	FieldAccStatic    = 0x0008
	FieldAccFinal     = 0x0010
	FieldAccVolatile  = 0x0040
	FieldAccTransient = 0x0080
	FieldAccSynthetic = 0x1000
	FieldAccEnum      = 0x4000
)

// Method access-flag bits.
const (
	MethodAccPublic       = 0x0001
	MethodAccPrivate      = 0x0002
	MethodAccProtected    = 0x0004
	MethodAccStatic       = 0x0008
	MethodAccFinal        = 0x0010
	MethodAccSynchronized = 0x0020
	MethodAccBridge       = 0x0040
	MethodAccVarargs      = 0x0080
	MethodAccNative       = 0x0100
	MethodAccAbstract     = 0x0400
	MethodAccStrict       = 0x0800
	MethodAccSynthetic    = 0x1000
)

// RawAttribute is an undifferentiated class/field/method/code
// attribute, as read straight from the wire; internal/classfile's
// attribute resolver (attributes.go) turns the recognized ones into
// typed structures on demand.
type RawAttribute struct {
	NameIndex uint16
	Info      []byte
}

// RawField / RawMethod share field_info's wire shape.
type RawField struct {
	AccessFlags uint16
	NameIndex   uint16
	DescIndex   uint16
	Attributes  []RawAttribute
}

type RawMethod struct {
	AccessFlags uint16
	NameIndex   uint16
	DescIndex   uint16
	Attributes  []RawAttribute
}

// ClassFile is the immutable, fully parsed output of Decode: the
// constant pool plus class/field/method/attribute structures, exactly
// as laid out on the wire (1-based constant pool, wide entries
// occupying two physical slots).
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16

	// ConstantPool is 1-indexed; ConstantPool[0] is always the unusable
	// zero entry. A Long/Double at index i leaves ConstantPool[i+1] a
	// placeholder.
	ConstantPool []RawConstant

	AccessFlags uint16

	ThisClass  string
	SuperClass string // empty only for java/lang/Object
	Interfaces []string

	Fields     []RawField
	Methods    []RawMethod
	Attributes []RawAttribute
}

func (c *ClassFile) IsInterface() bool { return c.AccessFlags&AccInterface != 0 }
func (c *ClassFile) IsAbstract() bool  { return c.AccessFlags&AccAbstract != 0 }
func (c *ClassFile) IsPublic() bool    { return c.AccessFlags&AccPublic != 0 }
func (c *ClassFile) IsFinal() bool     { return c.AccessFlags&AccFinal != 0 }
func (c *ClassFile) IsSynthetic() bool { return c.AccessFlags&AccSynthetic != 0 }
func (c *ClassFile) IsEnum() bool      { return c.AccessFlags&AccEnum != 0 }
