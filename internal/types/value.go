// Package types holds the shared runtime value representation used by
// the heap, frames, and interpreter: the closed Value variant from
// spec section 3, plus field/method descriptor parsing.
package types

import "fmt"

// Tag identifies which arm of the Value variant is populated.
type Tag uint8

const (
	TagUninitialized Tag = iota
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagReturnAddress
	TagObjectRef
	TagArrayRef
	TagNull
)

// Ref identifies a heap-resident object or array by its byte offset
// into the heap arena. A Value with TagNull means "no object"; nullness
// is carried by the tag alone, since Ref(0) is a valid offset (the
// heap's first allocation starts at byte 0).
type Ref uint64

// Value is the tagged variant that flows through the operand stack,
// local-variable table, and static/instance field slots. Byte, short,
// char, and boolean all collapse onto TagInt, matching the JVM's
// computational-type rules; the descriptor recovers the distinction
// at store time (internal/heap).
type Value struct {
	Tag Tag
	I   int32
	L   int64
	F   float32
	D   float64
	Ret uint32
	Ref Ref
}

func Uninitialized() Value { return Value{Tag: TagUninitialized} }
func Null() Value           { return Value{Tag: TagNull} }
func Int(i int32) Value     { return Value{Tag: TagInt, I: i} }
func Long(l int64) Value    { return Value{Tag: TagLong, L: l} }
func Float(f float32) Value { return Value{Tag: TagFloat, F: f} }
func Double(d float64) Value { return Value{Tag: TagDouble, D: d} }
func ReturnAddress(pc uint32) Value { return Value{Tag: TagReturnAddress, Ret: pc} }
func ObjectRef(r Ref) Value { return Value{Tag: TagObjectRef, Ref: r} }
func ArrayRef(r Ref) Value  { return Value{Tag: TagArrayRef, Ref: r} }

// IsWide reports whether this value's computational type occupies two
// stack/local slots (long, double).
func (v Value) IsWide() bool { return v.Tag == TagLong || v.Tag == TagDouble }

// IsReference reports whether v is any kind of reference (object,
// array, or null) — the accessors that accept "a reference or null"
// per spec section 4.7 test this.
func (v Value) IsReference() bool {
	return v.Tag == TagObjectRef || v.Tag == TagArrayRef || v.Tag == TagNull
}

func (v Value) String() string {
	switch v.Tag {
	case TagUninitialized:
		return "<uninitialized>"
	case TagInt:
		return fmt.Sprintf("int(%d)", v.I)
	case TagLong:
		return fmt.Sprintf("long(%d)", v.L)
	case TagFloat:
		return fmt.Sprintf("float(%g)", v.F)
	case TagDouble:
		return fmt.Sprintf("double(%g)", v.D)
	case TagReturnAddress:
		return fmt.Sprintf("retaddr(%d)", v.Ret)
	case TagObjectRef:
		return fmt.Sprintf("objectref(%d)", v.Ref)
	case TagArrayRef:
		return fmt.Sprintf("arrayref(%d)", v.Ref)
	case TagNull:
		return "null"
	default:
		return "<invalid value>"
	}
}

// ZeroFor returns the default value for a field/array-element
// descriptor: 0 for numerics, Null for references. Used by the method
// area when linking static fields with no ConstantValue attribute, and
// by the interpreter when allocating new instances.
func ZeroFor(descriptor string) Value {
	if descriptor == "" {
		return Uninitialized()
	}
	switch descriptor[0] {
	case 'J':
		return Long(0)
	case 'F':
		return Float(0)
	case 'D':
		return Double(0)
	case 'L', '[':
		return Null()
	default: // B C I S Z
		return Int(0)
	}
}
