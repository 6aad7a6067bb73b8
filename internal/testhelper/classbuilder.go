// Package testhelper hand-assembles minimal .class byte buffers for
// exercising the loader and interpreter in tests, standing in for a
// real javac since no fixture binaries ship with this module. It
// supports only the constant-pool tags and attribute shapes the test
// suite actually needs (no Long/Double pool entries, no interfaces).
package testhelper

import "encoding/binary"

// ClassBuilder accumulates constant-pool entries and members for a
// single class file, keyed so that repeated references to the same
// name/descriptor/class share one pool slot.
type ClassBuilder struct {
	pool       [][]byte
	utf8s      map[string]uint16
	classes    map[string]uint16
	nats       map[[2]string]uint16
	methodrefs map[[3]string]uint16
	fieldrefs  map[[3]string]uint16
}

// NewClassBuilder returns an empty builder.
func NewClassBuilder() *ClassBuilder {
	return &ClassBuilder{
		utf8s:      make(map[string]uint16),
		classes:    make(map[string]uint16),
		nats:       make(map[[2]string]uint16),
		methodrefs: make(map[[3]string]uint16),
		fieldrefs:  make(map[[3]string]uint16),
	}
}

func u16(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func (b *ClassBuilder) add(entry []byte) uint16 {
	b.pool = append(b.pool, entry)
	return uint16(len(b.pool))
}

// Utf8 interns a Utf8 constant-pool entry, returning its 1-based index.
func (b *ClassBuilder) Utf8(s string) uint16 {
	if idx, ok := b.utf8s[s]; ok {
		return idx
	}
	entry := append([]byte{1}, append(u16(uint16(len(s))), []byte(s)...)...)
	idx := b.add(entry)
	b.utf8s[s] = idx
	return idx
}

// Class interns a Class constant-pool entry naming a binary class name.
func (b *ClassBuilder) Class(name string) uint16 {
	if idx, ok := b.classes[name]; ok {
		return idx
	}
	nameIdx := b.Utf8(name)
	idx := b.add(append([]byte{7}, u16(nameIdx)...))
	b.classes[name] = idx
	return idx
}

func (b *ClassBuilder) nameAndType(name, desc string) uint16 {
	key := [2]string{name, desc}
	if idx, ok := b.nats[key]; ok {
		return idx
	}
	nIdx, dIdx := b.Utf8(name), b.Utf8(desc)
	entry := append([]byte{12}, append(u16(nIdx), u16(dIdx)...)...)
	idx := b.add(entry)
	b.nats[key] = idx
	return idx
}

// Methodref interns a Methodref constant-pool entry.
func (b *ClassBuilder) Methodref(owner, name, desc string) uint16 {
	key := [3]string{owner, name, desc}
	if idx, ok := b.methodrefs[key]; ok {
		return idx
	}
	cIdx, ntIdx := b.Class(owner), b.nameAndType(name, desc)
	entry := append([]byte{10}, append(u16(cIdx), u16(ntIdx)...)...)
	idx := b.add(entry)
	b.methodrefs[key] = idx
	return idx
}

// Fieldref interns a Fieldref constant-pool entry.
func (b *ClassBuilder) Fieldref(owner, name, desc string) uint16 {
	key := [3]string{owner, name, desc}
	if idx, ok := b.fieldrefs[key]; ok {
		return idx
	}
	cIdx, ntIdx := b.Class(owner), b.nameAndType(name, desc)
	entry := append([]byte{9}, append(u16(cIdx), u16(ntIdx)...)...)
	idx := b.add(entry)
	b.fieldrefs[key] = idx
	return idx
}

// FieldSpec describes one field_info entry to emit.
type FieldSpec struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
}

// ExceptionRange is one row of a method's exception table, referencing
// a catch type already interned via Class (or "" for catch-all).
type ExceptionRange struct {
	StartPC, EndPC, HandlerPC int
	CatchType                 string
}

// MethodSpec describes one method_info entry to emit. Code == nil
// produces a method with no Code attribute (abstract/native).
type MethodSpec struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	MaxStack    uint16
	MaxLocals   uint16
	Code        []byte
	Exceptions  []ExceptionRange
}

// Build assembles the full class file. superClass == "" is legal only
// for java/lang/Object.
func (b *ClassBuilder) Build(thisClass, superClass string, accessFlags uint16, fields []FieldSpec, methods []MethodSpec) []byte {
	thisIdx := b.Class(thisClass)
	var superIdx uint16
	if superClass != "" {
		superIdx = b.Class(superClass)
	}
	codeNameIdx := b.Utf8("Code")

	type idxPair struct{ name, desc uint16 }
	fieldIdxs := make([]idxPair, len(fields))
	for i, f := range fields {
		fieldIdxs[i] = idxPair{b.Utf8(f.Name), b.Utf8(f.Descriptor)}
	}
	methodIdxs := make([]idxPair, len(methods))
	for i, m := range methods {
		methodIdxs[i] = idxPair{b.Utf8(m.Name), b.Utf8(m.Descriptor)}
	}
	// Catch-type class refs must be interned before the pool is emitted.
	catchIdxs := make([][]uint16, len(methods))
	for i, m := range methods {
		catchIdxs[i] = make([]uint16, len(m.Exceptions))
		for j, e := range m.Exceptions {
			if e.CatchType != "" {
				catchIdxs[i][j] = b.Class(e.CatchType)
			}
		}
	}

	var out []byte
	out = append(out, 0xCA, 0xFE, 0xBA, 0xBE)
	out = append(out, 0x00, 0x00) // minor version
	out = append(out, 0x00, 52)   // major version: Jdk8

	out = append(out, u16(uint16(len(b.pool)+1))...)
	for _, e := range b.pool {
		out = append(out, e...)
	}

	out = append(out, u16(accessFlags)...)
	out = append(out, u16(thisIdx)...)
	out = append(out, u16(superIdx)...)
	out = append(out, 0x00, 0x00) // interfaces_count

	out = append(out, u16(uint16(len(fields)))...)
	for i, f := range fields {
		out = append(out, u16(f.AccessFlags)...)
		out = append(out, u16(fieldIdxs[i].name)...)
		out = append(out, u16(fieldIdxs[i].desc)...)
		out = append(out, 0x00, 0x00) // attributes_count
	}

	out = append(out, u16(uint16(len(methods)))...)
	for i, m := range methods {
		out = append(out, u16(m.AccessFlags)...)
		out = append(out, u16(methodIdxs[i].name)...)
		out = append(out, u16(methodIdxs[i].desc)...)
		if m.Code == nil {
			out = append(out, 0x00, 0x00)
			continue
		}
		codeAttr := encodeCodeAttr(m.MaxStack, m.MaxLocals, m.Code, m.Exceptions, catchIdxs[i])
		out = append(out, 0x00, 0x01) // attributes_count
		out = append(out, u16(codeNameIdx)...)
		out = append(out, u32(uint32(len(codeAttr)))...)
		out = append(out, codeAttr...)
	}

	out = append(out, 0x00, 0x00) // class attributes_count
	return out
}

func encodeCodeAttr(maxStack, maxLocals uint16, code []byte, excs []ExceptionRange, catchIdxs []uint16) []byte {
	var out []byte
	out = append(out, u16(maxStack)...)
	out = append(out, u16(maxLocals)...)
	out = append(out, u32(uint32(len(code)))...)
	out = append(out, code...)
	out = append(out, u16(uint16(len(excs)))...)
	for i, e := range excs {
		out = append(out, u16(uint16(e.StartPC))...)
		out = append(out, u16(uint16(e.EndPC))...)
		out = append(out, u16(uint16(e.HandlerPC))...)
		out = append(out, u16(catchIdxs[i])...)
	}
	out = append(out, 0x00, 0x00) // attributes_count (no LineNumberTable etc.)
	return out
}
