package classfile

import (
	"github.com/z-yn/litejvm/internal/vmerrors"
)

// Decode parses raw bytes into a ClassFile. It never returns partial
// state: on any error the returned ClassFile is nil.
func Decode(raw []byte) (*ClassFile, error) {
	r := NewReader(raw)

	magicVal, err := r.U4()
	if err != nil {
		return nil, err
	}
	if magicVal != magic {
		return nil, vmerrors.New(vmerrors.ClassFormatError, "bad magic 0x%08X, want 0xCAFEBABE", magicVal)
	}

	minor, err := r.U2()
	if err != nil {
		return nil, err
	}
	major, err := r.U2()
	if err != nil {
		return nil, err
	}
	if major < minMajorVersion || major > maxMajorVersion {
		return nil, vmerrors.New(vmerrors.UnsupportedVersion, "major=%d minor=%d", major, minor)
	}

	pool, err := decodeConstantPool(r)
	if err != nil {
		return nil, err
	}

	accessFlags, err := r.U2()
	if err != nil {
		return nil, err
	}

	thisClassIdx, err := r.U2()
	if err != nil {
		return nil, err
	}
	superClassIdx, err := r.U2()
	if err != nil {
		return nil, err
	}

	thisClass, err := classNameAt(pool, thisClassIdx)
	if err != nil {
		return nil, err
	}
	var superClass string
	if superClassIdx != 0 {
		superClass, err = classNameAt(pool, superClassIdx)
		if err != nil {
			return nil, err
		}
	}

	interfacesCount, err := r.U2()
	if err != nil {
		return nil, err
	}
	interfaces := make([]string, 0, interfacesCount)
	for i := uint16(0); i < interfacesCount; i++ {
		idx, err := r.U2()
		if err != nil {
			return nil, err
		}
		name, err := classNameAt(pool, idx)
		if err != nil {
			return nil, err
		}
		interfaces = append(interfaces, name)
	}

	fields, err := decodeFields(r)
	if err != nil {
		return nil, err
	}
	methods, err := decodeMethods(r)
	if err != nil {
		return nil, err
	}
	attrs, err := decodeAttributes(r)
	if err != nil {
		return nil, err
	}

	return &ClassFile{
		MinorVersion: minor,
		MajorVersion: major,
		ConstantPool: pool,
		AccessFlags:  accessFlags,
		ThisClass:    thisClass,
		SuperClass:   superClass,
		Interfaces:   interfaces,
		Fields:       fields,
		Methods:      methods,
		Attributes:   attrs,
	}, nil
}

func decodeConstantPool(r *Reader) ([]RawConstant, error) {
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	pool := make([]RawConstant, count) // pool[0] unused
	for i := 1; i < int(count); i++ {
		tagByte, err := r.U1()
		if err != nil {
			return nil, err
		}
		entry, wide, err := decodeConstantEntry(r, Tag(tagByte))
		if err != nil {
			return nil, err
		}
		pool[i] = entry
		if wide {
			i++
			if i < int(count) {
				pool[i] = RawConstant{IsPlaceholder: true}
			}
		}
	}
	return pool, nil
}

// decodeConstantEntry decodes one tag-dispatched entry and reports
// whether it consumed a second (placeholder) slot, per spec section
// 4.2's tag table.
func decodeConstantEntry(r *Reader, tag Tag) (RawConstant, bool, error) {
	switch tag {
	case TagUtf8:
		s, err := r.Utf8()
		return RawConstant{Tag: tag, Str: s}, false, err
	case TagInteger:
		v, err := r.I4()
		return RawConstant{Tag: tag, Int: v}, false, err
	case TagFloat:
		v, err := r.F4()
		return RawConstant{Tag: tag, Float: v}, false, err
	case TagLong:
		v, err := r.I8()
		return RawConstant{Tag: tag, Long: v}, true, err
	case TagDouble:
		v, err := r.F8()
		return RawConstant{Tag: tag, Double: v}, true, err
	case TagClass, TagString, TagMethodType, TagModule, TagPackage:
		idx, err := r.U2()
		return RawConstant{Tag: tag, Index1: idx}, false, err
	case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType,
		TagDynamic, TagInvokeDynamic:
		i1, err := r.U2()
		if err != nil {
			return RawConstant{}, false, err
		}
		i2, err := r.U2()
		return RawConstant{Tag: tag, Index1: i1, Index2: i2}, false, err
	case TagMethodHandle:
		kind, err := r.U1()
		if err != nil {
			return RawConstant{}, false, err
		}
		idx, err := r.U2()
		return RawConstant{Tag: tag, RefKind: kind, RefIndex: idx}, false, err
	default:
		return RawConstant{}, false, vmerrors.New(vmerrors.ConstantPoolTagNotSupported, "tag=%d", tag)
	}
}

func classNameAt(pool []RawConstant, idx uint16) (string, error) {
	if idx == 0 {
		return "", nil
	}
	if int(idx) >= len(pool) {
		return "", vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d out of range", idx)
	}
	entry := pool[idx]
	if entry.Tag != TagClass {
		return "", vmerrors.New(vmerrors.ClassFormatError, "CP index %d expected Class, got tag %d", idx, entry.Tag)
	}
	if int(entry.Index1) >= len(pool) {
		return "", vmerrors.New(vmerrors.InvalidConstantPoolIndex, "index %d out of range", entry.Index1)
	}
	utf := pool[entry.Index1]
	if utf.Tag != TagUtf8 {
		return "", vmerrors.New(vmerrors.ClassFormatError, "CP index %d expected Utf8, got tag %d", entry.Index1, utf.Tag)
	}
	return utf.Str, nil
}

func decodeAttributes(r *Reader) ([]RawAttribute, error) {
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	attrs := make([]RawAttribute, 0, count)
	for i := uint16(0); i < count; i++ {
		nameIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		length, err := r.U4()
		if err != nil {
			return nil, err
		}
		info, err := r.Bytes(int(length))
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, RawAttribute{NameIndex: nameIdx, Info: info})
	}
	return attrs, nil
}

func decodeFields(r *Reader) ([]RawField, error) {
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	out := make([]RawField, 0, count)
	for i := uint16(0); i < count; i++ {
		access, err := r.U2()
		if err != nil {
			return nil, err
		}
		name, err := r.U2()
		if err != nil {
			return nil, err
		}
		desc, err := r.U2()
		if err != nil {
			return nil, err
		}
		attrs, err := decodeAttributes(r)
		if err != nil {
			return nil, err
		}
		out = append(out, RawField{AccessFlags: access, NameIndex: name, DescIndex: desc, Attributes: attrs})
	}
	return out, nil
}

func decodeMethods(r *Reader) ([]RawMethod, error) {
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	out := make([]RawMethod, 0, count)
	for i := uint16(0); i < count; i++ {
		access, err := r.U2()
		if err != nil {
			return nil, err
		}
		name, err := r.U2()
		if err != nil {
			return nil, err
		}
		desc, err := r.U2()
		if err != nil {
			return nil, err
		}
		attrs, err := decodeAttributes(r)
		if err != nil {
			return nil, err
		}
		out = append(out, RawMethod{AccessFlags: access, NameIndex: name, DescIndex: desc, Attributes: attrs})
	}
	return out, nil
}
