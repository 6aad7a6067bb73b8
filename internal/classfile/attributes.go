package classfile

import (
	"github.com/z-yn/litejvm/internal/vmerrors"
)

// CodeException is one row of a Code attribute's exception table.
type CodeException struct {
	StartPc   int
	EndPc     int
	HandlerPc int
	CatchType string // empty = catch-all
}

// LineNumberEntry maps a bytecode offset to a source line.
type LineNumberEntry struct {
	StartPc int
	Line    int
}

// LocalVariableEntry describes one named local slot's live range,
// shared shape for both LocalVariableTable and LocalVariableTypeTable.
type LocalVariableEntry struct {
	StartPc int
	Length  int
	Name    string
	Descriptor string
	Index   int
}

// Code is the resolved form of a method's Code attribute.
type Code struct {
	MaxStack   int
	MaxLocals  int
	Bytes      []byte
	Exceptions []CodeException
	LineNumbers []LineNumberEntry
	LocalVars   []LocalVariableEntry
}

// ResolveCode parses a Code attribute's raw bytes (spec section 4.4).
func ResolveCode(info []byte, pool *RuntimeConstantPool) (*Code, error) {
	r := NewReader(info)
	maxStack, err := r.U2()
	if err != nil {
		return nil, err
	}
	maxLocals, err := r.U2()
	if err != nil {
		return nil, err
	}
	codeLen, err := r.U4()
	if err != nil {
		return nil, err
	}
	bytes, err := r.Bytes(int(codeLen))
	if err != nil {
		return nil, err
	}

	excCount, err := r.U2()
	if err != nil {
		return nil, err
	}
	exceptions := make([]CodeException, 0, excCount)
	for i := uint16(0); i < excCount; i++ {
		startPc, err := r.U2()
		if err != nil {
			return nil, err
		}
		endPc, err := r.U2()
		if err != nil {
			return nil, err
		}
		handlerPc, err := r.U2()
		if err != nil {
			return nil, err
		}
		catchIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		catchType := ""
		if catchIdx != 0 {
			catchType, err = pool.GetClassName(int(catchIdx))
			if err != nil {
				return nil, err
			}
		}
		exceptions = append(exceptions, CodeException{
			StartPc: int(startPc), EndPc: int(endPc), HandlerPc: int(handlerPc), CatchType: catchType,
		})
	}

	code := &Code{
		MaxStack:   int(maxStack),
		MaxLocals:  int(maxLocals),
		Bytes:      bytes,
		Exceptions: exceptions,
	}

	nestedAttrs, err := decodeAttributes(r)
	if err != nil {
		return nil, err
	}
	for _, a := range nestedAttrs {
		name, err := pool.GetUtf8(int(a.NameIndex))
		if err != nil {
			return nil, err
		}
		switch name {
		case "LineNumberTable":
			lines, err := resolveLineNumberTable(a.Info)
			if err != nil {
				return nil, err
			}
			code.LineNumbers = append(code.LineNumbers, lines...)
		case "LocalVariableTable":
			lvs, err := resolveLocalVariableTable(a.Info, pool, false)
			if err != nil {
				return nil, err
			}
			code.LocalVars = append(code.LocalVars, lvs...)
		case "LocalVariableTypeTable":
			lvs, err := resolveLocalVariableTable(a.Info, pool, true)
			if err != nil {
				return nil, err
			}
			code.LocalVars = append(code.LocalVars, lvs...)
		default:
			// unknown nested attribute: ignored per spec section 4.4
		}
	}
	return code, nil
}

func resolveLineNumberTable(info []byte) ([]LineNumberEntry, error) {
	r := NewReader(info)
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	out := make([]LineNumberEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		pc, err := r.U2()
		if err != nil {
			return nil, err
		}
		line, err := r.U2()
		if err != nil {
			return nil, err
		}
		out = append(out, LineNumberEntry{StartPc: int(pc), Line: int(line)})
	}
	return out, nil
}

func resolveLocalVariableTable(info []byte, pool *RuntimeConstantPool, isTypeTable bool) ([]LocalVariableEntry, error) {
	r := NewReader(info)
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	out := make([]LocalVariableEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		startPc, err := r.U2()
		if err != nil {
			return nil, err
		}
		length, err := r.U2()
		if err != nil {
			return nil, err
		}
		nameIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		descIdx, err := r.U2()
		if err != nil {
			return nil, err
		}
		index, err := r.U2()
		if err != nil {
			return nil, err
		}
		name, err := pool.GetUtf8(int(nameIdx))
		if err != nil {
			return nil, err
		}
		desc, err := pool.GetUtf8(int(descIdx))
		if err != nil {
			return nil, err
		}
		out = append(out, LocalVariableEntry{
			StartPc: int(startPc), Length: int(length), Name: name, Descriptor: desc, Index: int(index),
		})
	}
	return out, nil
}

// ResolveConstantValue resolves a ConstantValue attribute (a 2-byte
// constant-pool index) to one of Int/Float/Long/Double/String.
func ResolveConstantValue(info []byte, pool *RuntimeConstantPool) (any, error) {
	r := NewReader(info)
	idx, err := r.U2()
	if err != nil {
		return nil, err
	}
	entry, err := pool.Get(int(idx))
	if err != nil {
		return nil, err
	}
	switch v := entry.(type) {
	case IntegerConst:
		return v.Value, nil
	case FloatConst:
		return v.Value, nil
	case LongConst:
		return v.Value, nil
	case DoubleConst:
		return v.Value, nil
	case StringRefConst:
		return v.Value, nil
	default:
		return nil, vmerrors.New(vmerrors.InvalidCodeError, "ConstantValue index %d is not a constant value type", idx)
	}
}

// ResolveExceptions resolves a method-level Exceptions attribute into
// the list of declared thrown exception class names.
func ResolveExceptions(info []byte, pool *RuntimeConstantPool) ([]string, error) {
	r := NewReader(info)
	count, err := r.U2()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, count)
	for i := uint16(0); i < count; i++ {
		idx, err := r.U2()
		if err != nil {
			return nil, err
		}
		name, err := pool.GetClassName(int(idx))
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}
