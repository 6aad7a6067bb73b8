package interp

import (
	"math"

	"github.com/z-yn/litejvm/internal/classfile"
	"github.com/z-yn/litejvm/internal/frame"
	"github.com/z-yn/litejvm/internal/methodarea"
	"github.com/z-yn/litejvm/internal/types"
	"github.com/z-yn/litejvm/internal/vmerrors"
)

// runFrame is the dispatch loop of spec section 4.10: starting at
// pc=0, decode one opcode, execute it, proceed to the next
// instruction unless the opcode itself altered the pc.
func (it *Interp) runFrame(f *frame.Frame, owner *methodarea.Class, m *methodarea.Method) (*types.Value, error) {
	code := m.Code
	r := classfile.NewReader(code.Bytes)

	for {
		if err := r.JumpTo(f.PC); err != nil {
			return nil, err
		}
		atPC := f.PC
		opcode, err := r.U1()
		if err != nil {
			return nil, err
		}

		result, done, jumped, err := it.step(f, owner, r, Op(opcode))
		if err != nil {
			if te, ok := err.(*thrownException); ok {
				handled, herr := it.handleException(f, codeRef{code}, atPC, te)
				if herr != nil {
					return nil, herr
				}
				if handled {
					continue
				}
				return nil, te
			}
			return nil, err
		}
		if done {
			return result, nil
		}
		if !jumped {
			f.PC = r.Pos()
		}
	}
}

func (it *Interp) step(f *frame.Frame, owner *methodarea.Class, r *classfile.Reader, op Op) (result *types.Value, done bool, jumped bool, err error) {
	switch op {
	case NOP:
		return nil, false, false, nil

	// --- constants ---
	case ACONST_NULL:
		return nil, false, false, f.Push(types.Null())
	case ICONST_M1, ICONST_0, ICONST_1, ICONST_2, ICONST_3, ICONST_4, ICONST_5:
		return nil, false, false, f.Push(types.Int(int32(op) - int32(ICONST_0)))
	case LCONST_0, LCONST_1:
		return nil, false, false, f.Push(types.Long(int64(op) - int64(LCONST_0)))
	case FCONST_0, FCONST_1, FCONST_2:
		return nil, false, false, f.Push(types.Float(float32(op) - float32(FCONST_0)))
	case DCONST_0, DCONST_1:
		return nil, false, false, f.Push(types.Double(float64(op) - float64(DCONST_0)))
	case BIPUSH:
		b, e := r.I1()
		if e != nil {
			return nil, false, false, e
		}
		return nil, false, false, f.Push(types.Int(int32(b)))
	case SIPUSH:
		s, e := r.I2()
		if e != nil {
			return nil, false, false, e
		}
		return nil, false, false, f.Push(types.Int(int32(s)))
	case LDC:
		idx, e := r.U1()
		if e != nil {
			return nil, false, false, e
		}
		return nil, false, false, it.pushConstant(f, owner, int(idx))
	case LDC_W, LDC2_W:
		idx, e := r.U2()
		if e != nil {
			return nil, false, false, e
		}
		return nil, false, false, it.pushConstant(f, owner, int(idx))

	// --- loads ---
	case ILOAD, FLOAD, ALOAD:
		idx, e := r.U1()
		if e != nil {
			return nil, false, false, e
		}
		return nil, false, false, f.Push(f.Locals[idx])
	case LLOAD, DLOAD:
		idx, e := r.U1()
		if e != nil {
			return nil, false, false, e
		}
		return nil, false, false, f.Push(f.Locals[idx])
	case ILOAD_0, ILOAD_1, ILOAD_2, ILOAD_3:
		return nil, false, false, f.Push(f.Locals[int(op-ILOAD_0)])
	case LLOAD_0, LLOAD_1, LLOAD_2, LLOAD_3:
		return nil, false, false, f.Push(f.Locals[int(op-LLOAD_0)])
	case FLOAD_0, FLOAD_1, FLOAD_2, FLOAD_3:
		return nil, false, false, f.Push(f.Locals[int(op-FLOAD_0)])
	case DLOAD_0, DLOAD_1, DLOAD_2, DLOAD_3:
		return nil, false, false, f.Push(f.Locals[int(op-DLOAD_0)])
	case ALOAD_0, ALOAD_1, ALOAD_2, ALOAD_3:
		return nil, false, false, f.Push(f.Locals[int(op-ALOAD_0)])

	// --- stores ---
	case ISTORE, FSTORE, ASTORE, LSTORE, DSTORE:
		idx, e := r.U1()
		if e != nil {
			return nil, false, false, e
		}
		v, e := f.Pop()
		if e != nil {
			return nil, false, false, e
		}
		f.Locals[idx] = v
		return nil, false, false, nil
	case ISTORE_0, ISTORE_1, ISTORE_2, ISTORE_3:
		return nil, false, false, storeLocal(f, int(op-ISTORE_0))
	case LSTORE_0, LSTORE_1, LSTORE_2, LSTORE_3:
		return nil, false, false, storeLocal(f, int(op-LSTORE_0))
	case FSTORE_0, FSTORE_1, FSTORE_2, FSTORE_3:
		return nil, false, false, storeLocal(f, int(op-FSTORE_0))
	case DSTORE_0, DSTORE_1, DSTORE_2, DSTORE_3:
		return nil, false, false, storeLocal(f, int(op-DSTORE_0))
	case ASTORE_0, ASTORE_1, ASTORE_2, ASTORE_3:
		return nil, false, false, storeLocal(f, int(op-ASTORE_0))

	// --- stack ---
	case POP:
		_, e := f.Pop()
		return nil, false, false, e
	case POP2:
		if _, e := f.Pop(); e != nil {
			return nil, false, false, e
		}
		_, e := f.Pop()
		return nil, false, false, e
	case DUP:
		return nil, false, false, f.Dup()
	case DUP_X1:
		return nil, false, false, f.DupX1()
	case DUP_X2:
		return nil, false, false, f.DupX2()
	case DUP2:
		return nil, false, false, f.Dup2()
	case DUP2_X1:
		return nil, false, false, f.Dup2X1()
	case DUP2_X2:
		return nil, false, false, f.Dup2X2()
	case SWAP:
		return nil, false, false, f.Swap()

	// --- arithmetic / conversions / compares ---
	case IADD, ISUB, IMUL, IDIV, IREM, IAND, IOR, IXOR, ISHL, ISHR, IUSHR,
		LADD, LSUB, LMUL, LDIV, LREM, LAND, LOR, LXOR, LSHL, LSHR, LUSHR,
		FADD, FSUB, FMUL, FDIV, FREM, DADD, DSUB, DMUL, DDIV, DREM,
		INEG, LNEG, FNEG, DNEG:
		return nil, false, false, it.arith(f, op)

	case IINC:
		idx, e := r.U1()
		if e != nil {
			return nil, false, false, e
		}
		delta, e := r.I1()
		if e != nil {
			return nil, false, false, e
		}
		f.Locals[idx] = types.Int(f.Locals[idx].I + int32(delta))
		return nil, false, false, nil

	case I2L, I2F, I2D, L2I, L2F, L2D, F2I, F2L, F2D, D2I, D2L, D2F, I2B, I2C, I2S:
		return nil, false, false, it.convert(f, op)

	case LCMP, FCMPL, FCMPG, DCMPL, DCMPG:
		return nil, false, false, it.compareOp(f, op)

	// --- branches ---
	case IFEQ, IFNE, IFLT, IFGE, IFGT, IFLE:
		return it.ifCond(f, r, op)
	case IF_ICMPEQ, IF_ICMPNE, IF_ICMPLT, IF_ICMPGE, IF_ICMPGT, IF_ICMPLE:
		return it.ifICmp(f, r, op)
	case IF_ACMPEQ, IF_ACMPNE:
		return it.ifACmp(f, r, op)
	case IFNULL, IFNONNULL:
		return it.ifNullCond(f, r, op)
	case GOTO:
		off, e := r.I2()
		if e != nil {
			return nil, false, false, e
		}
		f.PC = branchTarget(r, off)
		return nil, false, true, nil
	case GOTO_W:
		off, e := r.I4()
		if e != nil {
			return nil, false, false, e
		}
		f.PC = branchTargetWide(r, off)
		return nil, false, true, nil
	case JSR:
		off, e := r.I2()
		if e != nil {
			return nil, false, false, e
		}
		ret := r.Pos()
		if e := f.Push(types.ReturnAddress(uint32(ret))); e != nil {
			return nil, false, false, e
		}
		f.PC = branchTarget(r, off)
		return nil, false, true, nil
	case JSR_W:
		off, e := r.I4()
		if e != nil {
			return nil, false, false, e
		}
		ret := r.Pos()
		if e := f.Push(types.ReturnAddress(uint32(ret))); e != nil {
			return nil, false, false, e
		}
		f.PC = branchTargetWide(r, off)
		return nil, false, true, nil
	case RET:
		idx, e := r.U1()
		if e != nil {
			return nil, false, false, e
		}
		f.PC = int(f.Locals[idx].Ret)
		return nil, false, true, nil

	case TABLESWITCH:
		return it.tableSwitch(f, r)
	case LOOKUPSWITCH:
		return it.lookupSwitch(f, r)

	// --- returns ---
	case IRETURN, LRETURN, FRETURN, DRETURN, ARETURN:
		v, e := f.Pop()
		if e != nil {
			return nil, false, false, e
		}
		return &v, true, false, nil
	case RETURN:
		return nil, true, false, nil

	// --- objects / fields ---
	case NEW:
		return nil, false, false, it.opNew(f, owner, r)
	case GETSTATIC:
		return nil, false, false, it.opGetStatic(f, owner, r)
	case PUTSTATIC:
		return nil, false, false, it.opPutStatic(f, owner, r)
	case GETFIELD:
		return nil, false, false, it.opGetField(f, owner, r)
	case PUTFIELD:
		return nil, false, false, it.opPutField(f, owner, r)
	case INSTANCEOF:
		return nil, false, false, it.opInstanceOf(f, owner, r)
	case CHECKCAST:
		return nil, false, false, it.opCheckCast(f, owner, r)

	// --- arrays ---
	case NEWARRAY:
		return nil, false, false, it.opNewArray(f, r)
	case ANEWARRAY:
		return nil, false, false, it.opANewArray(f, owner, r)
	case MULTIANEWARRAY:
		return nil, false, false, it.opMultiANewArray(f, owner, r)
	case ARRAYLENGTH:
		return nil, false, false, it.opArrayLength(f)
	case IALOAD, LALOAD, FALOAD, DALOAD, AALOAD, BALOAD, CALOAD, SALOAD:
		return nil, false, false, it.opArrayLoad(f, op)
	case IASTORE, LASTORE, FASTORE, DASTORE, AASTORE, BASTORE, CASTORE, SASTORE:
		return nil, false, false, it.opArrayStore(f, op)

	// --- invocation ---
	case INVOKESTATIC:
		return it.opInvokeStatic(f, owner, r)
	case INVOKESPECIAL:
		return it.opInvokeSpecial(f, owner, r)
	case INVOKEVIRTUAL:
		return it.opInvokeVirtual(f, owner, r)
	case INVOKEINTERFACE:
		return it.opInvokeInterface(f, owner, r)
	case INVOKEDYNAMIC:
		return nil, false, false, vmerrors.New(vmerrors.NotImplemented, "invokedynamic")

	// --- throw / monitor ---
	case ATHROW:
		v, e := f.Pop()
		if e != nil {
			return nil, false, false, e
		}
		if v.Tag == types.TagNull {
			return nil, false, false, it.raise("java/lang/NullPointerException", "athrow null")
		}
		return nil, false, false, &thrownException{Value: v}
	case MONITORENTER, MONITOREXIT:
		_, e := f.Pop()
		return nil, false, false, e

	case WIDE:
		return it.opWide(f, r)

	default:
		return nil, false, false, vmerrors.New(vmerrors.NotImplemented, "opcode 0x%02X", op)
	}
}

func storeLocal(f *frame.Frame, idx int) error {
	v, err := f.Pop()
	if err != nil {
		return err
	}
	f.Locals[idx] = v
	return nil
}

func branchTarget(r *classfile.Reader, off int16) int {
	return r.Pos() - 3 + int(off) // opcode(1) + i2 operand(2) already consumed
}

func branchTargetWide(r *classfile.Reader, off int32) int {
	return r.Pos() - 5 + int(off) // opcode(1) + i4 operand(4) already consumed
}

func (it *Interp) pushConstant(f *frame.Frame, owner *methodarea.Class, idx int) error {
	entry, err := owner.Pool.Get(idx)
	if err != nil {
		return err
	}
	switch c := entry.(type) {
	case classfile.IntegerConst:
		return f.Push(types.Int(c.Value))
	case classfile.FloatConst:
		return f.Push(types.Float(c.Value))
	case classfile.LongConst:
		return f.Push(types.Long(c.Value))
	case classfile.DoubleConst:
		return f.Push(types.Double(c.Value))
	case classfile.StringRefConst:
		v, err := it.InternString(c.Value)
		if err != nil {
			return err
		}
		return f.Push(v)
	case classfile.ClassRefConst:
		v, err := it.ClassMirror(c.Name)
		if err != nil {
			return err
		}
		return f.Push(v)
	default:
		return vmerrors.New(vmerrors.ValueTypeMismatch, "ldc on non-loadable constant pool entry")
	}
}

func (it *Interp) arith(f *frame.Frame, op Op) error {
	switch op {
	case INEG, LNEG, FNEG, DNEG:
		v, err := f.Pop()
		if err != nil {
			return err
		}
		switch op {
		case INEG:
			return f.Push(types.Int(-v.I))
		case LNEG:
			return f.Push(types.Long(-v.L))
		case FNEG:
			return f.Push(types.Float(-v.F))
		default:
			return f.Push(types.Double(-v.D))
		}
	}
	b, err := f.Pop()
	if err != nil {
		return err
	}
	a, err := f.Pop()
	if err != nil {
		return err
	}
	switch op {
	case IADD:
		return f.Push(types.Int(a.I + b.I))
	case ISUB:
		return f.Push(types.Int(a.I - b.I))
	case IMUL:
		return f.Push(types.Int(a.I * b.I))
	case IDIV:
		if b.I == 0 {
			return it.raise("java/lang/ArithmeticException", "/ by zero")
		}
		return f.Push(types.Int(a.I / b.I))
	case IREM:
		if b.I == 0 {
			return it.raise("java/lang/ArithmeticException", "/ by zero")
		}
		return f.Push(types.Int(a.I % b.I))
	case IAND:
		return f.Push(types.Int(a.I & b.I))
	case IOR:
		return f.Push(types.Int(a.I | b.I))
	case IXOR:
		return f.Push(types.Int(a.I ^ b.I))
	case ISHL:
		return f.Push(types.Int(a.I << shiftMask32(b.I)))
	case ISHR:
		return f.Push(types.Int(a.I >> shiftMask32(b.I)))
	case IUSHR:
		return f.Push(types.Int(int32(uint32(a.I) >> shiftMask32(b.I))))

	case LADD:
		return f.Push(types.Long(a.L + b.L))
	case LSUB:
		return f.Push(types.Long(a.L - b.L))
	case LMUL:
		return f.Push(types.Long(a.L * b.L))
	case LDIV:
		if b.L == 0 {
			return it.raise("java/lang/ArithmeticException", "/ by zero")
		}
		return f.Push(types.Long(a.L / b.L))
	case LREM:
		if b.L == 0 {
			return it.raise("java/lang/ArithmeticException", "/ by zero")
		}
		return f.Push(types.Long(a.L % b.L))
	case LAND:
		return f.Push(types.Long(a.L & b.L))
	case LOR:
		return f.Push(types.Long(a.L | b.L))
	case LXOR:
		return f.Push(types.Long(a.L ^ b.L))
	case LSHL:
		// shift count is always an int on the operand stack, even for
		// long shifts (JVMS lshl/lshr/lushr).
		return f.Push(types.Long(a.L << shiftMask64(b.I)))
	case LSHR:
		return f.Push(types.Long(a.L >> shiftMask64(b.I)))
	case LUSHR:
		return f.Push(types.Long(int64(uint64(a.L) >> shiftMask64(b.I))))

	case FADD:
		return f.Push(types.Float(a.F + b.F))
	case FSUB:
		return f.Push(types.Float(a.F - b.F))
	case FMUL:
		return f.Push(types.Float(a.F * b.F))
	case FDIV:
		return f.Push(types.Float(a.F / b.F))
	case FREM:
		return f.Push(types.Float(float32(math.Mod(float64(a.F), float64(b.F)))))

	case DADD:
		return f.Push(types.Double(a.D + b.D))
	case DSUB:
		return f.Push(types.Double(a.D - b.D))
	case DMUL:
		return f.Push(types.Double(a.D * b.D))
	case DDIV:
		return f.Push(types.Double(a.D / b.D))
	case DREM:
		return f.Push(types.Double(math.Mod(a.D, b.D)))
	}
	return vmerrors.New(vmerrors.InternalError, "unreachable arith opcode 0x%02X", op)
}

func (it *Interp) convert(f *frame.Frame, op Op) error {
	v, err := f.Pop()
	if err != nil {
		return err
	}
	switch op {
	case I2L:
		return f.Push(types.Long(int64(v.I)))
	case I2F:
		return f.Push(types.Float(float32(v.I)))
	case I2D:
		return f.Push(types.Double(float64(v.I)))
	case L2I:
		return f.Push(types.Int(int32(v.L)))
	case L2F:
		return f.Push(types.Float(float32(v.L)))
	case L2D:
		return f.Push(types.Double(float64(v.L)))
	case F2I:
		return f.Push(types.Int(float32ToInt32(v.F)))
	case F2L:
		return f.Push(types.Long(float32ToInt64(v.F)))
	case F2D:
		return f.Push(types.Double(float64(v.F)))
	case D2I:
		return f.Push(types.Int(float64ToInt32(v.D)))
	case D2L:
		return f.Push(types.Long(float64ToInt64(v.D)))
	case D2F:
		return f.Push(types.Float(float32(v.D)))
	case I2B:
		return f.Push(types.Int(int32(int8(v.I))))
	case I2C:
		return f.Push(types.Int(int32(uint16(v.I))))
	case I2S:
		return f.Push(types.Int(int32(int16(v.I))))
	}
	return vmerrors.New(vmerrors.InternalError, "unreachable convert opcode 0x%02X", op)
}

// float32ToInt32 and friends implement JVMS narrowing conversion
// rules: NaN converts to 0, out-of-range values saturate.
func float32ToInt32(f float32) int32 {
	if f != f {
		return 0
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	if f <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(f)
}

func float32ToInt64(f float32) int64 {
	if f != f {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	if f <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}

func float64ToInt32(d float64) int32 {
	if d != d {
		return 0
	}
	if d >= math.MaxInt32 {
		return math.MaxInt32
	}
	if d <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(d)
}

func float64ToInt64(d float64) int64 {
	if d != d {
		return 0
	}
	if d >= math.MaxInt64 {
		return math.MaxInt64
	}
	if d <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(d)
}

func (it *Interp) compareOp(f *frame.Frame, op Op) error {
	b, err := f.Pop()
	if err != nil {
		return err
	}
	a, err := f.Pop()
	if err != nil {
		return err
	}
	switch op {
	case LCMP:
		return f.Push(types.Int(lcmp(a.L, b.L)))
	case FCMPL:
		return f.Push(types.Int(fcmp(a.F, b.F, -1)))
	case FCMPG:
		return f.Push(types.Int(fcmp(a.F, b.F, 1)))
	case DCMPL:
		return f.Push(types.Int(dcmp(a.D, b.D, -1)))
	case DCMPG:
		return f.Push(types.Int(dcmp(a.D, b.D, 1)))
	}
	return vmerrors.New(vmerrors.InternalError, "unreachable compare opcode 0x%02X", op)
}

func (it *Interp) ifCond(f *frame.Frame, r *classfile.Reader, op Op) (*types.Value, bool, bool, error) {
	off, err := r.I2()
	if err != nil {
		return nil, false, false, err
	}
	v, err := f.Pop()
	if err != nil {
		return nil, false, false, err
	}
	take := false
	switch op {
	case IFEQ:
		take = v.I == 0
	case IFNE:
		take = v.I != 0
	case IFLT:
		take = v.I < 0
	case IFGE:
		take = v.I >= 0
	case IFGT:
		take = v.I > 0
	case IFLE:
		take = v.I <= 0
	}
	if take {
		f.PC = branchTarget(r, off)
		return nil, false, true, nil
	}
	return nil, false, false, nil
}

func (it *Interp) ifICmp(f *frame.Frame, r *classfile.Reader, op Op) (*types.Value, bool, bool, error) {
	off, err := r.I2()
	if err != nil {
		return nil, false, false, err
	}
	b, err := f.Pop()
	if err != nil {
		return nil, false, false, err
	}
	a, err := f.Pop()
	if err != nil {
		return nil, false, false, err
	}
	take := false
	switch op {
	case IF_ICMPEQ:
		take = a.I == b.I
	case IF_ICMPNE:
		take = a.I != b.I
	case IF_ICMPLT:
		take = a.I < b.I
	case IF_ICMPGE:
		take = a.I >= b.I
	case IF_ICMPGT:
		take = a.I > b.I
	case IF_ICMPLE:
		take = a.I <= b.I
	}
	if take {
		f.PC = branchTarget(r, off)
		return nil, false, true, nil
	}
	return nil, false, false, nil
}

func (it *Interp) ifACmp(f *frame.Frame, r *classfile.Reader, op Op) (*types.Value, bool, bool, error) {
	off, err := r.I2()
	if err != nil {
		return nil, false, false, err
	}
	b, err := f.Pop()
	if err != nil {
		return nil, false, false, err
	}
	a, err := f.Pop()
	if err != nil {
		return nil, false, false, err
	}
	eq := refEqual(a, b)
	take := eq
	if op == IF_ACMPNE {
		take = !eq
	}
	if take {
		f.PC = branchTarget(r, off)
		return nil, false, true, nil
	}
	return nil, false, false, nil
}

func refEqual(a, b types.Value) bool {
	aNull := a.Tag == types.TagNull
	bNull := b.Tag == types.TagNull
	if aNull || bNull {
		return aNull == bNull
	}
	return a.Ref == b.Ref
}

func (it *Interp) ifNullCond(f *frame.Frame, r *classfile.Reader, op Op) (*types.Value, bool, bool, error) {
	off, err := r.I2()
	if err != nil {
		return nil, false, false, err
	}
	v, err := f.Pop()
	if err != nil {
		return nil, false, false, err
	}
	isNull := v.Tag == types.TagNull
	take := isNull
	if op == IFNONNULL {
		take = !isNull
	}
	if take {
		f.PC = branchTarget(r, off)
		return nil, false, true, nil
	}
	return nil, false, false, nil
}

func (it *Interp) tableSwitch(f *frame.Frame, r *classfile.Reader) (*types.Value, bool, bool, error) {
	opPC := r.Pos() - 1
	pad := (4 - (r.Pos() % 4)) % 4
	if _, err := r.Bytes(pad); err != nil {
		return nil, false, false, err
	}
	def, err := r.I4()
	if err != nil {
		return nil, false, false, err
	}
	low, err := r.I4()
	if err != nil {
		return nil, false, false, err
	}
	high, err := r.I4()
	if err != nil {
		return nil, false, false, err
	}
	v, err := f.Pop()
	if err != nil {
		return nil, false, false, err
	}
	n := int(high - low + 1)
	offsets := make([]int32, n)
	for i := 0; i < n; i++ {
		o, err := r.I4()
		if err != nil {
			return nil, false, false, err
		}
		offsets[i] = o
	}
	target := def
	if v.I >= low && v.I <= high {
		target = offsets[v.I-low]
	}
	f.PC = opPC + int(target)
	return nil, false, true, nil
}

func (it *Interp) lookupSwitch(f *frame.Frame, r *classfile.Reader) (*types.Value, bool, bool, error) {
	opPC := r.Pos() - 1
	pad := (4 - (r.Pos() % 4)) % 4
	if _, err := r.Bytes(pad); err != nil {
		return nil, false, false, err
	}
	def, err := r.I4()
	if err != nil {
		return nil, false, false, err
	}
	count, err := r.I4()
	if err != nil {
		return nil, false, false, err
	}
	v, err := f.Pop()
	if err != nil {
		return nil, false, false, err
	}
	target := def
	for i := int32(0); i < count; i++ {
		match, err := r.I4()
		if err != nil {
			return nil, false, false, err
		}
		off, err := r.I4()
		if err != nil {
			return nil, false, false, err
		}
		if match == v.I {
			target = off
		}
	}
	f.PC = opPC + int(target)
	return nil, false, true, nil
}

func (it *Interp) opWide(f *frame.Frame, r *classfile.Reader) (*types.Value, bool, bool, error) {
	inner, err := r.U1()
	if err != nil {
		return nil, false, false, err
	}
	idx, err := r.U2()
	if err != nil {
		return nil, false, false, err
	}
	switch Op(inner) {
	case ILOAD, LLOAD, FLOAD, DLOAD, ALOAD:
		return nil, false, false, f.Push(f.Locals[idx])
	case ISTORE, LSTORE, FSTORE, DSTORE, ASTORE:
		v, err := f.Pop()
		if err != nil {
			return nil, false, false, err
		}
		f.Locals[idx] = v
		return nil, false, false, nil
	case IINC:
		delta, err := r.I2()
		if err != nil {
			return nil, false, false, err
		}
		f.Locals[idx] = types.Int(f.Locals[idx].I + int32(delta))
		return nil, false, false, nil
	case RET:
		f.PC = int(f.Locals[idx].Ret)
		return nil, false, true, nil
	}
	return nil, false, false, vmerrors.New(vmerrors.NotImplemented, "wide opcode 0x%02X", inner)
}
