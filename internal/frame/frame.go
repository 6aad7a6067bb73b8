// Package frame implements per-invocation call frames and the call
// stack (spec C9): program counter, local-variable table, bounded
// operand stack with the dup family of duplication operators, and a
// container/list-backed frame stack — the same container Jacobin uses
// for its own frame stack.
package frame

import (
	"container/list"

	"github.com/z-yn/litejvm/internal/types"
	"github.com/z-yn/litejvm/internal/vmerrors"
)

// CodeRef is the narrow view of a method's resolved Code attribute a
// frame needs — borrowed, never copied, per spec section 5's
// "a frame borrows read-only references to its class's code" rule.
type CodeRef interface {
	Bytes() []byte
	MaxStack() int
	MaxLocals() int
}

// Frame is one method activation: pc, locals, operand stack, plus
// borrowed references to the owning class/method and their code.
type Frame struct {
	ClassName  string
	MethodName string
	Descriptor string

	PC int

	Locals []types.Value
	stack  []types.Value
	sp     int

	Code CodeRef
}

// New creates a frame for a method invocation. locals is pre-sized to
// maxLocals and pre-filled with Uninitialized; the caller populates
// the receiver (if any) and arguments starting at index 0.
func New(className, methodName, descriptor string, code CodeRef, maxLocals, maxStack int) *Frame {
	locals := make([]types.Value, maxLocals)
	for i := range locals {
		locals[i] = types.Uninitialized()
	}
	return &Frame{
		ClassName:  className,
		MethodName: methodName,
		Descriptor: descriptor,
		Locals:     locals,
		stack:      make([]types.Value, maxStack),
		Code:       code,
	}
}

// Push pushes a single value onto the operand stack. Unlike the
// local-variable table, the operand stack is accessed only through
// push/pop/dup — never by raw index — so a wide (Long/Double) value
// is stored as a single slice entry rather than a value-plus-
// placeholder pair; the dup family below accounts for this by counting
// a category-2 value as one physical slot wherever the JVM's dup table
// (spec section 4.9) would count it as two words.
func (f *Frame) Push(v types.Value) error {
	if f.sp >= len(f.stack) {
		return vmerrors.New(vmerrors.StackOverflow, "operand stack overflow (cap=%d)", len(f.stack))
	}
	f.stack[f.sp] = v
	f.sp++
	return nil
}

// Pop removes and returns the top value.
func (f *Frame) Pop() (types.Value, error) {
	if f.sp == 0 {
		return types.Value{}, vmerrors.New(vmerrors.PopFromEmptyStack, "pop from empty operand stack")
	}
	f.sp--
	return f.stack[f.sp], nil
}

func isWideTag(t types.Tag) bool { return t == types.TagLong || t == types.TagDouble }

// Peek returns the top value without removing it.
func (f *Frame) Peek() (types.Value, error) {
	if f.sp == 0 {
		return types.Value{}, vmerrors.New(vmerrors.PopFromEmptyStack, "peek on empty operand stack")
	}
	return f.stack[f.sp-1], nil
}

// Depth returns the number of values currently on the operand stack.
func (f *Frame) Depth() int { return f.sp }

// ClearStack empties the operand stack, as required when an exception
// handler takes control (spec section 4.10).
func (f *Frame) ClearStack() { f.sp = 0 }

func (f *Frame) slotAt(fromTop int) (types.Value, error) {
	idx := f.sp - 1 - fromTop
	if idx < 0 {
		return types.Value{}, vmerrors.New(vmerrors.PopFromEmptyStack, "operand stack underflow")
	}
	return f.stack[idx], nil
}

// insertBlockAt inserts values (given bottom-to-top) so that exactly
// fromTop previously-top elements remain above the inserted block
// afterward; everything below is left untouched. This is the shared
// primitive behind the whole dup family (spec section 4.9's table): a
// plain Dup inserts a one-value block with fromTop=0 (nothing above
// the copy), while the x1/x2 forms insert below one or two existing
// physical slots, wide values counting as a single slot per Push's
// representation.
func (f *Frame) insertBlockAt(fromTop int, values []types.Value) error {
	k := len(values)
	idx := f.sp - fromTop
	if idx < 0 || f.sp+k > len(f.stack) {
		return vmerrors.New(vmerrors.StackOverflow, "operand stack overflow during dup")
	}
	copy(f.stack[idx+k:f.sp+k], f.stack[idx:f.sp])
	copy(f.stack[idx:idx+k], values)
	f.sp += k
	return nil
}

func (f *Frame) insertAt(fromTop int, v types.Value) error {
	return f.insertBlockAt(fromTop, []types.Value{v})
}

// Dup: copy top (single-width) once.
func (f *Frame) Dup() error {
	v, err := f.slotAt(0)
	if err != nil {
		return err
	}
	return f.insertAt(0, v)
}

// DupX1: insert a copy of the top single-width value two down.
func (f *Frame) DupX1() error {
	v, err := f.slotAt(0)
	if err != nil {
		return err
	}
	return f.insertAt(2, v)
}

// DupX2: insert a copy of the top single-width value below either two
// single-width words (form 1) or one double-width word (form 2).
func (f *Frame) DupX2() error {
	v, err := f.slotAt(0)
	if err != nil {
		return err
	}
	second, err := f.slotAt(1)
	if err != nil {
		return err
	}
	if isWideTag(second.Tag) {
		return f.insertAt(2, v)
	}
	return f.insertAt(3, v)
}

// Dup2: copy the top two single-width values, or the top one
// double-width value (a single physical slot, per Push).
func (f *Frame) Dup2() error {
	top, err := f.slotAt(0)
	if err != nil {
		return err
	}
	if isWideTag(top.Tag) {
		return f.insertAt(0, top)
	}
	second, err := f.slotAt(1)
	if err != nil {
		return err
	}
	return f.insertBlockAt(0, []types.Value{second, top})
}

// Dup2X1: combined form — duplicate the top one or two category-1
// words and insert the copy below a single category-1 word beneath
// them.
func (f *Frame) Dup2X1() error {
	top, err := f.slotAt(0)
	if err != nil {
		return err
	}
	if isWideTag(top.Tag) {
		return f.insertAt(2, top)
	}
	second, err := f.slotAt(1)
	if err != nil {
		return err
	}
	return f.insertBlockAt(3, []types.Value{second, top})
}

// Dup2X2: combined form — duplicate the top one or two words and
// insert the copy below the next one or two words.
func (f *Frame) Dup2X2() error {
	top, err := f.slotAt(0)
	if err != nil {
		return err
	}
	if isWideTag(top.Tag) {
		second, err := f.slotAt(1)
		if err != nil {
			return err
		}
		if isWideTag(second.Tag) {
			return f.insertAt(2, top)
		}
		return f.insertAt(3, top)
	}
	second, err := f.slotAt(1)
	if err != nil {
		return err
	}
	third, err := f.slotAt(2)
	if err != nil {
		return err
	}
	if isWideTag(third.Tag) {
		return f.insertBlockAt(3, []types.Value{second, top})
	}
	return f.insertBlockAt(4, []types.Value{second, top})
}

// Swap exchanges the top two single-width values.
func (f *Frame) Swap() error {
	if f.sp < 2 {
		return vmerrors.New(vmerrors.PopFromEmptyStack, "swap needs two operands")
	}
	f.stack[f.sp-1], f.stack[f.sp-2] = f.stack[f.sp-2], f.stack[f.sp-1]
	return nil
}

// CallStack is a bounded LIFO of frames, one per live method
// invocation.
type CallStack struct {
	frames   *list.List
	capacity int
}

// NewCallStack returns an empty call stack bounded to capacity frames.
func NewCallStack(capacity int) *CallStack {
	return &CallStack{frames: list.New(), capacity: capacity}
}

// Push adds a new top frame.
func (cs *CallStack) Push(f *Frame) error {
	if cs.frames.Len() >= cs.capacity {
		return vmerrors.New(vmerrors.StackOverflow, "call stack overflow (cap=%d)", cs.capacity)
	}
	cs.frames.PushBack(f)
	return nil
}

// Pop removes and returns the top frame.
func (cs *CallStack) Pop() (*Frame, error) {
	e := cs.frames.Back()
	if e == nil {
		return nil, vmerrors.New(vmerrors.PopFromEmptyStack, "pop from empty call stack")
	}
	cs.frames.Remove(e)
	return e.Value.(*Frame), nil
}

// Top returns the current top frame without removing it.
func (cs *CallStack) Top() (*Frame, bool) {
	e := cs.frames.Back()
	if e == nil {
		return nil, false
	}
	return e.Value.(*Frame), true
}

// Len reports the number of live frames.
func (cs *CallStack) Len() int { return cs.frames.Len() }

// Frames returns all live frames from most-recent (top) to oldest,
// the order an uncaught-exception stack trace is rendered in.
func (cs *CallStack) Frames() []*Frame {
	out := make([]*Frame, 0, cs.frames.Len())
	for e := cs.frames.Back(); e != nil; e = e.Prev() {
		out = append(out, e.Value.(*Frame))
	}
	return out
}
