package interp

import (
	"github.com/z-yn/litejvm/internal/frame"
	"github.com/z-yn/litejvm/internal/methodarea"
	"github.com/z-yn/litejvm/internal/trace"
	"github.com/z-yn/litejvm/internal/types"
	"github.com/z-yn/litejvm/internal/vmerrors"
)

// thrownException carries a live exception object through Go's error
// return channel so that every raising opcode (athrow, division by
// zero, null dereference, array bounds, checkcast) and every
// invoke-opcode's callee failure are caught by the same exception-
// table scan in runFrame, per spec section 4.10.
type thrownException struct {
	Value types.Value
}

func (t *thrownException) Error() string { return "uncaught exception" }

// raise constructs a new instance of exceptionClass (loading and
// initializing it first) and wraps it as a thrownException. The
// message is recorded in trace output only — this interpreter does
// not model Throwable's message field storage, since no test in scope
// inspects getMessage().
func (it *Interp) raise(exceptionClass, message string) error {
	trace.Fine("interp: raising " + exceptionClass + ": " + message)
	class, err := it.MA.LookupClassAndInitialize(exceptionClass)
	if err != nil {
		return err
	}
	obj, err := it.NewObject(class)
	if err != nil {
		return err
	}
	return &thrownException{Value: obj}
}

// classOfThrown resolves the runtime class of a thrown object.
func (it *Interp) classOfThrown(v types.Value) (*methodarea.Class, error) {
	layout, err := it.Heap.ClassOf(v.Ref)
	if err != nil {
		return nil, err
	}
	class, ok := it.MA.Lookup(layout.ClassName())
	if !ok {
		return nil, vmerrors.New(vmerrors.InternalError, "thrown object's class %s not registered", layout.ClassName())
	}
	return class, nil
}

// handleException scans f's exception table for a handler covering
// atPC whose catch type (or catch-all) matches the thrown object's
// runtime class. If found, it clears the operand stack, pushes the
// exception, and repositions the frame's pc at the handler.
func (it *Interp) handleException(f *frame.Frame, code codeRef, atPC int, thrown *thrownException) (bool, error) {
	thrownClass, err := it.classOfThrown(thrown.Value)
	if err != nil {
		return false, err
	}
	for _, exc := range code.code.Exceptions {
		if atPC < exc.StartPc || atPC >= exc.EndPc {
			continue
		}
		matches := exc.CatchType == ""
		if !matches {
			catchClass, err := it.MA.LookupClassAndInitialize(exc.CatchType)
			if err != nil {
				return false, err
			}
			matches = thrownClass.IsInstanceOf(catchClass)
		}
		if matches {
			f.ClearStack()
			if err := f.Push(thrown.Value); err != nil {
				return false, err
			}
			f.PC = exc.HandlerPc
			return true, nil
		}
	}
	return false, nil
}
