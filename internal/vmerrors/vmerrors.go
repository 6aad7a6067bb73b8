// Package vmerrors defines the closed set of error kinds the VM
// surfaces, per spec section 7 of the project's design notes. Decoder
// and loader errors are fatal to the triggering operation; a handful
// of kinds (ArithmeticException, NullPointerException,
// ClassCastException, IndexOutOfBounds) are also raised as catchable
// Java exceptions by the interpreter — see internal/interp.
package vmerrors

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind identifies one of the closed set of VM error kinds.
type Kind int

const (
	ClassFormatError Kind = iota
	UnsupportedVersion
	ConstantPoolTagNotSupported
	InvalidConstantPoolIndex
	InvalidCodeError
	ClassNotFound
	MethodNotFound
	FieldNotFound
	ValueTypeMismatch
	IndexOutOfBounds
	PopFromEmptyStack
	StackOverflow
	ArithmeticException
	NullPointerException
	ClassCastException
	NotImplemented
	InternalError
)

var kindNames = map[Kind]string{
	ClassFormatError:            "ClassFormatError",
	UnsupportedVersion:          "UnsupportedVersion",
	ConstantPoolTagNotSupported: "ConstantPoolTagNotSupported",
	InvalidConstantPoolIndex:    "InvalidConstantPoolIndex",
	InvalidCodeError:            "InvalidCodeError",
	ClassNotFound:               "ClassNotFound",
	MethodNotFound:              "MethodNotFound",
	FieldNotFound:               "FieldNotFound",
	ValueTypeMismatch:           "ValueTypeMismatch",
	IndexOutOfBounds:            "IndexOutOfBounds",
	PopFromEmptyStack:           "PopFromEmptyStack",
	StackOverflow:               "StackOverflow",
	ArithmeticException:         "ArithmeticException",
	NullPointerException:        "NullPointerException",
	ClassCastException:          "ClassCastException",
	NotImplemented:              "NotImplemented",
	InternalError:               "InternalError",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "UnknownError"
}

// VMError is the concrete error type carried through the VM. It
// records the kind (for errors.Is-style matching), a human message,
// and, for format-type errors, the file/line of the call site that
// raised it — mirroring Jacobin's cfe() helper.
type VMError struct {
	Kind Kind
	Msg  string
	Site string
}

func (e *VMError) Error() string {
	if e.Site != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Msg, e.Site)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is lets errors.Is(err, vmerrors.New(k, "")) match on Kind alone.
func (e *VMError) Is(target error) bool {
	var other *VMError
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

func callSite() string {
	pc, file, line, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	fn := runtime.FuncForPC(pc)
	name := ""
	if fn != nil {
		name = fn.Name()
	}
	return fmt.Sprintf("%s:%d %s", file, line, name)
}

// New builds a VMError of the given kind with a formatted message,
// stamping the caller's site the way Jacobin's cfe() does.
func New(kind Kind, format string, args ...any) *VMError {
	return &VMError{Kind: kind, Msg: fmt.Sprintf(format, args...), Site: callSite()}
}

// Newf is an alias of New that returns the result as a plain error
// rather than a *VMError.
func Newf(kind Kind, format string, args ...any) error {
	return New(kind, format, args...)
}

// ClassFormatErrorf reports a malformed class file — Jacobin's cfe().
func ClassFormatErrorf(format string, args ...any) error {
	return New(ClassFormatError, format, args...)
}
