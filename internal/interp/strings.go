package interp

import (
	"unicode/utf16"

	"github.com/z-yn/litejvm/internal/heap"
	"github.com/z-yn/litejvm/internal/types"
)

// InternString implements new_string / the String-constant arm of ldc
// (spec section 7, S6): the interned handle is the char[] array itself,
// holding the UTF-16 code units of s — this VM does not model a
// separate java/lang/String wrapper object, since nothing in scope
// calls String instance methods on an interned constant.
func (it *Interp) InternString(s string) (types.Value, error) {
	if ref, ok := it.StringInterns.Intern(s); ok {
		return types.ArrayRef(ref), nil
	}
	units := utf16.Encode([]rune(s))
	ref, err := it.Heap.AllocArray(heap.PrimitiveArrayHeader(heap.TagChar), len(units))
	if err != nil {
		return types.Value{}, err
	}
	for i, u := range units {
		if err := it.Heap.SetElement(ref, i, types.Int(int32(u))); err != nil {
			return types.Value{}, err
		}
	}
	winner := it.StringInterns.Put(s, ref)
	return types.ArrayRef(winner), nil
}

// ClassMirror implements new_class_mirror: an interned, otherwise
// empty instance of java/lang/Class, one per distinct class name.
func (it *Interp) ClassMirror(className string) (types.Value, error) {
	if ref, ok := it.ClassInterns.Intern(className); ok {
		return types.ObjectRef(ref), nil
	}
	mirrorClass, err := it.MA.LookupClassAndInitialize("java/lang/Class")
	if err != nil {
		return types.Value{}, err
	}
	obj, err := it.NewObject(mirrorClass)
	if err != nil {
		return types.Value{}, err
	}
	winner := it.ClassInterns.Put(className, obj.Ref)
	return types.ObjectRef(winner), nil
}
