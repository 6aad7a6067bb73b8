package interp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/z-yn/litejvm/internal/classpath"
	"github.com/z-yn/litejvm/internal/heap"
	"github.com/z-yn/litejvm/internal/methodarea"
	"github.com/z-yn/litejvm/internal/natives"
	"github.com/z-yn/litejvm/internal/statics"
	"github.com/z-yn/litejvm/internal/testhelper"
	"github.com/z-yn/litejvm/internal/types"
)

func writeClass(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name)+".class")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// newFixtureInterp builds a fully wired interpreter over a temp
// classpath seeded with java/lang/Object, the minimum any load needs.
func newFixtureInterp(t *testing.T) (*Interp, string) {
	t.Helper()
	dir := t.TempDir()

	b := testhelper.NewClassBuilder()
	writeClass(t, dir, "java/lang/Object", b.Build("java/lang/Object", "", 0x21, nil, nil))

	h := heap.New(1 << 20)
	cp := classpath.New()
	cp.Add(classpath.NewDirProvider(dir))
	st := statics.New()
	ma := methodarea.New(cp, st, h)
	it := New(ma, h, st, natives.New(), 64)
	return it, dir
}

func loadAndResolve(t *testing.T, it *Interp, className, methodName, descriptor string) (*methodarea.Class, *methodarea.Method) {
	t.Helper()
	class, err := it.MA.LookupClassAndInitialize(className)
	if err != nil {
		t.Fatalf("LookupClassAndInitialize(%s): %v", className, err)
	}
	m, owner, err := it.MA.ResolveMethod(class, methodName, descriptor)
	if err != nil {
		t.Fatalf("ResolveMethod(%s%s): %v", methodName, descriptor, err)
	}
	return owner, m
}

func TestArrayStoreLoadRoundTrip(t *testing.T) {
	it, dir := newFixtureInterp(t)

	b := testhelper.NewClassBuilder()
	code := []byte{
		0x06,             // ICONST_3        -> [3]
		0xBC, 0x0A,       // NEWARRAY T_INT  -> [arr]
		0x59,             // DUP             -> [arr, arr]
		0x04,             // ICONST_1        -> [arr, arr, 1]
		0x10, 0x2A,       // BIPUSH 42       -> [arr, arr, 1, 42]
		0x4F,             // IASTORE         -> [arr]
		0x04,             // ICONST_1        -> [arr, 1]
		0x2E,             // IALOAD          -> [42]
		0xAC,             // IRETURN
	}
	classBytes := b.Build("demo/Arrays", "java/lang/Object", 0x21, nil, []testhelper.MethodSpec{
		{AccessFlags: 0x0009, Name: "roundTrip", Descriptor: "()I", MaxStack: 4, MaxLocals: 0, Code: code},
	})
	writeClass(t, dir, "demo/Arrays", classBytes)

	owner, m := loadAndResolve(t, it, "demo/Arrays", "roundTrip", "()I")
	v, err := it.InvokeMethod(owner, m, nil, nil)
	if err != nil {
		t.Fatalf("InvokeMethod: %v", err)
	}
	if v.I != 42 {
		t.Errorf("roundTrip() = %d, want 42", v.I)
	}
}

func TestArrayLengthOpcode(t *testing.T) {
	it, dir := newFixtureInterp(t)

	b := testhelper.NewClassBuilder()
	code := []byte{
		0x07,       // ICONST_4  -> [4]
		0xBC, 0x0A, // NEWARRAY T_INT -> [arr]
		0xBE, // ARRAYLENGTH -> [4]
		0xAC, // IRETURN
	}
	classBytes := b.Build("demo/Lengths", "java/lang/Object", 0x21, nil, []testhelper.MethodSpec{
		{AccessFlags: 0x0009, Name: "lengthOfFour", Descriptor: "()I", MaxStack: 2, MaxLocals: 0, Code: code},
	})
	writeClass(t, dir, "demo/Lengths", classBytes)

	owner, m := loadAndResolve(t, it, "demo/Lengths", "lengthOfFour", "()I")
	v, err := it.InvokeMethod(owner, m, nil, nil)
	if err != nil {
		t.Fatalf("InvokeMethod: %v", err)
	}
	if v.I != 4 {
		t.Errorf("lengthOfFour() = %d, want 4", v.I)
	}
}

func TestIfgeBranch(t *testing.T) {
	it, dir := newFixtureInterp(t)

	b := testhelper.NewClassBuilder()
	code := []byte{
		0x1A,       // ILOAD_0
		0x9C, 0x00, 0x05, // IFGE +5 (to pos 6)
		0x03, // ICONST_0 (negative branch)
		0xAC, // IRETURN
		0x04, // ICONST_1 (pos 6: non-negative branch)
		0xAC, // IRETURN
	}
	classBytes := b.Build("demo/Sign", "java/lang/Object", 0x21, nil, []testhelper.MethodSpec{
		{AccessFlags: 0x0009, Name: "isNonNegative", Descriptor: "(I)I", MaxStack: 1, MaxLocals: 1, Code: code},
	})
	writeClass(t, dir, "demo/Sign", classBytes)

	owner, m := loadAndResolve(t, it, "demo/Sign", "isNonNegative", "(I)I")

	pos, err := it.InvokeMethod(owner, m, nil, []types.Value{types.Int(5)})
	if err != nil {
		t.Fatalf("InvokeMethod(5): %v", err)
	}
	if pos.I != 1 {
		t.Errorf("isNonNegative(5) = %d, want 1", pos.I)
	}

	neg, err := it.InvokeMethod(owner, m, nil, []types.Value{types.Int(-5)})
	if err != nil {
		t.Fatalf("InvokeMethod(-5): %v", err)
	}
	if neg.I != 0 {
		t.Errorf("isNonNegative(-5) = %d, want 0", neg.I)
	}
}

func TestI2LConversion(t *testing.T) {
	it, dir := newFixtureInterp(t)

	b := testhelper.NewClassBuilder()
	code := []byte{
		0x1A, // ILOAD_0
		0x85, // I2L
		0xAD, // LRETURN
	}
	classBytes := b.Build("demo/Widen", "java/lang/Object", 0x21, nil, []testhelper.MethodSpec{
		{AccessFlags: 0x0009, Name: "widen", Descriptor: "(I)J", MaxStack: 2, MaxLocals: 1, Code: code},
	})
	writeClass(t, dir, "demo/Widen", classBytes)

	owner, m := loadAndResolve(t, it, "demo/Widen", "widen", "(I)J")
	v, err := it.InvokeMethod(owner, m, nil, []types.Value{types.Int(7)})
	if err != nil {
		t.Fatalf("InvokeMethod: %v", err)
	}
	if v.Tag != types.TagLong || v.L != 7 {
		t.Errorf("widen(7) = %v, want long(7)", v)
	}
}
