package methodarea

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/z-yn/litejvm/internal/classpath"
	"github.com/z-yn/litejvm/internal/statics"
	"github.com/z-yn/litejvm/internal/testhelper"
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

// fakeInvoker records every <clinit> invocation it is asked to run but
// performs none of the side effects a real interpreter would.
type fakeInvoker struct {
	calls []string
}

func (f *fakeInvoker) InvokeClinit(c *Class, m *Method) error {
	f.calls = append(f.calls, c.Name)
	return nil
}

type fakeRegistrar struct{ nextID uint32 }

func (f *fakeRegistrar) RegisterClass(layout interface {
	ClassName() string
	TotalInstanceFields() int
}) uint32 {
	f.nextID++
	return f.nextID
}

func newTestMethodArea(t *testing.T) (*MethodArea, string) {
	t.Helper()
	dir := t.TempDir()

	b := testhelper.NewClassBuilder()
	objBytes := b.Build("java/lang/Object", "", 0x21, nil, nil)
	writeClass(t, dir, "java/lang/Object", objBytes)

	cp := classpath.New()
	cp.Add(classpath.NewDirProvider(dir))
	ma := New(cp, statics.New(), &fakeRegistrar{})
	ma.SetInvoker(&fakeInvoker{})
	return ma, dir
}

func TestLoadCachesByName(t *testing.T) {
	ma, _ := newTestMethodArea(t)
	c1, err := ma.Load("java/lang/Object")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c2, err := ma.Load("java/lang/Object")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c1 != c2 {
		t.Error("Load returned two distinct records for the same class name")
	}
}

func TestLoadMissingClassFails(t *testing.T) {
	ma, _ := newTestMethodArea(t)
	if _, err := ma.Load("demo/DoesNotExist"); err == nil {
		t.Error("Load of a missing class succeeded, want ClassNotFound")
	}
}

func TestLinkDefinesStaticFields(t *testing.T) {
	ma, dir := newTestMethodArea(t)

	b := testhelper.NewClassBuilder()
	counterBytes := b.Build("demo/Counter", "java/lang/Object", 0x21,
		[]testhelper.FieldSpec{{AccessFlags: 0x0008, Name: "count", Descriptor: "I"}}, nil)
	writeClass(t, dir, "demo/Counter", counterBytes)

	c, err := ma.Load("demo/Counter")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := ma.Link(c); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if c.Status() != StatusLinked {
		t.Errorf("Status() = %v, want StatusLinked", c.Status())
	}
}

func TestInitializeRunsClinitOnce(t *testing.T) {
	ma, dir := newTestMethodArea(t)

	b := testhelper.NewClassBuilder()
	leafBytes := b.Build("demo/Plain", "java/lang/Object", 0x21, nil, []testhelper.MethodSpec{
		{AccessFlags: 0x0008, Name: "<clinit>", Descriptor: "()V", MaxStack: 0, MaxLocals: 0, Code: []byte{0xB1}},
	})
	writeClass(t, dir, "demo/Plain", leafBytes)

	c, err := ma.LookupClassAndInitialize("demo/Plain")
	if err != nil {
		t.Fatalf("LookupClassAndInitialize: %v", err)
	}
	if c.Status() != StatusInitialized {
		t.Errorf("Status() = %v, want StatusInitialized", c.Status())
	}

	// Re-initializing an already-initialized class is a no-op, not an error.
	if err := ma.Initialize(c); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	calls := ma.invoker.(*fakeInvoker).calls
	if len(calls) != 1 || calls[0] != "demo/Plain" {
		t.Errorf("<clinit> invocations = %v, want exactly [demo/Plain]", calls)
	}
}

func TestResolveMethodSearchesSuperChain(t *testing.T) {
	object := newTestClass("java/lang/Object", nil)
	base := newTestClass("demo/Base", object)
	base.methods[methodKey("greet", "()V")] = &Method{Name: "greet", Descriptor: "()V"}
	derived := newTestClass("demo/Derived", base)

	ma := &MethodArea{classes: map[string]*Class{}}
	m, owner, err := ma.ResolveMethod(derived, "greet", "()V")
	if err != nil {
		t.Fatalf("ResolveMethod: %v", err)
	}
	if owner != base {
		t.Error("ResolveMethod should report Base as the declaring class")
	}
	if m.Name != "greet" {
		t.Errorf("ResolveMethod found %q, want greet", m.Name)
	}
}

func TestResolveMethodNotFound(t *testing.T) {
	derived := newTestClass("demo/Derived", newTestClass("java/lang/Object", nil))
	ma := &MethodArea{classes: map[string]*Class{}}
	if _, _, err := ma.ResolveMethod(derived, "missing", "()V"); err == nil {
		t.Error("ResolveMethod found a method that was never declared, want MethodNotFound")
	}
}

func TestResolveFieldSearchesSuperChain(t *testing.T) {
	base := newTestClass("demo/Base", nil)
	base.fieldOrder = []string{"x"}
	base.fieldsByName["x"] = &Field{Name: "x", Descriptor: "I", Offset: 1}
	derived := newTestClass("demo/Derived", base)

	ma := &MethodArea{classes: map[string]*Class{}}
	f, owner, err := ma.ResolveField(derived, "x")
	if err != nil {
		t.Fatalf("ResolveField: %v", err)
	}
	if owner != base || f.Name != "x" {
		t.Errorf("ResolveField found (%v,%v), want (Base,x)", owner, f)
	}
}
